package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
)

// AddPayment appends a payment to a bill and re-derives the bill's status.
func (s *SQLiteStore) AddPayment(ctx context.Context, billID string, payment *models.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	bill, err := getBill(ctx, tx, billID)
	if err != nil {
		return err
	}
	if err := calculator.ValidatePayment(bill, payment.Amount); err != nil {
		return err
	}

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.Date.IsZero() {
		payment.Date = s.now().UTC().Truncate(time.Second)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO payments (id, bill_id, amount, date) VALUES (?, ?, ?, ?)",
		payment.ID, billID, payment.Amount.String(), payment.Date.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	bill.Payments = append(bill.Payments, *payment)
	if err := updateBillTotals(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeletePayment removes a payment and re-derives its bill's status.
func (s *SQLiteStore) DeletePayment(ctx context.Context, paymentID string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var billID string
	err = tx.QueryRowContext(ctx, "SELECT bill_id FROM payments WHERE id = ?", paymentID).Scan(&billID)
	if err == sql.ErrNoRows {
		return "", notFound("payment", paymentID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to check payment existence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", paymentID); err != nil {
		return "", fmt.Errorf("failed to delete payment: %w", err)
	}

	bill, err := getBill(ctx, tx, billID)
	if err != nil {
		return "", err
	}
	if err := updateBillTotals(ctx, tx, bill); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return billID, nil
}

// updateBillTotals stores the payment sum and status derived from bill.Payments.
func updateBillTotals(ctx context.Context, q querier, bill *models.Bill) error {
	calculator.Apply(bill)
	_, err := q.ExecContext(ctx,
		"UPDATE bills SET current_payment = ?, status = ? WHERE id = ?",
		bill.CurrentPayment.String(), string(bill.Status), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill totals: %w", err)
	}
	return nil
}

func listPayments(ctx context.Context, q querier, billID string) ([]models.Payment, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, amount, date FROM payments WHERE bill_id = ? ORDER BY date, rowid",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var (
			p    models.Payment
			date int64
		)
		if err := rows.Scan(&p.ID, &p.Amount, &date); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Date = time.Unix(date, 0).UTC()
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
