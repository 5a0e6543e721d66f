package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

const billColumns = `id, invoice_number, shop_id, shop_name, doctor_name, total_amount,
	current_payment, status, created_by_id, created_by_name, date`

// CreateBill persists a new bill and its line items.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.Date.IsZero() {
		bill.Date = s.now().UTC().Truncate(time.Second)
	}
	if bill.InvoiceNumber == "" {
		bill.InvoiceNumber = newInvoiceNumber(bill.Date)
	}
	calculator.Apply(bill)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.InvoiceNumber, bill.ShopID, bill.ShopName, bill.DoctorName,
		bill.TotalAmount.String(), bill.CurrentPayment.String(), string(bill.Status),
		bill.CreatedBy.ID, bill.CreatedBy.Name, bill.Date.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range bill.Products {
		item := &bill.Products[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bill_products (id, bill_id, product_id, name, price, quantity, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID, bill.ID, item.ProductID, item.Name, item.Price.String(), item.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID, including line items and payments.
func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	return getBill(ctx, s.db, id)
}

func getBill(ctx context.Context, q querier, id string) (*models.Bill, error) {
	row := q.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, notFound("bill", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if err := loadBillChildren(ctx, q, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills returns bills matching filter, newest first.
func (s *SQLiteStore) ListBills(ctx context.Context, filter storage.BillFilter) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE 1 = 1`
	var args []any

	if filter.Query != "" {
		p := likePattern(filter.Query)
		query += ` AND (shop_name LIKE ? ESCAPE '\' OR doctor_name LIKE ? ESCAPE '\' OR invoice_number LIKE ? ESCAPE '\')`
		args = append(args, p, p, p)
	}
	if filter.Shop != "" {
		query += ` AND shop_name LIKE ? ESCAPE '\'`
		args = append(args, likePattern(filter.Shop))
	}
	if filter.Doctor != "" {
		query += ` AND doctor_name LIKE ? ESCAPE '\'`
		args = append(args, likePattern(filter.Doctor))
	}
	if filter.Invoice != "" {
		query += ` AND invoice_number LIKE ? ESCAPE '\'`
		args = append(args, likePattern(filter.Invoice))
	}
	if filter.ShopID != "" {
		query += ` AND shop_id = ?`
		args = append(args, filter.ShopID)
	}
	query += ` ORDER BY date DESC, invoice_number DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	bills := []*models.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	// Children are loaded after the outer cursor is closed; the store holds a
	// single connection.
	for _, bill := range bills {
		if err := loadBillChildren(ctx, s.db, bill); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

// DeleteBill removes a bill with its line items and payments.
func (s *SQLiteStore) DeleteBill(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("bill", id)
	}
	return nil
}

func loadBillChildren(ctx context.Context, q querier, bill *models.Bill) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, product_id, name, price, quantity FROM bill_products
		 WHERE bill_id = ? ORDER BY position`,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get bill products: %w", err)
	}
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan bill product: %w", err)
		}
		bill.Products = append(bill.Products, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate bill products: %w", err)
	}

	payments, err := listPayments(ctx, q, bill.ID)
	if err != nil {
		return err
	}
	bill.Payments = payments
	return nil
}

func scanBill(row scanner) (*models.Bill, error) {
	bill := &models.Bill{
		Products: []models.LineItem{},
		Payments: []models.Payment{},
	}
	var (
		status string
		date   int64
		total  decimal.Decimal
		paid   decimal.Decimal
	)
	if err := row.Scan(&bill.ID, &bill.InvoiceNumber, &bill.ShopID, &bill.ShopName, &bill.DoctorName,
		&total, &paid, &status, &bill.CreatedBy.ID, &bill.CreatedBy.Name, &date); err != nil {
		return nil, err
	}
	bill.TotalAmount = total
	bill.CurrentPayment = paid
	bill.Status = models.BillStatus(status)
	bill.Date = time.Unix(date, 0).UTC()
	return bill, nil
}
