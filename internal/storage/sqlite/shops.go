package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/invoicer/internal/models"
)

const shopColumns = `id, shop_name, doctor_name, location, contact_number,
	created_by_id, created_by_name, created_at, updated_at`

// CreateShop persists a new shop.
func (s *SQLiteStore) CreateShop(ctx context.Context, shop *models.Shop) error {
	if shop.ID == "" {
		shop.ID = uuid.New().String()
	}
	now := s.now().UTC().Truncate(time.Second)
	shop.CreatedAt = now
	shop.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shops (`+shopColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shop.ID, shop.ShopName, shop.DoctorName, shop.Location, shop.ContactNumber,
		shop.CreatedBy.ID, shop.CreatedBy.Name, now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shop: %w", err)
	}
	return nil
}

// GetShop retrieves a shop by ID.
func (s *SQLiteStore) GetShop(ctx context.Context, id string) (*models.Shop, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = ?`, id)
	shop, err := scanShop(row)
	if err == sql.ErrNoRows {
		return nil, notFound("shop", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

// UpdateShop overwrites the editable fields of an existing shop.
func (s *SQLiteStore) UpdateShop(ctx context.Context, shop *models.Shop) error {
	now := s.now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		`UPDATE shops SET shop_name = ?, doctor_name = ?, location = ?, contact_number = ?, updated_at = ?
		 WHERE id = ?`,
		shop.ShopName, shop.DoctorName, shop.Location, shop.ContactNumber, now.Unix(), shop.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shop: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("shop", shop.ID)
	}
	shop.UpdatedAt = now
	return nil
}

// DeleteShop removes a shop. Bills raised against it are kept; they carry the
// shop's name.
func (s *SQLiteStore) DeleteShop(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM shops WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("shop", id)
	}
	return nil
}

// SearchShops returns shops whose name, doctor or location contains query,
// newest first. An empty query lists every shop.
func (s *SQLiteStore) SearchShops(ctx context.Context, query string) ([]*models.Shop, error) {
	pattern := likePattern(query)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shopColumns+` FROM shops
		 WHERE shop_name LIKE ? ESCAPE '\' OR doctor_name LIKE ? ESCAPE '\' OR location LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC, shop_name`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search shops: %w", err)
	}
	defer rows.Close()

	shops := []*models.Shop{}
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shops: %w", err)
	}
	return shops, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShop(row scanner) (*models.Shop, error) {
	shop := &models.Shop{}
	var createdAt, updatedAt int64
	if err := row.Scan(&shop.ID, &shop.ShopName, &shop.DoctorName, &shop.Location, &shop.ContactNumber,
		&shop.CreatedBy.ID, &shop.CreatedBy.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	shop.CreatedAt = time.Unix(createdAt, 0).UTC()
	shop.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return shop, nil
}
