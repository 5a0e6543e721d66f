package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/invoicer/internal/models"
)

const productColumns = `id, name, price, description, created_by_id, created_by_name, created_at, updated_at`

// CreateProduct persists a new catalog product.
func (s *SQLiteStore) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := s.now().UTC().Truncate(time.Second)
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Price.String(), product.Description,
		product.CreatedBy.ID, product.CreatedBy.Name, now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by ID.
func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// SearchProducts returns products whose name or description contains query,
// ordered by name.
func (s *SQLiteStore) SearchProducts(ctx context.Context, query string) ([]*models.Product, error) {
	pattern := likePattern(query)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
		 ORDER BY name`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func scanProduct(row scanner) (*models.Product, error) {
	product := &models.Product{}
	var createdAt, updatedAt int64
	if err := row.Scan(&product.ID, &product.Name, &product.Price, &product.Description,
		&product.CreatedBy.ID, &product.CreatedBy.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	product.CreatedAt = time.Unix(createdAt, 0).UTC()
	product.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return product, nil
}
