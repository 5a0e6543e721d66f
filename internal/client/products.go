package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mmynk/invoicer/internal/models"
)

// SearchProducts lists catalog products matching query.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	var products []models.Product
	_, err := c.do(ctx, call{
		op:     "products.search",
		method: http.MethodGet,
		path:   "/products/search",
		query:  url.Values{"query": {query}},
	}, &products)
	return products, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if _, err := c.do(ctx, call{op: "products.getById", method: http.MethodGet, path: "/products/" + escape(id)}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct adds a catalog entry.
func (c *Client) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	var product models.Product
	if _, err := c.do(ctx, call{op: "products.create", method: http.MethodPost, path: "/products", body: input}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
