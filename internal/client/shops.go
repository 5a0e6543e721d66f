package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mmynk/invoicer/internal/models"
)

// SearchShops lists shops whose name, doctor or location contains query.
// An empty query lists every shop.
func (c *Client) SearchShops(ctx context.Context, query string) ([]models.Shop, error) {
	var shops []models.Shop
	_, err := c.do(ctx, call{
		op:     "shops.search",
		method: http.MethodGet,
		path:   "/shops/search",
		query:  url.Values{"query": {query}},
	}, &shops)
	return shops, err
}

// GetShop returns a shop together with the bills raised against it.
func (c *Client) GetShop(ctx context.Context, id string) (*models.ShopDetails, error) {
	var shop models.ShopDetails
	if _, err := c.do(ctx, call{op: "shops.getById", method: http.MethodGet, path: "/shops/" + escape(id)}, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

func (c *Client) CreateShop(ctx context.Context, input models.ShopInput) (*models.Shop, error) {
	var shop models.Shop
	if _, err := c.do(ctx, call{op: "shops.create", method: http.MethodPost, path: "/shops", body: input}, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

func (c *Client) UpdateShop(ctx context.Context, id string, input models.ShopInput) (*models.Shop, error) {
	var shop models.Shop
	if _, err := c.do(ctx, call{op: "shops.update", method: http.MethodPut, path: "/shops/" + escape(id), body: input}, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

func (c *Client) DeleteShop(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{op: "shops.delete", method: http.MethodDelete, path: "/shops/" + escape(id)}, nil)
	return err
}
