package liveview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/maisonluxe/storefront/internal/entity"
)

// HTTPSource is a SnapshotSource over the storefront's REST API, for
// console processes running outside the server.
type HTTPSource struct {
	base   string
	client *http.Client
}

// NewHTTPSource creates a source against base, e.g. "http://localhost:8080".
func NewHTTPSource(base string) *HTTPSource {
	return &HTTPSource{
		base: strings.TrimRight(base, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchOrders implements SnapshotSource.
func (s *HTTPSource) FetchOrders(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	if err := s.getJSON(ctx, "/api/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FetchSettings retrieves the site settings.
func (s *HTTPSource) FetchSettings(ctx context.Context) (entity.Settings, error) {
	var settings entity.Settings
	err := s.getJSON(ctx, "/api/settings", &settings)
	return settings, err
}

// FetchProduct retrieves one product by id.
func (s *HTTPSource) FetchProduct(ctx context.Context, id entity.ProductID) (entity.Product, error) {
	var product entity.Product
	err := s.getJSON(ctx, "/api/products/"+id.String(), &product)
	return product, err
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+path, nil)
	if err != nil {
		return &entity.TransportError{Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &entity.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return entity.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &entity.TransportError{Err: fmt.Errorf("GET %s: status %d", path, resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &entity.TransportError{Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return nil
}
