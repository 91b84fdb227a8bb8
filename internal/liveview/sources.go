package liveview

import (
	"context"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/repository"
)

// RepoSource is a SnapshotSource reading straight from the order
// repository, for console views running inside the server process.
type RepoSource struct {
	orders repository.OrderRepository
}

// NewRepoSource wraps repo.
func NewRepoSource(repo repository.OrderRepository) *RepoSource {
	return &RepoSource{orders: repo}
}

// FetchOrders implements SnapshotSource.
func (s *RepoSource) FetchOrders(ctx context.Context) ([]entity.Order, error) {
	return s.orders.FindAll(ctx)
}
