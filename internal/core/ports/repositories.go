package ports

import (
	"context"

	"github.com/samirrijal/safetyfan/internal/core/domain"
)

// FanRepository persists computed fans.
type FanRepository interface {
	Insert(ctx context.Context, fan *domain.Fan) error
	GetByID(ctx context.Context, id string) (*domain.Fan, error)
	// List returns fans newest first.
	List(ctx context.Context, offset, limit int) ([]domain.Fan, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}
