package company

import (
	"context"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
)

// Repository は会社エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, company *Company) (*Company, error)
	FindByID(ctx context.Context, id string) (*Company, error)
	FindByOwner(ctx context.Context, ownerID string) (*Company, error)
	List(ctx context.Context, q search.Query) ([]*Company, int64, error)
}

// Sortable は会社一覧でソート可能な項目です。
var Sortable = search.Sortable{
	DefaultField:     "createdAt",
	DefaultDirection: search.Desc,
	Fields:           []string{"createdAt", "name", "location"},
}
