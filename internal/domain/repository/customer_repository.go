package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/kiprono/dukapos-api/internal/domain/entity"
	"github.com/kiprono/dukapos-api/pkg/pagination"
)

// CustomerRepository is the customer directory service
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search matches name, email or phone against the query.
	Search(ctx context.Context, query string, params *pagination.Params) ([]entity.Customer, int64, error)
}
