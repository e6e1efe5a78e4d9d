package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/kiprono/dukapos-api/internal/domain/entity"
)

// ParkedSaleRepository is the parked-sale store shared by all sessions on a
// terminal. Implementations serialize Park/Resume/List so two sessions can
// never claim the same handle: Resume removes the parked sale and returns
// it, exactly once per identifier.
type ParkedSaleRepository interface {
	Park(ctx context.Context, parked *entity.ParkedSale) error
	// Resume atomically fetches and removes the parked sale. Returns a not
	// found error when the handle is absent or was already resumed.
	Resume(ctx context.Context, id uuid.UUID) (*entity.ParkedSale, error)
	// List returns all parked sales in creation order.
	List(ctx context.Context) ([]entity.ParkedSale, error)
}
