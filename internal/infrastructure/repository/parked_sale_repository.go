package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kiprono/dukapos-api/internal/domain/entity"
	domainRepo "github.com/kiprono/dukapos-api/internal/domain/repository"
	"github.com/kiprono/dukapos-api/pkg/apperror"
)

type parkedSaleRepository struct {
	db *gorm.DB
}

// NewParkedSaleRepository creates a new parked sale repository
func NewParkedSaleRepository(db *gorm.DB) domainRepo.ParkedSaleRepository {
	return &parkedSaleRepository{db: db}
}

func (r *parkedSaleRepository) Park(ctx context.Context, parked *entity.ParkedSale) error {
	return r.db.WithContext(ctx).Create(parked).Error
}

// Resume fetches and deletes the parked sale in one transaction with a row
// lock, so two terminals racing on the same handle see exactly one winner.
func (r *parkedSaleRepository) Resume(ctx context.Context, id uuid.UUID) (*entity.ParkedSale, error) {
	var parked entity.ParkedSale

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&parked, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.ParkedSale{}, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFoundError("Parked sale")
	}
	if err != nil {
		return nil, err
	}
	return &parked, nil
}

func (r *parkedSaleRepository) List(ctx context.Context) ([]entity.ParkedSale, error) {
	var parked []entity.ParkedSale
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&parked).Error
	return parked, err
}
