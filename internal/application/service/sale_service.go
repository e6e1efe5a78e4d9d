package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/kiprono/dukapos-api/internal/domain/entity"
	"github.com/kiprono/dukapos-api/internal/domain/repository"
	"github.com/kiprono/dukapos-api/pkg/apperror"
	"github.com/kiprono/dukapos-api/pkg/pagination"
)

// SaleService exposes the committed sale history
type SaleService struct {
	saleRepo repository.SaleRepository
}

// NewSaleService creates a new sale service
func NewSaleService(saleRepo repository.SaleRepository) *SaleService {
	return &SaleService{saleRepo: saleRepo}
}

// GetSale retrieves a committed sale by ID
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// GetSaleByReceiptNo retrieves a committed sale by its receipt number
func (s *SaleService) GetSaleByReceiptNo(ctx context.Context, receiptNo string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByReceiptNo(ctx, receiptNo)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists committed sales with filtering
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.Result[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.New(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewResult(sales, pag), nil
}
