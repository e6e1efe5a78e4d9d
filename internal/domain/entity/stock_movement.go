package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovement is one row of the stock audit trail. Every atomic batch
// mutation writes its per-product deltas here inside the same transaction,
// tagged with the sale reference that caused them.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	Reference string    `gorm:"size:100;index;not null" json:"reference"`
	Delta     int       `gorm:"not null" json:"delta"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new stock movement
func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockMovement model
func (StockMovement) TableName() string {
	return "stock_movements"
}
