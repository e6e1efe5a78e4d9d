package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParkedSale is a suspended in-progress sale. The cart snapshot (line items,
// customer reference, note) is stored as a JSON document and restored
// verbatim on resume; the row is deleted when resumed so a handle can only
// be claimed once.
type ParkedSale struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID *uuid.UUID `gorm:"type:uuid" json:"customer_id,omitempty"`
	Note       string     `gorm:"type:text" json:"note,omitempty"`
	Snapshot   string     `gorm:"type:jsonb;not null" json:"-"`
	TotalItems int        `gorm:"default:0" json:"total_items"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new parked sale
func (p *ParkedSale) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ParkedSale model
func (ParkedSale) TableName() string {
	return "parked_sales"
}
