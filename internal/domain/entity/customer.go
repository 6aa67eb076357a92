package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/notas-backoffice/pkg/money"
)

// Customer is a merchant served by the back-office: invoices are issued for
// it and POS terminals settle sales to it.
type Customer struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Name           string       `gorm:"size:150;not null" json:"name"`
	WhatsappNumber string       `gorm:"size:20;not null;uniqueIndex:idx_customers_whatsapp_number" json:"whatsapp_number"`
	FeePercent     money.Amount `gorm:"type:decimal(5,2);not null" json:"fee_percent"`
	IsActive       bool         `gorm:"not null" json:"is_active"`
	UsesNF         bool         `gorm:"column:uses_nf;not null" json:"uses_nf"`
	UsesPOS        bool         `gorm:"column:uses_pos;not null" json:"uses_pos"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Relationships
	Rate *CustomerRate `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
