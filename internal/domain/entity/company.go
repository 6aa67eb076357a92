package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is an issuer of notas fiscais
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CNPJ      string    `gorm:"column:cnpj;size:18;not null;uniqueIndex:idx_companies_cnpj" json:"cnpj"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	AccessKey string    `gorm:"type:text;not null" json:"access_key"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new company
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Company) TableName() string {
	return "companies"
}
