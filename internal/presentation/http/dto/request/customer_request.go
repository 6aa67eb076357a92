package request

import "github.com/sangkips/notas-backoffice/pkg/money"

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name           string        `json:"name" binding:"required,max=150"`
	WhatsappNumber string        `json:"whatsapp_number" binding:"required,max=20"`
	FeePercent     *money.Amount `json:"fee_percent"`
	IsActive       *bool         `json:"is_active"`
	UsesNF         *bool         `json:"uses_nf"`
	UsesPOS        *bool         `json:"uses_pos"`
}

// UpdateCustomerRequest represents a partial customer update
type UpdateCustomerRequest struct {
	Name           *string       `json:"name" binding:"omitempty,min=1,max=150"`
	WhatsappNumber *string       `json:"whatsapp_number" binding:"omitempty,min=1,max=20"`
	FeePercent     *money.Amount `json:"fee_percent"`
	IsActive       *bool         `json:"is_active"`
	UsesNF         *bool         `json:"uses_nf"`
	UsesPOS        *bool         `json:"uses_pos"`
}

type CreateCompanyRequest struct {
	CNPJ      string `json:"cnpj" binding:"required,max=18"`
	Name      string `json:"name" binding:"required,max=255"`
	AccessKey string `json:"access_key" binding:"required"`
	IsActive  *bool  `json:"is_active"`
}

type UpdateCompanyRequest struct {
	CNPJ      *string `json:"cnpj" binding:"omitempty,min=1,max=18"`
	Name      *string `json:"name" binding:"omitempty,min=1,max=255"`
	AccessKey *string `json:"access_key" binding:"omitempty,min=1"`
	IsActive  *bool   `json:"is_active"`
}
