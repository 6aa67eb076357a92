package request

import (
	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/pkg/money"
)

type CreatePosCompanyRequest struct {
	Name     string `json:"name" binding:"required,max=150"`
	CNPJ     string `json:"cnpj" binding:"required,max=20"`
	IsActive *bool  `json:"is_active"`
}

type UpdatePosCompanyRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=150"`
	CNPJ     *string `json:"cnpj" binding:"omitempty,min=1,max=20"`
	IsActive *bool   `json:"is_active"`
}

type CreateTerminalRequest struct {
	PosCompanyID uuid.UUID `json:"pos_company_id" binding:"required"`
	CustomerID   uuid.UUID `json:"customer_id" binding:"required"`
	TerminalCode string    `json:"terminal_code" binding:"required,max=50"`
	IsActive     *bool     `json:"is_active"`
}

type UpdateTerminalRequest struct {
	PosCompanyID *uuid.UUID `json:"pos_company_id"`
	CustomerID   *uuid.UUID `json:"customer_id"`
	TerminalCode *string    `json:"terminal_code" binding:"omitempty,min=1,max=50"`
	IsActive     *bool      `json:"is_active"`
}

// UpsertRateRequest replaces every rate of a customer; missing percents are zero
type UpsertRateRequest struct {
	DebitPercent        money.Amount `json:"debit_percent"`
	CreditAVistaPercent money.Amount `json:"credit_avista_percent"`
	Credit2To6Percent   money.Amount `json:"credit_2a6_percent"`
	Credit7To12Percent  money.Amount `json:"credit_7a12_percent"`
	PixKey              *string      `json:"pix_key" binding:"omitempty,max=150"`
}

// CreateSaleRequest records one terminal transaction
type CreateSaleRequest struct {
	PosTerminalID uuid.UUID     `json:"pos_terminal_id" binding:"required"`
	NSU           string        `json:"nsu" binding:"required,max=50"`
	SaleDatetime  string        `json:"sale_datetime" binding:"required"`
	Amount        *money.Amount `json:"amount" binding:"required"`
	PaymentType   string        `json:"payment_type" binding:"required,payment_type"`
}

// MarkPaidRequest selects sales either by id or by period and terminal
type MarkPaidRequest struct {
	SaleIDs       []uuid.UUID `json:"sale_ids"`
	Start         string      `json:"start"`
	End           string      `json:"end"`
	PosTerminalID *uuid.UUID  `json:"pos_terminal_id"`
	PaymentBatch  string      `json:"payment_batch" binding:"omitempty,max=100"`
}
