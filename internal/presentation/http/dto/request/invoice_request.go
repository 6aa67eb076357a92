package request

import (
	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/pkg/money"
)

// CreateInvoiceRequest represents a nota fiscal registration. Datetimes are
// RFC 3339, or a naive "2006-01-02T15:04:05" read in the business timezone.
type CreateInvoiceRequest struct {
	CustomerID    uuid.UUID     `json:"customer_id" binding:"required"`
	CompanyID     uuid.UUID     `json:"company_id" binding:"required"`
	IssuedAt      *string       `json:"issued_at"`
	TotalAmount   *money.Amount `json:"total_amount" binding:"required"`
	PaidAmount    *money.Amount `json:"paid_amount"`
	FeePercent    *money.Amount `json:"fee_percent"`
	FeeValue      *money.Amount `json:"fee_value"`
	Status        string        `json:"status" binding:"omitempty,invoice_status"`
	BuyerName     *string       `json:"buyer_name" binding:"omitempty,max=150"`
	BuyerCPF      *string       `json:"buyer_cpf" binding:"omitempty,max=20"`
	TerminalID    *string       `json:"terminal_id" binding:"omitempty,max=50"`
	NSU           *string       `json:"nsu" binding:"omitempty,max=50"`
	SaleDatetime  *string       `json:"sale_datetime"`
	SaleAmount    *money.Amount `json:"sale_amount"`
	IsOurTerminal bool          `json:"is_our_terminal"`
	PdfURL        *string       `json:"pdf_url"`
	NfLink        *string       `json:"nf_link"`
}

// UpdateInvoiceRequest is a partial update; absent fields keep their value
type UpdateInvoiceRequest struct {
	CustomerID    *uuid.UUID    `json:"customer_id"`
	CompanyID     *uuid.UUID    `json:"company_id"`
	IssuedAt      *string       `json:"issued_at"`
	TotalAmount   *money.Amount `json:"total_amount"`
	PaidAmount    *money.Amount `json:"paid_amount"`
	FeePercent    *money.Amount `json:"fee_percent"`
	FeeValue      *money.Amount `json:"fee_value"`
	Status        *string       `json:"status" binding:"omitempty,invoice_status"`
	BuyerName     *string       `json:"buyer_name" binding:"omitempty,max=150"`
	BuyerCPF      *string       `json:"buyer_cpf" binding:"omitempty,max=20"`
	TerminalID    *string       `json:"terminal_id" binding:"omitempty,max=50"`
	NSU           *string       `json:"nsu" binding:"omitempty,max=50"`
	SaleDatetime  *string       `json:"sale_datetime"`
	SaleAmount    *money.Amount `json:"sale_amount"`
	IsOurTerminal *bool         `json:"is_our_terminal"`
	PdfURL        *string       `json:"pdf_url"`
	NfLink        *string       `json:"nf_link"`
}
