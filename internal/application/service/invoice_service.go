package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/internal/domain/fee"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/money"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

// InvoiceService handles notas fiscais
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	companyRepo  repository.CompanyRepository
	tx           repository.Transactor
	cache        ReportCache
	now          func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	companyRepo repository.CompanyRepository,
	tx repository.Transactor,
	cache ReportCache,
) *InvoiceService {
	if cache == nil {
		cache = noopCache{}
	}
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		tx:           tx,
		cache:        cache,
		now:          time.Now,
	}
}

// CreateInvoiceInput represents the create invoice input. Fee fields may be
// omitted when the sale ran on one of our own terminals.
type CreateInvoiceInput struct {
	CustomerID    uuid.UUID
	CompanyID     uuid.UUID
	IssuedAt      *time.Time
	TotalAmount   money.Amount
	PaidAmount    *money.Amount
	FeePercent    *money.Amount
	FeeValue      *money.Amount
	Status        enum.InvoiceStatus
	BuyerName     *string
	BuyerCPF      *string
	TerminalID    *string
	NSU           *string
	SaleDatetime  *time.Time
	SaleAmount    *money.Amount
	IsOurTerminal bool
	PdfURL        *string
	NfLink        *string
}

// CreateInvoice validates the parties and fees and stores a new invoice
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	var errs []*apperror.FieldError
	if input.CustomerID == uuid.Nil {
		errs = append(errs, &apperror.FieldError{Field: "customer_id", Message: "is required"})
	}
	if input.CompanyID == uuid.Nil {
		errs = append(errs, &apperror.FieldError{Field: "company_id", Message: "is required"})
	}
	if !input.TotalAmount.IsPositive() {
		errs = append(errs, &apperror.FieldError{Field: "total_amount", Message: "must be greater than zero"})
	}
	if input.Status != "" && !input.Status.IsValid() {
		errs = append(errs, &apperror.FieldError{Field: "status", Message: "must be EMITIDA, PAGA or CANCELADA"})
	}
	if !input.IsOurTerminal {
		if input.FeePercent == nil {
			errs = append(errs, &apperror.FieldError{Field: "fee_percent", Message: "is required"})
		} else {
			errs = append(errs, checkPercent("fee_percent", *input.FeePercent))
		}
		switch {
		case input.FeeValue == nil:
			errs = append(errs, &apperror.FieldError{Field: "fee_value", Message: "is required"})
		case input.FeeValue.IsNegative():
			errs = append(errs, &apperror.FieldError{Field: "fee_value", Message: "must not be negative"})
		}
	}
	if err := collect(errs...); err != nil {
		return nil, err
	}

	invoice := &entity.Invoice{
		CustomerID:    input.CustomerID,
		CompanyID:     input.CompanyID,
		TotalAmount:   input.TotalAmount,
		PaidAmount:    input.PaidAmount,
		FeePercent:    money.Zero(),
		FeeValue:      money.Zero(),
		Status:        input.Status,
		BuyerName:     input.BuyerName,
		BuyerCPF:      input.BuyerCPF,
		TerminalID:    input.TerminalID,
		NSU:           input.NSU,
		SaleDatetime:  input.SaleDatetime,
		SaleAmount:    input.SaleAmount,
		IsOurTerminal: input.IsOurTerminal,
		PdfURL:        input.PdfURL,
		NfLink:        input.NfLink,
	}
	if invoice.Status == "" {
		invoice.Status = enum.InvoiceStatusIssued
	}
	if input.IssuedAt != nil {
		invoice.IssuedAt = *input.IssuedAt
	} else {
		invoice.IssuedAt = s.now()
	}
	if !input.IsOurTerminal {
		if err := applyFee(invoice, *input.FeePercent, input.FeeValue); err != nil {
			return nil, err
		}
	}
	invoice.ApplyTerminalRules()

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkParties(ctx, invoice.CustomerID, invoice.CompanyID); err != nil {
			return err
		}
		return s.invoiceRepo.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return invoice, nil
}

// applyFee sets the percent and either the given fee value or one computed
// from the invoice total.
func applyFee(invoice *entity.Invoice, percent money.Amount, value *money.Amount) error {
	invoice.FeePercent = percent
	if value != nil {
		invoice.FeeValue = *value
		return nil
	}
	breakdown, err := fee.ComputeFee(invoice.TotalAmount, percent)
	if err != nil {
		return err
	}
	invoice.FeeValue = breakdown.FeeValue
	return nil
}

// checkParties rejects unknown customers and unknown or inactive companies
func (s *InvoiceService) checkParties(ctx context.Context, customerID, companyID uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewFieldError("customer_id", "customer not found")
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return apperror.NewFieldError("company_id", "company not found")
	}
	if !company.IsActive {
		return apperror.NewFieldError("company_id", "company is inactive")
	}
	return nil
}

// GetInvoice returns the invoice with customer and company
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithCustomerAndCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices, most recently issued first
func (s *InvoiceService) ListInvoices(ctx context.Context, filter repository.InvoiceFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	params.Validate()
	invoices, total, err := s.invoiceRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.Limit, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// UpdateInvoiceInput represents a partial invoice update
type UpdateInvoiceInput struct {
	ID            uuid.UUID
	CustomerID    *uuid.UUID
	CompanyID     *uuid.UUID
	IssuedAt      *time.Time
	TotalAmount   *money.Amount
	PaidAmount    *money.Amount
	FeePercent    *money.Amount
	FeeValue      *money.Amount
	Status        *enum.InvoiceStatus
	BuyerName     *string
	BuyerCPF      *string
	TerminalID    *string
	NSU           *string
	SaleDatetime  *time.Time
	SaleAmount    *money.Amount
	IsOurTerminal *bool
	PdfURL        *string
	NfLink        *string
}

// UpdateInvoice merges input into the stored invoice and re-applies the
// terminal rules over the merged state.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, input *UpdateInvoiceInput) (*entity.Invoice, error) {
	var errs []*apperror.FieldError
	if input.TotalAmount != nil && !input.TotalAmount.IsPositive() {
		errs = append(errs, &apperror.FieldError{Field: "total_amount", Message: "must be greater than zero"})
	}
	if input.Status != nil && !input.Status.IsValid() {
		errs = append(errs, &apperror.FieldError{Field: "status", Message: "must be EMITIDA, PAGA or CANCELADA"})
	}
	if input.FeePercent != nil {
		errs = append(errs, checkPercent("fee_percent", *input.FeePercent))
	}
	if input.FeeValue != nil && input.FeeValue.IsNegative() {
		errs = append(errs, &apperror.FieldError{Field: "fee_value", Message: "must not be negative"})
	}
	if err := collect(errs...); err != nil {
		return nil, err
	}

	var invoice *entity.Invoice
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}

		mergeInvoice(invoice, input)
		if input.FeePercent != nil {
			if err := applyFee(invoice, *input.FeePercent, input.FeeValue); err != nil {
				return err
			}
		} else if input.FeeValue != nil {
			invoice.FeeValue = *input.FeeValue
		}
		invoice.ApplyTerminalRules()

		if input.CustomerID != nil || input.CompanyID != nil {
			if err := s.checkParties(ctx, invoice.CustomerID, invoice.CompanyID); err != nil {
				return err
			}
		}
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return s.GetInvoice(ctx, invoice.ID)
}

func mergeInvoice(invoice *entity.Invoice, input *UpdateInvoiceInput) {
	if input.CustomerID != nil {
		invoice.CustomerID = *input.CustomerID
	}
	if input.CompanyID != nil {
		invoice.CompanyID = *input.CompanyID
	}
	if input.IssuedAt != nil {
		invoice.IssuedAt = *input.IssuedAt
	}
	if input.TotalAmount != nil {
		invoice.TotalAmount = *input.TotalAmount
	}
	if input.PaidAmount != nil {
		invoice.PaidAmount = input.PaidAmount
	}
	if input.Status != nil {
		invoice.Status = *input.Status
	}
	if input.BuyerName != nil {
		invoice.BuyerName = input.BuyerName
	}
	if input.BuyerCPF != nil {
		invoice.BuyerCPF = input.BuyerCPF
	}
	if input.TerminalID != nil {
		invoice.TerminalID = input.TerminalID
	}
	if input.NSU != nil {
		invoice.NSU = input.NSU
	}
	if input.SaleDatetime != nil {
		invoice.SaleDatetime = input.SaleDatetime
	}
	if input.SaleAmount != nil {
		invoice.SaleAmount = input.SaleAmount
	}
	if input.IsOurTerminal != nil {
		invoice.IsOurTerminal = *input.IsOurTerminal
	}
	if input.PdfURL != nil {
		invoice.PdfURL = input.PdfURL
	}
	if input.NfLink != nil {
		invoice.NfLink = input.NfLink
	}
}

// DeleteInvoice hard-deletes an invoice
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		return s.invoiceRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}
