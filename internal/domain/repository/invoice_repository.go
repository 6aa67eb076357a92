package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

// InvoiceRepository defines the interface for nota fiscal operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// GetWithCustomerAndCompany returns the invoice with both parties loaded
	GetWithCustomerAndCompany(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns hydrated invoices, newest issue date first
	List(ctx context.Context, filter InvoiceFilter, params *pagination.PaginationParams) ([]entity.Invoice, int64, error)
	// ListAll is List without pagination, used by per-party reports
	ListAll(ctx context.Context, filter InvoiceFilter) ([]entity.Invoice, error)
}
