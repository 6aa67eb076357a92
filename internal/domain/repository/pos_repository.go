package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

// PosCompanyRepository defines the interface for acquirer operations
type PosCompanyRepository interface {
	Create(ctx context.Context, company *entity.PosCompany) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PosCompany, error)
	Update(ctx context.Context, company *entity.PosCompany) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, params *pagination.PaginationParams) ([]entity.PosCompany, int64, error)
}

// PosTerminalRepository defines the interface for card terminal operations
type PosTerminalRepository interface {
	Create(ctx context.Context, terminal *entity.PosTerminal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PosTerminal, error)
	// GetWithCompanyAndCustomer returns the terminal with its owners loaded
	GetWithCompanyAndCustomer(ctx context.Context, id uuid.UUID) (*entity.PosTerminal, error)
	Update(ctx context.Context, terminal *entity.PosTerminal) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TerminalFilter, params *pagination.PaginationParams) ([]entity.PosTerminal, int64, error)
}

// CustomerRateRepository defines the interface for per-customer fee tables
type CustomerRateRepository interface {
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*entity.CustomerRate, error)
	// Upsert creates the customer's rate row or replaces its percentages
	Upsert(ctx context.Context, rate *entity.CustomerRate) error
}

// PosSaleRepository defines the interface for POS sale operations
type PosSaleRepository interface {
	Create(ctx context.Context, sale *entity.PosSale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PosSale, error)
	// GetWithTerminalAndCustomer returns the sale with terminal, customer and
	// POS company loaded
	GetWithTerminalAndCustomer(ctx context.Context, id uuid.UUID) (*entity.PosSale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns hydrated sales, most recent sale first
	List(ctx context.Context, filter PosSaleFilter, params *pagination.PaginationParams) ([]entity.PosSale, int64, error)
	// ListAll is List without pagination, used by payouts and exports
	ListAll(ctx context.Context, filter PosSaleFilter) ([]entity.PosSale, error)
	// CountPaid counts how many of ids are already paid
	CountPaid(ctx context.Context, ids []uuid.UUID) (int64, error)
	// MarkPaid flips the unpaid rows of sel to paid in a single statement and
	// returns how many rows changed
	MarkPaid(ctx context.Context, sel PaidSelection, paidAt time.Time, batch string) (int64, error)
}
