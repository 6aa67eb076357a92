package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	domainRepo "github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/infrastructure/database"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

const invoiceOrder = "invoices.issued_at DESC, invoices.created_at DESC, invoices.id DESC"

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return database.TranslateError(conn(ctx, r.db).Omit(clause.Associations).Create(invoice).Error)
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetWithCustomerAndCompany(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).
		Preload("Customer").
		Preload("Company").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	return database.TranslateError(conn(ctx, r.db).Omit(clause.Associations).Save(invoice).Error)
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepository) List(ctx context.Context, filter domainRepo.InvoiceFilter, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := conn(ctx, r.db).Model(&entity.Invoice{}).Scopes(InvoiceFilterScope(filter))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.
		Preload("Customer").
		Preload("Company").
		Offset(params.Offset()).Limit(params.Limit).
		Order(invoiceOrder).
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) ListAll(ctx context.Context, filter domainRepo.InvoiceFilter) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := conn(ctx, r.db).
		Scopes(InvoiceFilterScope(filter)).
		Preload("Customer").
		Preload("Company").
		Order(invoiceOrder).
		Find(&invoices).Error
	return invoices, err
}
