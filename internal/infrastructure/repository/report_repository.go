package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	domainRepo "github.com/sangkips/notas-backoffice/internal/domain/repository"
)

type invoiceReportRepository struct {
	db *gorm.DB
}

// NewInvoiceReportRepository creates the invoice aggregation repository
func NewInvoiceReportRepository(db *gorm.DB) domainRepo.InvoiceReportRepository {
	return &invoiceReportRepository{db: db}
}

func (r *invoiceReportRepository) invoices(ctx context.Context, f domainRepo.InvoiceFilter) *gorm.DB {
	return conn(ctx, r.db).Model(&entity.Invoice{}).Scopes(InvoiceFilterScope(f))
}

func (r *invoiceReportRepository) Totals(ctx context.Context, f domainRepo.InvoiceFilter) (*domainRepo.InvoiceTotals, error) {
	var totals domainRepo.InvoiceTotals
	err := r.invoices(ctx, f).
		Select(`COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(invoices.total_amount), 0) AS total_amount,
			COALESCE(SUM(invoices.fee_value), 0) AS fee_value`).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *invoiceReportRepository) ByStatus(ctx context.Context, f domainRepo.InvoiceFilter) ([]domainRepo.StatusCount, error) {
	var rows []domainRepo.StatusCount
	err := r.invoices(ctx, f).
		Select("invoices.status AS status, COUNT(invoices.id) AS total_invoices").
		Group("invoices.status").
		Order("invoices.status").
		Scan(&rows).Error
	return rows, err
}

func (r *invoiceReportRepository) ByPeriod(ctx context.Context, f domainRepo.InvoiceFilter, g domainRepo.Granularity, timezone string) ([]domainRepo.PeriodBucket, error) {
	var rows []domainRepo.PeriodBucket
	// AT TIME ZONE yields the local wall clock so buckets follow local midnight
	err := r.invoices(ctx, f).
		Select(`date_trunc(?, invoices.issued_at AT TIME ZONE ?) AS period,
			COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(invoices.total_amount), 0) AS total_amount`, string(g), timezone).
		Group("period").
		Order("period").
		Scan(&rows).Error
	return rows, err
}

func (r *invoiceReportRepository) ByCustomer(ctx context.Context, f domainRepo.InvoiceFilter) ([]domainRepo.PartyTotals, error) {
	var rows []domainRepo.PartyTotals
	err := r.invoices(ctx, f).
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Select(`customers.id AS id, customers.name AS name,
			COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(invoices.total_amount), 0) AS total_amount,
			COALESCE(SUM(invoices.fee_value), 0) AS fee_value`).
		Group("customers.id, customers.name").
		Order("SUM(invoices.total_amount) DESC, MIN(invoices.created_at) ASC, customers.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *invoiceReportRepository) ByCompany(ctx context.Context, f domainRepo.InvoiceFilter) ([]domainRepo.PartyTotals, error) {
	var rows []domainRepo.PartyTotals
	err := r.invoices(ctx, f).
		Joins("JOIN companies ON companies.id = invoices.company_id").
		Select(`companies.id AS id, companies.name AS name,
			COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(invoices.total_amount), 0) AS total_amount,
			COALESCE(SUM(invoices.fee_value), 0) AS fee_value`).
		Group("companies.id, companies.name").
		Order("SUM(invoices.total_amount) DESC, MIN(invoices.created_at) ASC, companies.id ASC").
		Scan(&rows).Error
	return rows, err
}

type posReportRepository struct {
	db *gorm.DB
}

// NewPosReportRepository creates the POS aggregation repository
func NewPosReportRepository(db *gorm.DB) domainRepo.PosReportRepository {
	return &posReportRepository{db: db}
}

func (r *posReportRepository) sales(ctx context.Context, f domainRepo.PosSaleFilter) *gorm.DB {
	return conn(ctx, r.db).Model(&entity.PosSale{}).Scopes(PosSaleFilterScope(f))
}

func (r *posReportRepository) Totals(ctx context.Context, f domainRepo.PosSaleFilter) (*domainRepo.SaleTotals, error) {
	var totals domainRepo.SaleTotals
	err := r.sales(ctx, f).
		Select(`COUNT(pos_sales.id) AS total_sales,
			COALESCE(SUM(pos_sales.amount), 0) AS gross,
			COALESCE(SUM(pos_sales.fee_value), 0) AS fees,
			COALESCE(SUM(pos_sales.net_amount), 0) AS net,
			COALESCE(SUM(pos_sales.amount) FILTER (WHERE pos_sales.paid), 0) AS gross_paid,
			COALESCE(SUM(pos_sales.net_amount) FILTER (WHERE pos_sales.paid), 0) AS net_paid,
			COALESCE(SUM(pos_sales.amount) FILTER (WHERE NOT COALESCE(pos_sales.paid, false)), 0) AS gross_unpaid,
			COALESCE(SUM(pos_sales.net_amount) FILTER (WHERE NOT COALESCE(pos_sales.paid, false)), 0) AS net_unpaid`).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *posReportRepository) TopCustomer(ctx context.Context, f domainRepo.PosSaleFilter) (*domainRepo.TopCustomer, error) {
	var rows []domainRepo.TopCustomer
	err := r.sales(ctx, f).
		Joins("JOIN customers ON customers.id = pos_sales.customer_id").
		Select(`customers.id AS customer_id, customers.name AS name,
			SUM(pos_sales.amount) AS total,
			COUNT(pos_sales.id) AS count`).
		Group("customers.id, customers.name").
		Order("SUM(pos_sales.amount) DESC, MIN(pos_sales.created_at) ASC, customers.id ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *posReportRepository) TopTerminal(ctx context.Context, f domainRepo.PosSaleFilter) (*domainRepo.TopTerminal, error) {
	var rows []domainRepo.TopTerminal
	err := r.sales(ctx, f).
		Joins("JOIN pos_terminals ON pos_terminals.id = pos_sales.pos_terminal_id").
		Joins("JOIN customers ON customers.id = pos_terminals.customer_id").
		Select(`pos_terminals.id AS pos_terminal_id,
			pos_terminals.terminal_code AS terminal_code,
			customers.name AS customer_name,
			SUM(pos_sales.amount) AS total,
			COUNT(pos_sales.id) AS count`).
		Group("pos_terminals.id, pos_terminals.terminal_code, customers.name").
		Order("SUM(pos_sales.amount) DESC, MIN(pos_sales.created_at) ASC, pos_terminals.id ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *posReportRepository) LargestSale(ctx context.Context, f domainRepo.PosSaleFilter) (*entity.PosSale, error) {
	var sale entity.PosSale
	err := conn(ctx, r.db).
		Scopes(PosSaleFilterScope(f)).
		Preload("Customer").
		Preload("PosCompany").
		Preload("PosTerminal").
		Order("pos_sales.amount DESC, pos_sales.created_at ASC, pos_sales.id ASC").
		Take(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *posReportRepository) CustomersWithoutSalesSince(ctx context.Context, since time.Time) ([]domainRepo.CustomerRef, error) {
	var refs []domainRepo.CustomerRef
	err := conn(ctx, r.db).Model(&entity.Customer{}).
		Select("customers.id, customers.name").
		Where("customers.is_active = ?", true).
		Where(`NOT EXISTS (
			SELECT 1 FROM pos_sales
			WHERE pos_sales.customer_id = customers.id AND pos_sales.sale_datetime >= ?)`, since).
		Order("customers.name ASC, customers.id ASC").
		Scan(&refs).Error
	return refs, err
}
