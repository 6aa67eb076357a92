package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	domainRepo "github.com/sangkips/notas-backoffice/internal/domain/repository"
)

type ctxKey string

// txKey is the context key holding the transaction opened by the transactor
const txKey ctxKey = "gorm_tx"

// conn returns the transaction stored in ctx, or db when there is none.
// Every repository query starts here.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor backed by db
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
// Nested calls reuse the outer transaction.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

// DateRangeScope filters column by an inclusive date range
func DateRangeScope(column string, r domainRepo.DateRange) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.Start != nil {
			db = db.Where(column+" >= ?", *r.Start)
		}
		if r.End != nil {
			db = db.Where(column+" <= ?", *r.End)
		}
		return db
	}
}

// SearchScope matches term against any of columns, case-insensitively
func SearchScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + term + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, c := range columns {
			clauses[i] = c + " ILIKE ?"
			args[i] = like
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// InvoiceFilterScope applies an InvoiceFilter to a query on invoices
func InvoiceFilterScope(f domainRepo.InvoiceFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.TerminalSale != nil {
			db = db.Where("invoices.is_terminal_sale = ?", *f.TerminalSale)
		}
		if f.CustomerID != nil {
			db = db.Where("invoices.customer_id = ?", *f.CustomerID)
		}
		if f.CompanyID != nil {
			db = db.Where("invoices.company_id = ?", *f.CompanyID)
		}
		return db.Scopes(DateRangeScope("invoices.issued_at", f.Issued))
	}
}

// PosSaleFilterScope applies a PosSaleFilter to a query on pos_sales
func PosSaleFilterScope(f domainRepo.PosSaleFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.CustomerID != nil {
			db = db.Where("pos_sales.customer_id = ?", *f.CustomerID)
		}
		if f.PosCompanyID != nil {
			db = db.Where("pos_sales.pos_company_id = ?", *f.PosCompanyID)
		}
		if f.PosTerminalID != nil {
			db = db.Where("pos_sales.pos_terminal_id = ?", *f.PosTerminalID)
		}
		if f.PaymentType != "" {
			db = db.Where("pos_sales.payment_type = ?", f.PaymentType)
		}
		if f.OnlyUnpaid {
			db = db.Where("(pos_sales.paid = ? OR pos_sales.paid IS NULL)", false)
		}
		return db.Scopes(DateRangeScope("pos_sales.sale_datetime", f.Sold))
	}
}
