package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

// Granularity is the bucket size of a period breakdown
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// InvoiceTotals represents the aggregate of a set of invoices
type InvoiceTotals struct {
	TotalInvoices int64        `json:"total_invoices"`
	TotalAmount   money.Amount `json:"total_amount"`
	FeeValue      money.Amount `json:"fee_value"`
}

// StatusCount represents invoices grouped by status
type StatusCount struct {
	Status        enum.InvoiceStatus `json:"status"`
	TotalInvoices int64              `json:"total_invoices"`
}

// PeriodBucket represents invoices grouped by local day or month.
// Period is the start of the bucket in the reporting timezone.
type PeriodBucket struct {
	Period        time.Time
	TotalInvoices int64
	TotalAmount   money.Amount
}

// PartyTotals represents invoices grouped by customer or company
type PartyTotals struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	TotalInvoices int64        `json:"total_invoices"`
	TotalAmount   money.Amount `json:"total_amount"`
	FeeValue      money.Amount `json:"fee_value"`
}

// InvoiceReportRepository defines the read-only aggregations over invoices
type InvoiceReportRepository interface {
	Totals(ctx context.Context, filter InvoiceFilter) (*InvoiceTotals, error)
	ByStatus(ctx context.Context, filter InvoiceFilter) ([]StatusCount, error)
	// ByPeriod buckets issued_at in the named timezone, oldest bucket first
	ByPeriod(ctx context.Context, filter InvoiceFilter, g Granularity, timezone string) ([]PeriodBucket, error)
	// ByCustomer and ByCompany are ordered by summed amount, largest first
	ByCustomer(ctx context.Context, filter InvoiceFilter) ([]PartyTotals, error)
	ByCompany(ctx context.Context, filter InvoiceFilter) ([]PartyTotals, error)
}

// SaleTotals represents the aggregate of a set of POS sales
type SaleTotals struct {
	Gross       money.Amount `json:"gross"`
	Fees        money.Amount `json:"fees"`
	Net         money.Amount `json:"net"`
	GrossPaid   money.Amount `json:"gross_paid"`
	NetPaid     money.Amount `json:"net_paid"`
	GrossUnpaid money.Amount `json:"gross_unpaid"`
	NetUnpaid   money.Amount `json:"net_unpaid"`
	TotalSales  int64        `json:"total_sales"`
}

// TopCustomer represents the customer with the largest gross in a window
type TopCustomer struct {
	CustomerID uuid.UUID    `json:"customer_id"`
	Name       string       `json:"name"`
	Total      money.Amount `json:"total"`
	Count      int64        `json:"count"`
}

// TopTerminal represents the terminal with the largest gross in a window
type TopTerminal struct {
	PosTerminalID uuid.UUID    `json:"pos_terminal_id"`
	TerminalCode  string       `json:"terminal_code"`
	CustomerName  string       `json:"customer_name"`
	Total         money.Amount `json:"total"`
	Count         int64        `json:"count"`
}

// CustomerRef is the minimal customer projection used by the inactivity report
type CustomerRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PosReportRepository defines the read-only aggregations over POS sales.
// Top queries return nil when no sale matches.
type PosReportRepository interface {
	Totals(ctx context.Context, filter PosSaleFilter) (*SaleTotals, error)
	TopCustomer(ctx context.Context, filter PosSaleFilter) (*TopCustomer, error)
	TopTerminal(ctx context.Context, filter PosSaleFilter) (*TopTerminal, error)
	// LargestSale returns the hydrated sale with the largest amount
	LargestSale(ctx context.Context, filter PosSaleFilter) (*entity.PosSale, error)
	// CustomersWithoutSalesSince lists active customers with no sale at or
	// after since, ordered by name
	CustomersWithoutSalesSince(ctx context.Context, since time.Time) ([]CustomerRef, error)
}
