package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/enum"
)

// DateRange bounds a query on its entity's main timestamp. Both ends are
// inclusive and either may be open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

type CustomerFilter struct {
	Search string
	Active *bool
}

// InvoiceFilter narrows invoice listings and invoice reports
type InvoiceFilter struct {
	TerminalSale *bool
	CustomerID   *uuid.UUID
	CompanyID    *uuid.UUID
	Issued       DateRange
}

type TerminalFilter struct {
	PosCompanyID *uuid.UUID
	CustomerID   *uuid.UUID
}

// PosSaleFilter narrows sale listings, payouts and POS reports
type PosSaleFilter struct {
	CustomerID    *uuid.UUID
	PosCompanyID  *uuid.UUID
	PosTerminalID *uuid.UUID
	PaymentType   enum.PaymentType
	Sold          DateRange
	OnlyUnpaid    bool
}

// PaidSelection picks the sales a payout closes. When IDs is non-empty the
// filter is ignored. Rows that are already paid are never selected.
type PaidSelection struct {
	IDs    []uuid.UUID
	Filter PosSaleFilter
}
