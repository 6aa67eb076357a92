package testutil

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

// Invoices returns the invoice repository
func (s *Store) Invoices() repository.InvoiceRepository { return invoiceRepo{s} }

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, okCustomer := r.s.customers[inv.CustomerID]
	_, okCompany := r.s.companies[inv.CompanyID]
	if !okCustomer || !okCompany {
		return errReferenced
	}
	r.s.stamp(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	stored := *inv
	stored.Customer, stored.Company = nil, nil
	r.s.invoices[inv.ID] = stored
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r invoiceRepo) GetWithCustomerAndCompany(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	r.s.hydrateInvoice(&inv)
	return &inv, nil
}

func (s *Store) hydrateInvoice(inv *entity.Invoice) {
	if c, ok := s.customers[inv.CustomerID]; ok {
		inv.Customer = &c
	}
	if c, ok := s.companies[inv.CompanyID]; ok {
		inv.Company = &c
	}
}

func (r invoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv.UpdatedAt = r.s.Now()
	stored := *inv
	stored.Customer, stored.Company = nil, nil
	r.s.invoices[inv.ID] = stored
	return nil
}

func (r invoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.invoices, id)
	return nil
}

func (r invoiceRepo) List(_ context.Context, f repository.InvoiceFilter, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.s.filterInvoices(f)
	return paginate(rows, params), int64(len(rows)), nil
}

func (r invoiceRepo) ListAll(_ context.Context, f repository.InvoiceFilter) ([]entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.filterInvoices(f), nil
}

// filterInvoices returns hydrated matches, newest issue date first. Caller holds mu.
func (s *Store) filterInvoices(f repository.InvoiceFilter) []entity.Invoice {
	rows := []entity.Invoice{}
	for _, inv := range s.invoices {
		if f.TerminalSale != nil && inv.IsTerminalSale != *f.TerminalSale {
			continue
		}
		if f.CustomerID != nil && inv.CustomerID != *f.CustomerID {
			continue
		}
		if f.CompanyID != nil && inv.CompanyID != *f.CompanyID {
			continue
		}
		if !f.Issued.Contains(inv.IssuedAt) {
			continue
		}
		s.hydrateInvoice(&inv)
		rows = append(rows, inv)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].IssuedAt.Equal(rows[j].IssuedAt) {
			return rows[i].IssuedAt.After(rows[j].IssuedAt)
		}
		return s.before(rows[j].ID, rows[i].ID)
	})
	return rows
}
