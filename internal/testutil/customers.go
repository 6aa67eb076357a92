package testutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

var errReferenced = apperror.NewBadRequestError("Record is referenced by or references missing data")

// Customers returns the customer repository
func (s *Store) Customers() repository.CustomerRepository { return customerRepo{s} }

// Companies returns the company repository
func (s *Store) Companies() repository.CompanyRepository { return companyRepo{s} }

type customerRepo struct{ s *Store }

func (r customerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.customers {
		if other.WhatsappNumber == c.WhatsappNumber {
			return conflict("A customer with this WhatsApp number already exists")
		}
	}
	r.s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	r.s.customers[c.ID] = *c
	return nil
}

func (r customerRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r customerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, other := range r.s.customers {
		if id != c.ID && other.WhatsappNumber == c.WhatsappNumber {
			return conflict("A customer with this WhatsApp number already exists")
		}
	}
	c.UpdatedAt = r.s.Now()
	r.s.customers[c.ID] = *c
	return nil
}

func (r customerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.terminals {
		if t.CustomerID == id {
			return errReferenced
		}
	}
	for _, sale := range r.s.sales {
		if sale.CustomerID == id {
			return errReferenced
		}
	}
	for invID, inv := range r.s.invoices {
		if inv.CustomerID == id {
			delete(r.s.invoices, invID)
		}
	}
	delete(r.s.rates, id)
	delete(r.s.customers, id)
	return nil
}

func (r customerRepo) List(_ context.Context, f repository.CustomerFilter, params *pagination.PaginationParams) ([]entity.Customer, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []entity.Customer
	for _, c := range r.s.customers {
		if f.Search != "" && !contains(c.Name, f.Search) && !contains(c.WhatsappNumber, f.Search) {
			continue
		}
		if f.Active != nil && c.IsActive != *f.Active {
			continue
		}
		rows = append(rows, c)
	}
	sortByName(rows, func(c entity.Customer) string { return c.Name }, func(c entity.Customer) uuid.UUID { return c.ID }, r.s)
	return paginate(rows, params), int64(len(rows)), nil
}

type companyRepo struct{ s *Store }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.companies {
		if other.CNPJ == c.CNPJ {
			return conflict("A company with this CNPJ already exists")
		}
	}
	r.s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	r.s.companies[c.ID] = *c
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r companyRepo) Update(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, other := range r.s.companies {
		if id != c.ID && other.CNPJ == c.CNPJ {
			return conflict("A company with this CNPJ already exists")
		}
	}
	c.UpdatedAt = r.s.Now()
	r.s.companies[c.ID] = *c
	return nil
}

func (r companyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for invID, inv := range r.s.invoices {
		if inv.CompanyID == id {
			delete(r.s.invoices, invID)
		}
	}
	delete(r.s.companies, id)
	return nil
}

func (r companyRepo) List(_ context.Context, search string, params *pagination.PaginationParams) ([]entity.Company, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []entity.Company
	for _, c := range r.s.companies {
		if search != "" && !contains(c.Name, search) && !contains(c.CNPJ, search) {
			continue
		}
		rows = append(rows, c)
	}
	sortByName(rows, func(c entity.Company) string { return c.Name }, func(c entity.Company) uuid.UUID { return c.ID }, r.s)
	return paginate(rows, params), int64(len(rows)), nil
}
