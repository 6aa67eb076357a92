package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

// PosCompanies returns the acquirer repository
func (s *Store) PosCompanies() repository.PosCompanyRepository { return posCompanyRepo{s} }

// Terminals returns the terminal repository
func (s *Store) Terminals() repository.PosTerminalRepository { return terminalRepo{s} }

// Rates returns the customer rate repository
func (s *Store) Rates() repository.CustomerRateRepository { return rateRepo{s} }

// Sales returns the POS sale repository
func (s *Store) Sales() repository.PosSaleRepository { return saleRepo{s} }

type posCompanyRepo struct{ s *Store }

func (r posCompanyRepo) Create(_ context.Context, c *entity.PosCompany) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.posCompany {
		if other.CNPJ == c.CNPJ {
			return conflict("A POS company with this CNPJ already exists")
		}
	}
	r.s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	r.s.posCompany[c.ID] = *c
	return nil
}

func (r posCompanyRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.PosCompany, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.posCompany[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r posCompanyRepo) Update(_ context.Context, c *entity.PosCompany) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, other := range r.s.posCompany {
		if id != c.ID && other.CNPJ == c.CNPJ {
			return conflict("A POS company with this CNPJ already exists")
		}
	}
	c.UpdatedAt = r.s.Now()
	r.s.posCompany[c.ID] = *c
	return nil
}

func (r posCompanyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.terminals {
		if t.PosCompanyID == id {
			return errReferenced
		}
	}
	for _, sale := range r.s.sales {
		if sale.PosCompanyID == id {
			return errReferenced
		}
	}
	delete(r.s.posCompany, id)
	return nil
}

func (r posCompanyRepo) List(_ context.Context, search string, params *pagination.PaginationParams) ([]entity.PosCompany, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []entity.PosCompany
	for _, c := range r.s.posCompany {
		if search != "" && !contains(c.Name, search) && !contains(c.CNPJ, search) {
			continue
		}
		rows = append(rows, c)
	}
	sortByName(rows, func(c entity.PosCompany) string { return c.Name }, func(c entity.PosCompany) uuid.UUID { return c.ID }, r.s)
	return paginate(rows, params), int64(len(rows)), nil
}

type terminalRepo struct{ s *Store }

func (r terminalRepo) unique(t *entity.PosTerminal) error {
	for id, other := range r.s.terminals {
		if id != t.ID && other.PosCompanyID == t.PosCompanyID && other.TerminalCode == t.TerminalCode {
			return conflict("Terminal code already registered for this POS company")
		}
	}
	return nil
}

func (r terminalRepo) Create(_ context.Context, t *entity.PosTerminal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.unique(t); err != nil {
		return err
	}
	_, okCustomer := r.s.customers[t.CustomerID]
	_, okCompany := r.s.posCompany[t.PosCompanyID]
	if !okCustomer || !okCompany {
		return errReferenced
	}
	r.s.stamp(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	stored := *t
	stored.Customer, stored.PosCompany = nil, nil
	r.s.terminals[t.ID] = stored
	return nil
}

func (r terminalRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.PosTerminal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.terminals[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r terminalRepo) GetWithCompanyAndCustomer(_ context.Context, id uuid.UUID) (*entity.PosTerminal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.terminals[id]
	if !ok {
		return nil, nil
	}
	r.s.hydrateTerminal(&t)
	return &t, nil
}

func (s *Store) hydrateTerminal(t *entity.PosTerminal) {
	if c, ok := s.customers[t.CustomerID]; ok {
		t.Customer = &c
	}
	if c, ok := s.posCompany[t.PosCompanyID]; ok {
		t.PosCompany = &c
	}
}

func (r terminalRepo) Update(_ context.Context, t *entity.PosTerminal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.unique(t); err != nil {
		return err
	}
	t.UpdatedAt = r.s.Now()
	stored := *t
	stored.Customer, stored.PosCompany = nil, nil
	r.s.terminals[t.ID] = stored
	return nil
}

func (r terminalRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sale := range r.s.sales {
		if sale.PosTerminalID == id {
			return errReferenced
		}
	}
	delete(r.s.terminals, id)
	return nil
}

func (r terminalRepo) List(_ context.Context, f repository.TerminalFilter, params *pagination.PaginationParams) ([]entity.PosTerminal, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []entity.PosTerminal
	for _, t := range r.s.terminals {
		if f.PosCompanyID != nil && t.PosCompanyID != *f.PosCompanyID {
			continue
		}
		if f.CustomerID != nil && t.CustomerID != *f.CustomerID {
			continue
		}
		r.s.hydrateTerminal(&t)
		rows = append(rows, t)
	}
	sortByName(rows, func(t entity.PosTerminal) string { return t.TerminalCode }, func(t entity.PosTerminal) uuid.UUID { return t.ID }, r.s)
	return paginate(rows, params), int64(len(rows)), nil
}

type rateRepo struct{ s *Store }

func (r rateRepo) GetByCustomerID(_ context.Context, customerID uuid.UUID) (*entity.CustomerRate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rate, ok := r.s.rates[customerID]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func (r rateRepo) Upsert(_ context.Context, rate *entity.CustomerRate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[rate.CustomerID]; !ok {
		return errReferenced
	}
	if existing, ok := r.s.rates[rate.CustomerID]; ok {
		rate.ID = existing.ID
		rate.CreatedAt = existing.CreatedAt
		rate.UpdatedAt = r.s.Now()
	} else {
		r.s.stamp(&rate.ID, &rate.CreatedAt, &rate.UpdatedAt)
	}
	r.s.rates[rate.CustomerID] = *rate
	return nil
}

type saleRepo struct{ s *Store }

func (r saleRepo) Create(_ context.Context, sale *entity.PosSale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, okCustomer := r.s.customers[sale.CustomerID]
	_, okCompany := r.s.posCompany[sale.PosCompanyID]
	_, okTerminal := r.s.terminals[sale.PosTerminalID]
	if !okCustomer || !okCompany || !okTerminal {
		return errReferenced
	}
	r.s.stamp(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
	stored := *sale
	stored.Customer, stored.PosCompany, stored.PosTerminal = nil, nil, nil
	r.s.sales[sale.ID] = stored
	return nil
}

func (r saleRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.PosSale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return &sale, nil
}

func (r saleRepo) GetWithTerminalAndCustomer(_ context.Context, id uuid.UUID) (*entity.PosSale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	r.s.hydrateSale(&sale)
	return &sale, nil
}

func (s *Store) hydrateSale(sale *entity.PosSale) {
	if c, ok := s.customers[sale.CustomerID]; ok {
		sale.Customer = &c
	}
	if c, ok := s.posCompany[sale.PosCompanyID]; ok {
		sale.PosCompany = &c
	}
	if t, ok := s.terminals[sale.PosTerminalID]; ok {
		sale.PosTerminal = &t
	}
}

func (r saleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sales, id)
	return nil
}

func (r saleRepo) List(_ context.Context, f repository.PosSaleFilter, params *pagination.PaginationParams) ([]entity.PosSale, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.s.filterSales(f)
	return paginate(rows, params), int64(len(rows)), nil
}

func (r saleRepo) ListAll(_ context.Context, f repository.PosSaleFilter) ([]entity.PosSale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.filterSales(f), nil
}

func (r saleRepo) CountPaid(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if sale, ok := r.s.sales[id]; ok && sale.Paid {
			n++
		}
	}
	return n, nil
}

func (r saleRepo) MarkPaid(_ context.Context, sel repository.PaidSelection, paidAt time.Time, batch string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var targets []uuid.UUID
	if len(sel.IDs) > 0 {
		targets = sel.IDs
	} else {
		for _, sale := range r.s.filterSales(sel.Filter) {
			targets = append(targets, sale.ID)
		}
	}
	var n int64
	for _, id := range targets {
		sale, ok := r.s.sales[id]
		if !ok || sale.Paid {
			continue
		}
		at, b := paidAt, batch
		sale.Paid = true
		sale.PaidAt = &at
		sale.PaymentBatch = &b
		sale.UpdatedAt = r.s.Now()
		r.s.sales[id] = sale
		n++
	}
	return n, nil
}

// filterSales returns hydrated matches, most recent sale first. Caller holds mu.
func (s *Store) filterSales(f repository.PosSaleFilter) []entity.PosSale {
	rows := []entity.PosSale{}
	for _, sale := range s.sales {
		if f.CustomerID != nil && sale.CustomerID != *f.CustomerID {
			continue
		}
		if f.PosCompanyID != nil && sale.PosCompanyID != *f.PosCompanyID {
			continue
		}
		if f.PosTerminalID != nil && sale.PosTerminalID != *f.PosTerminalID {
			continue
		}
		if f.PaymentType != "" && sale.PaymentType != f.PaymentType {
			continue
		}
		if f.OnlyUnpaid && sale.Paid {
			continue
		}
		if !f.Sold.Contains(sale.SaleDatetime) {
			continue
		}
		s.hydrateSale(&sale)
		rows = append(rows, sale)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].SaleDatetime.Equal(rows[j].SaleDatetime) {
			return rows[i].SaleDatetime.After(rows[j].SaleDatetime)
		}
		return s.before(rows[j].ID, rows[i].ID)
	})
	return rows
}
