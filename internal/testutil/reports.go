package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

// InvoiceReports returns the invoice aggregation repository
func (s *Store) InvoiceReports() repository.InvoiceReportRepository { return invoiceReportRepo{s} }

// PosReports returns the POS aggregation repository
func (s *Store) PosReports() repository.PosReportRepository { return posReportRepo{s} }

type invoiceReportRepo struct{ s *Store }

func (r invoiceReportRepo) Totals(_ context.Context, f repository.InvoiceFilter) (*repository.InvoiceTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := repository.InvoiceTotals{TotalAmount: money.Zero(), FeeValue: money.Zero()}
	for _, inv := range r.s.filterInvoices(f) {
		totals.TotalInvoices++
		totals.TotalAmount = totals.TotalAmount.Add(inv.TotalAmount)
		totals.FeeValue = totals.FeeValue.Add(inv.FeeValue)
	}
	return &totals, nil
}

func (r invoiceReportRepo) ByStatus(_ context.Context, f repository.InvoiceFilter) ([]repository.StatusCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[enum.InvoiceStatus]int64{}
	for _, inv := range r.s.filterInvoices(f) {
		counts[inv.Status]++
	}
	var rows []repository.StatusCount
	for status, n := range counts {
		rows = append(rows, repository.StatusCount{Status: status, TotalInvoices: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Status < rows[j].Status })
	return rows, nil
}

func (r invoiceReportRepo) ByPeriod(_ context.Context, f repository.InvoiceFilter, g repository.Granularity, timezone string) ([]repository.PeriodBucket, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	buckets := map[time.Time]*repository.PeriodBucket{}
	for _, inv := range r.s.filterInvoices(f) {
		local := inv.IssuedAt.In(loc)
		day := 1
		if g == repository.GranularityDay {
			day = local.Day()
		}
		// naive wall clock, the same value date_trunc returns for a timestamp without zone
		key := time.Date(local.Year(), local.Month(), day, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[key]
		if !ok {
			b = &repository.PeriodBucket{Period: key, TotalAmount: money.Zero()}
			buckets[key] = b
		}
		b.TotalInvoices++
		b.TotalAmount = b.TotalAmount.Add(inv.TotalAmount)
	}
	rows := make([]repository.PeriodBucket, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period.Before(rows[j].Period) })
	return rows, nil
}

type partyAgg struct {
	repository.PartyTotals
	first int64
}

func (r invoiceReportRepo) byParty(f repository.InvoiceFilter, key func(entity.Invoice) (uuid.UUID, string)) []repository.PartyTotals {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	groups := map[uuid.UUID]*partyAgg{}
	for _, inv := range r.s.filterInvoices(f) {
		id, name := key(inv)
		g, ok := groups[id]
		if !ok {
			g = &partyAgg{PartyTotals: repository.PartyTotals{ID: id, Name: name, TotalAmount: money.Zero(), FeeValue: money.Zero()}, first: r.s.order[inv.ID]}
			groups[id] = g
		}
		g.TotalInvoices++
		g.TotalAmount = g.TotalAmount.Add(inv.TotalAmount)
		g.FeeValue = g.FeeValue.Add(inv.FeeValue)
		if seq := r.s.order[inv.ID]; seq < g.first {
			g.first = seq
		}
	}
	aggs := make([]*partyAgg, 0, len(groups))
	for _, g := range groups {
		aggs = append(aggs, g)
	}
	sort.Slice(aggs, func(i, j int) bool {
		if c := aggs[i].TotalAmount.Cmp(aggs[j].TotalAmount.Decimal); c != 0 {
			return c > 0
		}
		return aggs[i].first < aggs[j].first
	})
	rows := make([]repository.PartyTotals, 0, len(aggs))
	for _, g := range aggs {
		rows = append(rows, g.PartyTotals)
	}
	return rows
}

func (r invoiceReportRepo) ByCustomer(_ context.Context, f repository.InvoiceFilter) ([]repository.PartyTotals, error) {
	return r.byParty(f, func(inv entity.Invoice) (uuid.UUID, string) {
		if inv.Customer == nil {
			return inv.CustomerID, ""
		}
		return inv.CustomerID, inv.Customer.Name
	}), nil
}

func (r invoiceReportRepo) ByCompany(_ context.Context, f repository.InvoiceFilter) ([]repository.PartyTotals, error) {
	return r.byParty(f, func(inv entity.Invoice) (uuid.UUID, string) {
		if inv.Company == nil {
			return inv.CompanyID, ""
		}
		return inv.CompanyID, inv.Company.Name
	}), nil
}

type posReportRepo struct{ s *Store }

func (r posReportRepo) Totals(_ context.Context, f repository.PosSaleFilter) (*repository.SaleTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := repository.SaleTotals{
		Gross: money.Zero(), Fees: money.Zero(), Net: money.Zero(),
		GrossPaid: money.Zero(), NetPaid: money.Zero(),
		GrossUnpaid: money.Zero(), NetUnpaid: money.Zero(),
	}
	for _, sale := range r.s.filterSales(f) {
		t.TotalSales++
		t.Gross = t.Gross.Add(sale.Amount)
		t.Fees = t.Fees.Add(sale.FeeValue)
		t.Net = t.Net.Add(sale.NetAmount)
		if sale.Paid {
			t.GrossPaid = t.GrossPaid.Add(sale.Amount)
			t.NetPaid = t.NetPaid.Add(sale.NetAmount)
		} else {
			t.GrossUnpaid = t.GrossUnpaid.Add(sale.Amount)
			t.NetUnpaid = t.NetUnpaid.Add(sale.NetAmount)
		}
	}
	return &t, nil
}

type saleGroup struct {
	id    uuid.UUID
	total money.Amount
	count int64
	first int64
	any   entity.PosSale
}

// topGroup picks the group with the largest gross; ties go to the group whose
// earliest sale was stored first. Caller holds mu.
func (r posReportRepo) topGroup(f repository.PosSaleFilter, key func(entity.PosSale) uuid.UUID) *saleGroup {
	groups := map[uuid.UUID]*saleGroup{}
	for _, sale := range r.s.filterSales(f) {
		id := key(sale)
		g, ok := groups[id]
		if !ok {
			g = &saleGroup{id: id, total: money.Zero(), first: r.s.order[sale.ID], any: sale}
			groups[id] = g
		}
		g.total = g.total.Add(sale.Amount)
		g.count++
		if seq := r.s.order[sale.ID]; seq < g.first {
			g.first = seq
		}
	}
	var best *saleGroup
	for _, g := range groups {
		if best == nil {
			best = g
			continue
		}
		c := g.total.Cmp(best.total.Decimal)
		if c > 0 || (c == 0 && g.first < best.first) {
			best = g
		}
	}
	return best
}

func (r posReportRepo) TopCustomer(_ context.Context, f repository.PosSaleFilter) (*repository.TopCustomer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g := r.topGroup(f, func(s entity.PosSale) uuid.UUID { return s.CustomerID })
	if g == nil {
		return nil, nil
	}
	top := &repository.TopCustomer{CustomerID: g.id, Total: g.total, Count: g.count}
	if g.any.Customer != nil {
		top.Name = g.any.Customer.Name
	}
	return top, nil
}

func (r posReportRepo) TopTerminal(_ context.Context, f repository.PosSaleFilter) (*repository.TopTerminal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g := r.topGroup(f, func(s entity.PosSale) uuid.UUID { return s.PosTerminalID })
	if g == nil {
		return nil, nil
	}
	top := &repository.TopTerminal{PosTerminalID: g.id, Total: g.total, Count: g.count}
	if t, ok := r.s.terminals[g.id]; ok {
		top.TerminalCode = t.TerminalCode
		if c, ok := r.s.customers[t.CustomerID]; ok {
			top.CustomerName = c.Name
		}
	}
	return top, nil
}

func (r posReportRepo) LargestSale(_ context.Context, f repository.PosSaleFilter) (*entity.PosSale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *entity.PosSale
	for _, sale := range r.s.filterSales(f) {
		sale := sale
		if best == nil {
			best = &sale
			continue
		}
		c := sale.Amount.Cmp(best.Amount.Decimal)
		if c > 0 || (c == 0 && r.s.before(sale.ID, best.ID)) {
			best = &sale
		}
	}
	return best, nil
}

func (r posReportRepo) CustomersWithoutSalesSince(_ context.Context, since time.Time) ([]repository.CustomerRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	recent := map[uuid.UUID]bool{}
	for _, sale := range r.s.sales {
		if !sale.SaleDatetime.Before(since) {
			recent[sale.CustomerID] = true
		}
	}
	var rows []entity.Customer
	for _, c := range r.s.customers {
		if c.IsActive && !recent[c.ID] {
			rows = append(rows, c)
		}
	}
	sortByName(rows, func(c entity.Customer) string { return c.Name }, func(c entity.Customer) uuid.UUID { return c.ID }, r.s)
	refs := make([]repository.CustomerRef, 0, len(rows))
	for _, c := range rows {
		refs = append(refs, repository.CustomerRef{ID: c.ID, Name: c.Name})
	}
	return refs, nil
}
