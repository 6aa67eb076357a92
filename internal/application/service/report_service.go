package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

const (
	trailingDays  = 30
	topRankingLen = 10
)

// PeriodPoint is one bucket of a day or month breakdown. Date is the first
// day of the bucket in the reporting timezone.
type PeriodPoint struct {
	Date          string       `json:"date"`
	Label         string       `json:"label"`
	TotalInvoices int64        `json:"total_invoices"`
	TotalAmount   money.Amount `json:"total_amount"`
}

// InvoiceSummary is the invoice dashboard payload
type InvoiceSummary struct {
	Totals       repository.InvoiceTotals `json:"totals"`
	ByStatus     []repository.StatusCount `json:"by_status"`
	ByDay        []PeriodPoint            `json:"by_day"`
	ByPeriod     []PeriodPoint            `json:"by_period"`
	GroupBy      repository.Granularity   `json:"group_by"`
	TopCustomers []repository.PartyTotals `json:"top_customers"`
	TopCompanies []repository.PartyTotals `json:"top_companies"`
	TopCustomer  *repository.PartyTotals  `json:"top_customer"`
	TopCompany   *repository.PartyTotals  `json:"top_company"`
}

// CustomerReport is the invoice report scoped to one customer
type CustomerReport struct {
	Customer  *entity.Customer         `json:"customer"`
	Totals    repository.InvoiceTotals `json:"totals"`
	ByStatus  []repository.StatusCount `json:"by_status"`
	ByPeriod  []PeriodPoint            `json:"by_period"`
	GroupBy   repository.Granularity   `json:"group_by"`
	Invoices  []entity.Invoice         `json:"invoices"`
	ByCompany []repository.PartyTotals `json:"by_company"`
}

// CompanyReport is the invoice report scoped to one issuing company
type CompanyReport struct {
	Company    *entity.Company          `json:"company"`
	Totals     repository.InvoiceTotals `json:"totals"`
	ByStatus   []repository.StatusCount `json:"by_status"`
	ByPeriod   []PeriodPoint            `json:"by_period"`
	GroupBy    repository.Granularity   `json:"group_by"`
	Invoices   []entity.Invoice         `json:"invoices"`
	ByCustomer []repository.PartyTotals `json:"by_customer"`
}

// ReportQuery holds the common report parameters
type ReportQuery struct {
	Period     Period
	CustomerID *uuid.UUID
	GroupBy    string
}

func (q ReportQuery) granularity() (repository.Granularity, error) {
	switch q.GroupBy {
	case "", string(repository.GranularityDay):
		return repository.GranularityDay, nil
	case string(repository.GranularityMonth):
		return repository.GranularityMonth, nil
	default:
		return "", apperror.NewFieldError("group_by", "must be day or month")
	}
}

// ReportService computes the read-only invoice reports
type ReportService struct {
	reports      repository.InvoiceReportRepository
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	companyRepo  repository.CompanyRepository
	cache        ReportCache
	loc          *time.Location
	now          func() time.Time
}

// NewReportService creates the invoice report service. Day boundaries follow loc.
func NewReportService(
	reports repository.InvoiceReportRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	companyRepo repository.CompanyRepository,
	cache ReportCache,
	loc *time.Location,
) *ReportService {
	if cache == nil {
		cache = noopCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		reports:      reports,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		cache:        cache,
		loc:          loc,
		now:          time.Now,
	}
}

// cached serves dest from the report cache. A cache that cannot build a key
// is bypassed.
func cached(ctx context.Context, cache ReportCache, dest interface{}, loader func(context.Context) (interface{}, error), parts ...string) error {
	key, err := cache.BuildKey(ctx, parts...)
	if err != nil {
		return fetchDirect(ctx, dest, loader)
	}
	return cache.FetchJSON(ctx, key, dest, loader)
}

func idPart(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

// InvoiceSummary returns totals, status counts, the trailing 30-day series,
// the period breakdown and the rankings.
func (s *ReportService) InvoiceSummary(ctx context.Context, q ReportQuery) (*InvoiceSummary, error) {
	g, err := q.granularity()
	if err != nil {
		return nil, err
	}
	issued, err := q.Period.Resolve(s.loc)
	if err != nil {
		return nil, err
	}
	filter := repository.InvoiceFilter{CustomerID: q.CustomerID, Issued: issued}

	var out InvoiceSummary
	err = cached(ctx, s.cache, &out, func(ctx context.Context) (interface{}, error) {
		return s.loadSummary(ctx, filter, g)
	}, "invoices", "summary", q.Period.Key(), idPart(q.CustomerID), string(g), s.today().Format(dateLayout))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ReportService) today() time.Time {
	return startOfDay(s.now().In(s.loc))
}

func (s *ReportService) loadSummary(ctx context.Context, filter repository.InvoiceFilter, g repository.Granularity) (*InvoiceSummary, error) {
	// the daily series always covers the 30 days that end at the range end
	last := s.today()
	if filter.Issued.End != nil {
		last = startOfDay(filter.Issued.End.In(s.loc))
	}
	first := last.AddDate(0, 0, -(trailingDays - 1))
	dayEnd := endOfDay(last)
	dayFilter := repository.InvoiceFilter{
		CustomerID: filter.CustomerID,
		Issued:     repository.DateRange{Start: &first, End: &dayEnd},
	}

	out := &InvoiceSummary{GroupBy: g}
	var daily, periods []repository.PeriodBucket
	var byCustomer, byCompany []repository.PartyTotals

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		totals, err := s.reports.Totals(ctx, filter)
		if err != nil {
			return err
		}
		out.Totals = *totals
		return nil
	})
	eg.Go(func() error {
		var err error
		out.ByStatus, err = s.reports.ByStatus(ctx, filter)
		return err
	})
	eg.Go(func() error {
		var err error
		daily, err = s.reports.ByPeriod(ctx, dayFilter, repository.GranularityDay, s.loc.String())
		return err
	})
	eg.Go(func() error {
		var err error
		periods, err = s.reports.ByPeriod(ctx, filter, g, s.loc.String())
		return err
	})
	eg.Go(func() error {
		var err error
		byCustomer, err = s.reports.ByCustomer(ctx, filter)
		return err
	})
	eg.Go(func() error {
		var err error
		byCompany, err = s.reports.ByCompany(ctx, filter)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out.ByDay = s.fillDays(daily, first, trailingDays)
	out.ByPeriod = s.points(periods, g)
	out.TopCustomers = head(byCustomer, topRankingLen)
	out.TopCompanies = head(byCompany, topRankingLen)
	if len(byCustomer) > 0 {
		out.TopCustomer = &byCustomer[0]
	}
	if len(byCompany) > 0 {
		out.TopCompany = &byCompany[0]
	}
	if out.ByStatus == nil {
		out.ByStatus = []repository.StatusCount{}
	}
	return out, nil
}

func head[T any](rows []T, n int) []T {
	if rows == nil {
		return []T{}
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// localBucket reads a bucket start, returned as a wall clock, as a date in loc
func (s *ReportService) localBucket(p time.Time) time.Time {
	return time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, s.loc)
}

func (s *ReportService) points(buckets []repository.PeriodBucket, g repository.Granularity) []PeriodPoint {
	layout := "02/01"
	if g == repository.GranularityMonth {
		layout = "01/2006"
	}
	out := make([]PeriodPoint, 0, len(buckets))
	for _, b := range buckets {
		day := s.localBucket(b.Period)
		out = append(out, PeriodPoint{
			Date:          day.Format(dateLayout),
			Label:         day.Format(layout),
			TotalInvoices: b.TotalInvoices,
			TotalAmount:   b.TotalAmount,
		})
	}
	return out
}

// fillDays returns one point per day from first, zero when no invoice was issued
func (s *ReportService) fillDays(buckets []repository.PeriodBucket, first time.Time, days int) []PeriodPoint {
	byDate := make(map[string]repository.PeriodBucket, len(buckets))
	for _, b := range buckets {
		byDate[s.localBucket(b.Period).Format(dateLayout)] = b
	}
	out := make([]PeriodPoint, 0, days)
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i)
		key := day.Format(dateLayout)
		point := PeriodPoint{Date: key, Label: day.Format("02/01"), TotalAmount: money.Zero()}
		if b, ok := byDate[key]; ok {
			point.TotalInvoices = b.TotalInvoices
			point.TotalAmount = b.TotalAmount
		}
		out = append(out, point)
	}
	return out
}

// scoped loads the common part of a per-entity report
func (s *ReportService) scoped(ctx context.Context, filter repository.InvoiceFilter, g repository.Granularity, counterpart func(context.Context, repository.InvoiceFilter) ([]repository.PartyTotals, error)) (totals repository.InvoiceTotals, byStatus []repository.StatusCount, byPeriod []PeriodPoint, invoices []entity.Invoice, breakdown []repository.PartyTotals, err error) {
	var periods []repository.PeriodBucket
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		t, err := s.reports.Totals(ctx, filter)
		if err != nil {
			return err
		}
		totals = *t
		return nil
	})
	eg.Go(func() error {
		var err error
		byStatus, err = s.reports.ByStatus(ctx, filter)
		return err
	})
	eg.Go(func() error {
		var err error
		periods, err = s.reports.ByPeriod(ctx, filter, g, s.loc.String())
		return err
	})
	eg.Go(func() error {
		var err error
		invoices, err = s.invoiceRepo.ListAll(ctx, filter)
		return err
	})
	eg.Go(func() error {
		var err error
		breakdown, err = counterpart(ctx, filter)
		return err
	})
	if err = eg.Wait(); err != nil {
		return
	}
	byPeriod = s.points(periods, g)
	byStatus = head(byStatus, len(byStatus))
	invoices = head(invoices, len(invoices))
	breakdown = head(breakdown, len(breakdown))
	return
}

// CustomerReport returns the invoice report of one customer with a breakdown
// by issuing company.
func (s *ReportService) CustomerReport(ctx context.Context, customerID uuid.UUID, q ReportQuery) (*CustomerReport, error) {
	g, err := q.granularity()
	if err != nil {
		return nil, err
	}
	issued, err := q.Period.Resolve(s.loc)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	filter := repository.InvoiceFilter{CustomerID: &customerID, Issued: issued}
	var out CustomerReport
	err = cached(ctx, s.cache, &out, func(ctx context.Context) (interface{}, error) {
		report := &CustomerReport{Customer: customer, GroupBy: g}
		var err error
		report.Totals, report.ByStatus, report.ByPeriod, report.Invoices, report.ByCompany, err = s.scoped(ctx, filter, g, s.reports.ByCompany)
		if err != nil {
			return nil, err
		}
		return report, nil
	}, "invoices", "customer", customerID.String(), q.Period.Key(), string(g))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CompanyReport returns the invoice report of one issuing company with a
// breakdown by customer.
func (s *ReportService) CompanyReport(ctx context.Context, companyID uuid.UUID, q ReportQuery) (*CompanyReport, error) {
	g, err := q.granularity()
	if err != nil {
		return nil, err
	}
	issued, err := q.Period.Resolve(s.loc)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, apperror.NewNotFoundError("Company")
	}

	filter := repository.InvoiceFilter{CompanyID: &companyID, Issued: issued}
	var out CompanyReport
	err = cached(ctx, s.cache, &out, func(ctx context.Context) (interface{}, error) {
		report := &CompanyReport{Company: company, GroupBy: g}
		var err error
		report.Totals, report.ByStatus, report.ByPeriod, report.Invoices, report.ByCustomer, err = s.scoped(ctx, filter, g, s.reports.ByCustomer)
		if err != nil {
			return nil, err
		}
		return report, nil
	}, "invoices", "company", companyID.String(), q.Period.Key(), string(g))
	if err != nil {
		return nil, err
	}
	return &out, nil
}
