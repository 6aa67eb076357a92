package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

// PosTotals is the gross/fee/net roll-up of the POS summary
type PosTotals struct {
	Gross      money.Amount `json:"gross"`
	Fees       money.Amount `json:"fees"`
	Net        money.Amount `json:"net"`
	TotalSales int64        `json:"total_sales"`
}

// PosSummary is the POS dashboard payload
type PosSummary struct {
	Totals           PosTotals               `json:"totals"`
	TopCustomer      *repository.TopCustomer `json:"top_customer"`
	TopCustomerToday *repository.TopCustomer `json:"top_customer_today"`
	LargestSale      *entity.PosSale         `json:"largest_sale"`
}

// PayoutQuery selects the sales shown on the payouts screen
type PayoutQuery struct {
	Period        Period
	PosTerminalID *uuid.UUID
	OnlyUnpaid    bool
}

// Payouts is the payouts screen payload
type Payouts struct {
	Sales       []entity.PosSale        `json:"sales"`
	Totals      repository.SaleTotals   `json:"totals"`
	TopTerminal *repository.TopTerminal `json:"top_terminal"`
	LargestSale *entity.PosSale         `json:"largest_sale"`
}

// PosReportService computes the read-only POS reports
type PosReportService struct {
	reports  repository.PosReportRepository
	saleRepo repository.PosSaleRepository
	cache    ReportCache
	loc      *time.Location
	now      func() time.Time
}

// NewPosReportService creates the POS report service. Periods are resolved in
// loc, UTC when nil.
func NewPosReportService(reports repository.PosReportRepository, saleRepo repository.PosSaleRepository, cache ReportCache, loc *time.Location) *PosReportService {
	if cache == nil {
		cache = noopCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PosReportService{
		reports:  reports,
		saleRepo: saleRepo,
		cache:    cache,
		loc:      loc,
		now:      time.Now,
	}
}

// Summary returns totals, the top customer in the period and today, and
// the largest sale in the period.
func (s *PosReportService) Summary(ctx context.Context, period Period) (*PosSummary, error) {
	sold, err := period.Resolve(s.loc)
	if err != nil {
		return nil, err
	}
	now := s.now().In(s.loc)
	todayStart, todayEnd := startOfDay(now), endOfDay(now)
	filter := repository.PosSaleFilter{Sold: sold}
	today := repository.PosSaleFilter{Sold: repository.DateRange{Start: &todayStart, End: &todayEnd}}

	var out PosSummary
	err = cached(ctx, s.cache, &out, func(ctx context.Context) (interface{}, error) {
		summary := &PosSummary{}
		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			totals, err := s.reports.Totals(ctx, filter)
			if err != nil {
				return err
			}
			summary.Totals = PosTotals{Gross: totals.Gross, Fees: totals.Fees, Net: totals.Net, TotalSales: totals.TotalSales}
			return nil
		})
		eg.Go(func() error {
			var err error
			summary.TopCustomer, err = s.reports.TopCustomer(ctx, filter)
			return err
		})
		eg.Go(func() error {
			var err error
			summary.TopCustomerToday, err = s.reports.TopCustomer(ctx, today)
			return err
		})
		eg.Go(func() error {
			var err error
			summary.LargestSale, err = s.reports.LargestSale(ctx, filter)
			return err
		})
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		return summary, nil
	}, "pos", "summary", period.Key(), todayStart.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Payouts returns the filtered sales with paid/unpaid totals, the top
// terminal and the largest sale.
func (s *PosReportService) Payouts(ctx context.Context, q PayoutQuery) (*Payouts, error) {
	sold, err := q.Period.Resolve(s.loc)
	if err != nil {
		return nil, err
	}
	filter := repository.PosSaleFilter{PosTerminalID: q.PosTerminalID, Sold: sold, OnlyUnpaid: q.OnlyUnpaid}

	var out Payouts
	err = cached(ctx, s.cache, &out, func(ctx context.Context) (interface{}, error) {
		payouts := &Payouts{}
		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			var err error
			payouts.Sales, err = s.saleRepo.ListAll(ctx, filter)
			return err
		})
		eg.Go(func() error {
			totals, err := s.reports.Totals(ctx, filter)
			if err != nil {
				return err
			}
			payouts.Totals = *totals
			return nil
		})
		eg.Go(func() error {
			var err error
			payouts.TopTerminal, err = s.reports.TopTerminal(ctx, filter)
			return err
		})
		eg.Go(func() error {
			var err error
			payouts.LargestSale, err = s.reports.LargestSale(ctx, filter)
			return err
		})
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		payouts.Sales = head(payouts.Sales, len(payouts.Sales))
		return payouts, nil
	}, "pos", "payouts", q.Period.Key(), idPart(q.PosTerminalID), strconv.FormatBool(q.OnlyUnpaid))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Inactive lists active customers without any sale in the last 30 days
func (s *PosReportService) Inactive(ctx context.Context) ([]repository.CustomerRef, error) {
	since := s.now().AddDate(0, 0, -trailingDays)
	refs, err := s.reports.CustomersWithoutSalesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return head(refs, len(refs)), nil
}
