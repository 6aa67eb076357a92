package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/internal/domain/fee"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/money"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

// PosSaleService records card terminal sales and closes payouts
type PosSaleService struct {
	saleRepo     repository.PosSaleRepository
	terminalRepo repository.PosTerminalRepository
	rateRepo     repository.CustomerRateRepository
	tx           repository.Transactor
	cache        ReportCache
	metrics      SaleMetrics
	log          *logrus.Logger
	now          func() time.Time
}

// NewPosSaleService creates a new POS sale service. cache and metrics may be nil.
func NewPosSaleService(
	saleRepo repository.PosSaleRepository,
	terminalRepo repository.PosTerminalRepository,
	rateRepo repository.CustomerRateRepository,
	tx repository.Transactor,
	cache ReportCache,
	metrics SaleMetrics,
	log *logrus.Logger,
) *PosSaleService {
	if cache == nil {
		cache = noopCache{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &PosSaleService{
		saleRepo:     saleRepo,
		terminalRepo: terminalRepo,
		rateRepo:     rateRepo,
		tx:           tx,
		cache:        cache,
		metrics:      metrics,
		log:          log,
		now:          time.Now,
	}
}

// CreateSaleInput represents a sale as captured by a terminal. The customer
// and POS company always come from the terminal.
type CreateSaleInput struct {
	PosTerminalID uuid.UUID
	NSU           string
	SaleDatetime  time.Time
	Amount        money.Amount
	PaymentType   enum.PaymentType
}

// CreateSale resolves terminal, customer and rate, computes the fee and
// stores the sale as unpaid in one transaction.
func (s *PosSaleService) CreateSale(ctx context.Context, input *CreateSaleInput) (*entity.PosSale, error) {
	var errs []*apperror.FieldError
	if input.PosTerminalID == uuid.Nil {
		errs = append(errs, &apperror.FieldError{Field: "pos_terminal_id", Message: "is required"})
	}
	if strings.TrimSpace(input.NSU) == "" {
		errs = append(errs, &apperror.FieldError{Field: "nsu", Message: "is required"})
	}
	if input.SaleDatetime.IsZero() {
		errs = append(errs, &apperror.FieldError{Field: "sale_datetime", Message: "is required"})
	}
	if !input.Amount.IsPositive() {
		errs = append(errs, &apperror.FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	if !input.PaymentType.IsValid() {
		errs = append(errs, &apperror.FieldError{Field: "payment_type", Message: "must be one of DEBITO, CREDITO_AVISTA, CREDITO_2A6, CREDITO_7A12, PIX"})
	}
	if err := collect(errs...); err != nil {
		return nil, err
	}

	var sale *entity.PosSale
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		terminal, err := s.terminalRepo.GetByID(ctx, input.PosTerminalID)
		if err != nil {
			return err
		}
		if terminal == nil {
			return apperror.NewNotFoundError("Terminal")
		}
		if !terminal.IsActive {
			return apperror.NewBadRequestError("Terminal is inactive")
		}

		rate, err := s.rateRepo.GetByCustomerID(ctx, terminal.CustomerID)
		if err != nil {
			return err
		}
		percent := fee.ResolveFeePercent(rate, input.PaymentType)
		breakdown, err := fee.ComputeFee(input.Amount, percent)
		if err != nil {
			return err
		}

		sale = &entity.PosSale{
			CustomerID:    terminal.CustomerID,
			PosCompanyID:  terminal.PosCompanyID,
			PosTerminalID: terminal.ID,
			NSU:           strings.TrimSpace(input.NSU),
			SaleDatetime:  input.SaleDatetime,
			Amount:        input.Amount,
			PaymentType:   input.PaymentType,
			FeePercent:    percent,
			FeeValue:      breakdown.FeeValue,
			NetAmount:     breakdown.NetAmount,
			Paid:          false,
		}
		return s.saleRepo.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SaleCreated(string(sale.PaymentType))
	s.cache.Invalidate(ctx)
	return sale, nil
}

// GetSale returns the sale with terminal, customer and POS company
func (s *PosSaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.PosSale, error) {
	sale, err := s.saleRepo.GetWithTerminalAndCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales, most recent first
func (s *PosSaleService) ListSales(ctx context.Context, filter repository.PosSaleFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.PosSale], error) {
	params.Validate()
	sales, total, err := s.saleRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(sales, pagination.NewPagination(params.Page, params.Limit, total)), nil
}

// DeleteSale hard-deletes a sale
func (s *PosSaleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return apperror.NewNotFoundError("Sale")
		}
		return s.saleRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// MarkPaidInput selects the sales a payout closes: explicit ids, or every
// unpaid sale in a period, optionally narrowed to one terminal.
type MarkPaidInput struct {
	SaleIDs       []uuid.UUID
	Period        Period
	PosTerminalID *uuid.UUID
	PaymentBatch  string
}

// MarkPaidResult reports a closed payout. Updated counts rows that went from
// unpaid to paid; AlreadyPaid counts explicit ids that were paid before.
type MarkPaidResult struct {
	Updated     int64  `json:"updated"`
	AlreadyPaid int64  `json:"already_paid"`
	Batch       string `json:"batch"`
}

// MarkPaid flips the selected unpaid sales to paid in one transaction.
// Sales that are already paid keep their original paid_at and batch.
func (s *PosSaleService) MarkPaid(ctx context.Context, input *MarkPaidInput, loc *time.Location) (*MarkPaidResult, error) {
	ids := dedupe(input.SaleIDs)
	sel := repository.PaidSelection{IDs: ids}

	if len(ids) == 0 {
		if strings.TrimSpace(input.Period.Start) == "" && strings.TrimSpace(input.Period.End) == "" && input.PosTerminalID == nil {
			return nil, apperror.NewFieldError("sale_ids", "provide sale_ids or a start/end period")
		}
		sold, err := input.Period.Resolve(loc)
		if err != nil {
			return nil, err
		}
		sel.Filter = repository.PosSaleFilter{
			PosTerminalID: input.PosTerminalID,
			Sold:          sold,
			OnlyUnpaid:    true,
		}
	}

	now := s.now()
	batch := strings.TrimSpace(input.PaymentBatch)
	if batch == "" {
		batch = "fechamento-" + strconv.FormatInt(now.UnixMilli(), 10)
	}

	result := &MarkPaidResult{Batch: batch}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if len(ids) > 0 {
			paid, err := s.saleRepo.CountPaid(ctx, ids)
			if err != nil {
				return err
			}
			result.AlreadyPaid = paid
		}
		updated, err := s.saleRepo.MarkPaid(ctx, sel, now, batch)
		if err != nil {
			return err
		}
		result.Updated = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"batch":        batch,
			"updated":      result.Updated,
			"already_paid": result.AlreadyPaid,
		}).Info("payout closed")
	}
	s.metrics.SalesMarkedPaid(result.Updated)
	if result.Updated > 0 {
		s.cache.Invalidate(ctx)
	}
	return result, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
