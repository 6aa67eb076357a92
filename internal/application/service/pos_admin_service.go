package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/money"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

// PosCompanyService manages the acquirers that own card terminals
type PosCompanyService struct {
	repo  repository.PosCompanyRepository
	cache ReportCache
}

// NewPosCompanyService creates a POS company service. A nil cache disables
// report invalidation.
func NewPosCompanyService(repo repository.PosCompanyRepository, cache ReportCache) *PosCompanyService {
	if cache == nil {
		cache = noopCache{}
	}
	return &PosCompanyService{repo: repo, cache: cache}
}

type CreatePosCompanyInput struct {
	Name     string
	CNPJ     string
	IsActive *bool
}

func (s *PosCompanyService) CreatePosCompany(ctx context.Context, input *CreatePosCompanyInput) (*entity.PosCompany, error) {
	company := &entity.PosCompany{
		Name:     strings.TrimSpace(input.Name),
		CNPJ:     strings.TrimSpace(input.CNPJ),
		IsActive: boolOr(input.IsActive, true),
	}
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return company, nil
}

func (s *PosCompanyService) GetPosCompany(ctx context.Context, id uuid.UUID) (*entity.PosCompany, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, apperror.NewNotFoundError("POS company")
	}
	return company, nil
}

func (s *PosCompanyService) ListPosCompanies(ctx context.Context, search string, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.PosCompany], error) {
	params.Validate()
	rows, total, err := s.repo.List(ctx, search, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(rows, pagination.NewPagination(params.Page, params.Limit, total)), nil
}

type UpdatePosCompanyInput struct {
	ID       uuid.UUID
	Name     *string
	CNPJ     *string
	IsActive *bool
}

func (s *PosCompanyService) UpdatePosCompany(ctx context.Context, input *UpdatePosCompanyInput) (*entity.PosCompany, error) {
	company, err := s.GetPosCompany(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		company.Name = strings.TrimSpace(*input.Name)
	}
	if input.CNPJ != nil {
		company.CNPJ = strings.TrimSpace(*input.CNPJ)
	}
	company.IsActive = boolOr(input.IsActive, company.IsActive)

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return company, nil
}

// DeletePosCompany fails while terminals or sales still reference the company
func (s *PosCompanyService) DeletePosCompany(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPosCompany(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// TerminalService manages card terminals and their owners
type TerminalService struct {
	terminalRepo   repository.PosTerminalRepository
	posCompanyRepo repository.PosCompanyRepository
	customerRepo   repository.CustomerRepository
	cache          ReportCache
}

// NewTerminalService creates a terminal service. Writes invalidate the cached
// POS reports, which embed terminal codes and owners.
func NewTerminalService(
	terminalRepo repository.PosTerminalRepository,
	posCompanyRepo repository.PosCompanyRepository,
	customerRepo repository.CustomerRepository,
	cache ReportCache,
) *TerminalService {
	if cache == nil {
		cache = noopCache{}
	}
	return &TerminalService{
		terminalRepo:   terminalRepo,
		posCompanyRepo: posCompanyRepo,
		customerRepo:   customerRepo,
		cache:          cache,
	}
}

// CreateTerminalInput holds the fields for registering a terminal
type CreateTerminalInput struct {
	PosCompanyID uuid.UUID
	CustomerID   uuid.UUID
	TerminalCode string
	IsActive     *bool
}

func (s *TerminalService) checkOwners(ctx context.Context, posCompanyID, customerID uuid.UUID) error {
	company, err := s.posCompanyRepo.GetByID(ctx, posCompanyID)
	if err != nil {
		return err
	}
	if company == nil {
		return apperror.NewNotFoundError("POS company")
	}
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}
	return nil
}

func (s *TerminalService) CreateTerminal(ctx context.Context, input *CreateTerminalInput) (*entity.PosTerminal, error) {
	code := strings.TrimSpace(input.TerminalCode)
	if code == "" {
		return nil, apperror.NewFieldError("terminal_code", "is required")
	}
	if err := s.checkOwners(ctx, input.PosCompanyID, input.CustomerID); err != nil {
		return nil, err
	}

	terminal := &entity.PosTerminal{
		PosCompanyID: input.PosCompanyID,
		CustomerID:   input.CustomerID,
		TerminalCode: code,
		IsActive:     boolOr(input.IsActive, true),
	}
	if err := s.terminalRepo.Create(ctx, terminal); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return s.GetTerminal(ctx, terminal.ID)
}

// GetTerminal returns the terminal with its POS company and customer
func (s *TerminalService) GetTerminal(ctx context.Context, id uuid.UUID) (*entity.PosTerminal, error) {
	terminal, err := s.terminalRepo.GetWithCompanyAndCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if terminal == nil {
		return nil, apperror.NewNotFoundError("Terminal")
	}
	return terminal, nil
}

func (s *TerminalService) ListTerminals(ctx context.Context, filter repository.TerminalFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.PosTerminal], error) {
	params.Validate()
	rows, total, err := s.terminalRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(rows, pagination.NewPagination(params.Page, params.Limit, total)), nil
}

// UpdateTerminalInput carries a partial terminal update; nil fields are left as is
type UpdateTerminalInput struct {
	ID           uuid.UUID
	PosCompanyID *uuid.UUID
	CustomerID   *uuid.UUID
	TerminalCode *string
	IsActive     *bool
}

// UpdateTerminal reassigns or renames a terminal. Sales already captured keep
// the customer they were recorded for.
func (s *TerminalService) UpdateTerminal(ctx context.Context, input *UpdateTerminalInput) (*entity.PosTerminal, error) {
	terminal, err := s.terminalRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if terminal == nil {
		return nil, apperror.NewNotFoundError("Terminal")
	}

	if input.PosCompanyID != nil {
		terminal.PosCompanyID = *input.PosCompanyID
	}
	if input.CustomerID != nil {
		terminal.CustomerID = *input.CustomerID
	}
	if input.TerminalCode != nil {
		code := strings.TrimSpace(*input.TerminalCode)
		if code == "" {
			return nil, apperror.NewFieldError("terminal_code", "must not be empty")
		}
		terminal.TerminalCode = code
	}
	terminal.IsActive = boolOr(input.IsActive, terminal.IsActive)

	if err := s.checkOwners(ctx, terminal.PosCompanyID, terminal.CustomerID); err != nil {
		return nil, err
	}
	if err := s.terminalRepo.Update(ctx, terminal); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return s.GetTerminal(ctx, terminal.ID)
}

// DeleteTerminal fails while sales still reference the terminal
func (s *TerminalService) DeleteTerminal(ctx context.Context, id uuid.UUID) error {
	terminal, err := s.terminalRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if terminal == nil {
		return apperror.NewNotFoundError("Terminal")
	}
	if err := s.terminalRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// RateService reads and replaces a customer's fee table
type RateService struct {
	rateRepo     repository.CustomerRateRepository
	customerRepo repository.CustomerRepository
}

// NewRateService creates the service behind the customer rate endpoints
func NewRateService(rateRepo repository.CustomerRateRepository, customerRepo repository.CustomerRepository) *RateService {
	return &RateService{rateRepo: rateRepo, customerRepo: customerRepo}
}

func (s *RateService) requireCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}
	return nil
}

// GetRate returns the customer's rates, all zero when none were configured
func (s *RateService) GetRate(ctx context.Context, customerID uuid.UUID) (*entity.CustomerRate, error) {
	if err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	rate, err := s.rateRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return &entity.CustomerRate{
			CustomerID:          customerID,
			DebitPercent:        money.Zero(),
			CreditAVistaPercent: money.Zero(),
			Credit2To6Percent:   money.Zero(),
			Credit7To12Percent:  money.Zero(),
		}, nil
	}
	return rate, nil
}

type UpsertRateInput struct {
	CustomerID          uuid.UUID
	DebitPercent        money.Amount
	CreditAVistaPercent money.Amount
	Credit2To6Percent   money.Amount
	Credit7To12Percent  money.Amount
	PixKey              *string
}

func (s *RateService) UpsertRate(ctx context.Context, input *UpsertRateInput) (*entity.CustomerRate, error) {
	err := collect(
		checkPercent("debit_percent", input.DebitPercent),
		checkPercent("credit_avista_percent", input.CreditAVistaPercent),
		checkPercent("credit_2a6_percent", input.Credit2To6Percent),
		checkPercent("credit_7a12_percent", input.Credit7To12Percent),
	)
	if err != nil {
		return nil, err
	}
	if err := s.requireCustomer(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	var pix *string
	if input.PixKey != nil && strings.TrimSpace(*input.PixKey) != "" {
		v := strings.TrimSpace(*input.PixKey)
		pix = &v
	}
	rate := &entity.CustomerRate{
		CustomerID:          input.CustomerID,
		DebitPercent:        input.DebitPercent,
		CreditAVistaPercent: input.CreditAVistaPercent,
		Credit2To6Percent:   input.Credit2To6Percent,
		Credit7To12Percent:  input.Credit7To12Percent,
		PixKey:              pix,
	}
	if err := s.rateRepo.Upsert(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}
