package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/money"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

var hundred = decimal.NewFromInt(100)

// checkPercent rejects percentages outside [0, 100]
func checkPercent(field string, v money.Amount) *apperror.FieldError {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return &apperror.FieldError{Field: field, Message: "must be between 0 and 100"}
	}
	return nil
}

func collect(errs ...*apperror.FieldError) error {
	var out []apperror.FieldError
	for _, e := range errs {
		if e != nil {
			out = append(out, *e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return apperror.NewValidationError(out)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	cache        ReportCache
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository, cache ReportCache) *CustomerService {
	if cache == nil {
		cache = noopCache{}
	}
	return &CustomerService{customerRepo: customerRepo, cache: cache}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name           string
	WhatsappNumber string
	FeePercent     money.Amount
	IsActive       *bool
	UsesNF         *bool
	UsesPOS        *bool
}

// CreateCustomer creates a new customer. Flags default to true.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	if err := collect(checkPercent("fee_percent", input.FeePercent)); err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		Name:           strings.TrimSpace(input.Name),
		WhatsappNumber: strings.TrimSpace(input.WhatsappNumber),
		FeePercent:     input.FeePercent,
		IsActive:       boolOr(input.IsActive, true),
		UsesNF:         boolOr(input.UsesNF, true),
		UsesPOS:        boolOr(input.UsesPOS, true),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers ordered by name
func (s *CustomerService) ListCustomers(ctx context.Context, filter repository.CustomerFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Customer], error) {
	params.Validate()
	customers, total, err := s.customerRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.Limit, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID             uuid.UUID
	Name           *string
	WhatsappNumber *string
	FeePercent     *money.Amount
	IsActive       *bool
	UsesNF         *bool
	UsesPOS        *bool
}

// UpdateCustomer updates a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.WhatsappNumber != nil {
		customer.WhatsappNumber = strings.TrimSpace(*input.WhatsappNumber)
	}
	if input.FeePercent != nil {
		if err := collect(checkPercent("fee_percent", *input.FeePercent)); err != nil {
			return nil, err
		}
		customer.FeePercent = *input.FeePercent
	}
	customer.IsActive = boolOr(input.IsActive, customer.IsActive)
	customer.UsesNF = boolOr(input.UsesNF, customer.UsesNF)
	customer.UsesPOS = boolOr(input.UsesPOS, customer.UsesPOS)

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return customer, nil
}

// DeleteCustomer deletes a customer together with its invoices and rate table
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// CompanyService handles invoice issuer operations
type CompanyService struct {
	companyRepo repository.CompanyRepository
	cache       ReportCache
}

// NewCompanyService creates a new company service
func NewCompanyService(companyRepo repository.CompanyRepository, cache ReportCache) *CompanyService {
	if cache == nil {
		cache = noopCache{}
	}
	return &CompanyService{companyRepo: companyRepo, cache: cache}
}

// CreateCompanyInput represents the create company input
type CreateCompanyInput struct {
	CNPJ      string
	Name      string
	AccessKey string
	IsActive  *bool
}

func (s *CompanyService) CreateCompany(ctx context.Context, input *CreateCompanyInput) (*entity.Company, error) {
	company := &entity.Company{
		CNPJ:      strings.TrimSpace(input.CNPJ),
		Name:      strings.TrimSpace(input.Name),
		AccessKey: strings.TrimSpace(input.AccessKey),
		IsActive:  boolOr(input.IsActive, true),
	}
	if company.AccessKey == "" {
		return nil, apperror.NewFieldError("access_key", "is required")
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, apperror.NewNotFoundError("Company")
	}
	return company, nil
}

func (s *CompanyService) ListCompanies(ctx context.Context, search string, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Company], error) {
	params.Validate()
	companies, total, err := s.companyRepo.List(ctx, search, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(companies, pagination.NewPagination(params.Page, params.Limit, total)), nil
}

// UpdateCompanyInput represents the update company input
type UpdateCompanyInput struct {
	ID        uuid.UUID
	CNPJ      *string
	Name      *string
	AccessKey *string
	IsActive  *bool
}

func (s *CompanyService) UpdateCompany(ctx context.Context, input *UpdateCompanyInput) (*entity.Company, error) {
	company, err := s.GetCompany(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.CNPJ != nil {
		company.CNPJ = strings.TrimSpace(*input.CNPJ)
	}
	if input.Name != nil {
		company.Name = strings.TrimSpace(*input.Name)
	}
	if input.AccessKey != nil {
		if strings.TrimSpace(*input.AccessKey) == "" {
			return nil, apperror.NewFieldError("access_key", "must not be empty")
		}
		company.AccessKey = strings.TrimSpace(*input.AccessKey)
	}
	company.IsActive = boolOr(input.IsActive, company.IsActive)

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return company, nil
}

// DeleteCompany deletes a company and, by cascade, its invoices
func (s *CompanyService) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCompany(ctx, id); err != nil {
		return err
	}
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}
