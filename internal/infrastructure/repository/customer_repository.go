package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	domainRepo "github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/infrastructure/database"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return database.TranslateError(conn(ctx, r.db).Create(customer).Error)
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return database.TranslateError(conn(ctx, r.db).Save(customer).Error)
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.TranslateError(conn(ctx, r.db).Delete(&entity.Customer{}, "id = ?", id).Error)
}

func (r *customerRepository) List(ctx context.Context, filter domainRepo.CustomerFilter, params *pagination.PaginationParams) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := conn(ctx, r.db).Model(&entity.Customer{}).
		Scopes(SearchScope(filter.Search, "name", "whatsapp_number"))
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.Limit).
		Order("name ASC, id ASC").
		Find(&customers).Error

	return customers, total, err
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) domainRepo.CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *entity.Company) error {
	return database.TranslateError(conn(ctx, r.db).Create(company).Error)
}

func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	var company entity.Company
	err := conn(ctx, r.db).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &company, err
}

func (r *companyRepository) Update(ctx context.Context, company *entity.Company) error {
	return database.TranslateError(conn(ctx, r.db).Save(company).Error)
}

func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.TranslateError(conn(ctx, r.db).Delete(&entity.Company{}, "id = ?", id).Error)
}

func (r *companyRepository) List(ctx context.Context, search string, params *pagination.PaginationParams) ([]entity.Company, int64, error) {
	var companies []entity.Company
	var total int64

	query := conn(ctx, r.db).Model(&entity.Company{}).
		Scopes(SearchScope(search, "name", "cnpj"))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.Limit).
		Order("name ASC, id ASC").
		Find(&companies).Error

	return companies, total, err
}
