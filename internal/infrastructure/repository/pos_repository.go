package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	domainRepo "github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/infrastructure/database"
	"github.com/sangkips/notas-backoffice/pkg/pagination"
)

type posCompanyRepository struct {
	db *gorm.DB
}

// NewPosCompanyRepository creates a new POS company repository
func NewPosCompanyRepository(db *gorm.DB) domainRepo.PosCompanyRepository {
	return &posCompanyRepository{db: db}
}

func (r *posCompanyRepository) Create(ctx context.Context, company *entity.PosCompany) error {
	return database.TranslateError(conn(ctx, r.db).Create(company).Error)
}

func (r *posCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PosCompany, error) {
	var company entity.PosCompany
	err := conn(ctx, r.db).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &company, err
}

func (r *posCompanyRepository) Update(ctx context.Context, company *entity.PosCompany) error {
	return database.TranslateError(conn(ctx, r.db).Save(company).Error)
}

func (r *posCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.TranslateError(conn(ctx, r.db).Delete(&entity.PosCompany{}, "id = ?", id).Error)
}

func (r *posCompanyRepository) List(ctx context.Context, search string, params *pagination.PaginationParams) ([]entity.PosCompany, int64, error) {
	var companies []entity.PosCompany
	var total int64

	query := conn(ctx, r.db).Model(&entity.PosCompany{}).
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

type posTerminalRepository struct {
	db *gorm.DB
}

// NewPosTerminalRepository creates a new terminal repository
func NewPosTerminalRepository(db *gorm.DB) domainRepo.PosTerminalRepository {
	return &posTerminalRepository{db: db}
}

func (r *posTerminalRepository) Create(ctx context.Context, terminal *entity.PosTerminal) error {
	return database.TranslateError(conn(ctx, r.db).Omit(clause.Associations).Create(terminal).Error)
}

func (r *posTerminalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PosTerminal, error) {
	var terminal entity.PosTerminal
	err := conn(ctx, r.db).First(&terminal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &terminal, err
}

func (r *posTerminalRepository) GetWithCompanyAndCustomer(ctx context.Context, id uuid.UUID) (*entity.PosTerminal, error) {
	var terminal entity.PosTerminal
	err := conn(ctx, r.db).
		Preload("PosCompany").
		Preload("Customer").
		First(&terminal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &terminal, err
}

func (r *posTerminalRepository) Update(ctx context.Context, terminal *entity.PosTerminal) error {
	return database.TranslateError(conn(ctx, r.db).Omit(clause.Associations).Save(terminal).Error)
}

func (r *posTerminalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.TranslateError(conn(ctx, r.db).Delete(&entity.PosTerminal{}, "id = ?", id).Error)
}

func (r *posTerminalRepository) List(ctx context.Context, filter domainRepo.TerminalFilter, params *pagination.PaginationParams) ([]entity.PosTerminal, int64, error) {
	var terminals []entity.PosTerminal
	var total int64

	query := conn(ctx, r.db).Model(&entity.PosTerminal{})
	if filter.PosCompanyID != nil {
		query = query.Where("pos_company_id = ?", *filter.PosCompanyID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.
		Preload("PosCompany").
		Preload("Customer").
		Offset(params.Offset()).Limit(params.Limit).
		Order("terminal_code ASC, id ASC").
		Find(&terminals).Error

	return terminals, total, err
}

type customerRateRepository struct {
	db *gorm.DB
}

// NewCustomerRateRepository creates a new customer rate repository
func NewCustomerRateRepository(db *gorm.DB) domainRepo.CustomerRateRepository {
	return &customerRateRepository{db: db}
}

func (r *customerRateRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*entity.CustomerRate, error) {
	var rate entity.CustomerRate
	err := conn(ctx, r.db).First(&rate, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rate, err
}

func (r *customerRateRepository) Upsert(ctx context.Context, rate *entity.CustomerRate) error {
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"debit_percent",
			"credit_avista_percent",
			"credit_2a6_percent",
			"credit_7a12_percent",
			"pix_key",
			"updated_at",
		}),
	}).Create(rate).Error
	if err != nil {
		return database.TranslateError(err)
	}

	// on conflict the generated id is not the stored one
	stored, err := r.GetByCustomerID(ctx, rate.CustomerID)
	if err != nil {
		return err
	}
	if stored != nil {
		*rate = *stored
	}
	return nil
}

const saleOrder = "pos_sales.sale_datetime DESC, pos_sales.created_at DESC, pos_sales.id DESC"

type posSaleRepository struct {
	db *gorm.DB
}

// NewPosSaleRepository creates a new POS sale repository
func NewPosSaleRepository(db *gorm.DB) domainRepo.PosSaleRepository {
	return &posSaleRepository{db: db}
}

func (r *posSaleRepository) hydrated(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("Customer").
		Preload("PosCompany").
		Preload("PosTerminal")
}

func (r *posSaleRepository) Create(ctx context.Context, sale *entity.PosSale) error {
	return database.TranslateError(conn(ctx, r.db).Omit(clause.Associations).Create(sale).Error)
}

func (r *posSaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PosSale, error) {
	var sale entity.PosSale
	err := conn(ctx, r.db).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *posSaleRepository) GetWithTerminalAndCustomer(ctx context.Context, id uuid.UUID) (*entity.PosSale, error) {
	var sale entity.PosSale
	err := r.hydrated(ctx).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *posSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.PosSale{}, "id = ?", id).Error
}

func (r *posSaleRepository) List(ctx context.Context, filter domainRepo.PosSaleFilter, params *pagination.PaginationParams) ([]entity.PosSale, int64, error) {
	var sales []entity.PosSale
	var total int64

	query := conn(ctx, r.db).Model(&entity.PosSale{}).Scopes(PosSaleFilterScope(filter))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := r.hydrated(ctx).
		Scopes(PosSaleFilterScope(filter)).
		Offset(params.Offset()).Limit(params.Limit).
		Order(saleOrder).
		Find(&sales).Error

	return sales, total, err
}

func (r *posSaleRepository) ListAll(ctx context.Context, filter domainRepo.PosSaleFilter) ([]entity.PosSale, error) {
	var sales []entity.PosSale
	err := r.hydrated(ctx).
		Scopes(PosSaleFilterScope(filter)).
		Order(saleOrder).
		Find(&sales).Error
	return sales, err
}

func (r *posSaleRepository) CountPaid(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := conn(ctx, r.db).Model(&entity.PosSale{}).
		Where("id IN ? AND paid = ?", ids, true).
		Count(&n).Error
	return n, err
}

func (r *posSaleRepository) MarkPaid(ctx context.Context, sel domainRepo.PaidSelection, paidAt time.Time, batch string) (int64, error) {
	query := conn(ctx, r.db).Model(&entity.PosSale{})
	if len(sel.IDs) > 0 {
		query = query.Where("pos_sales.id IN ?", sel.IDs)
	} else {
		query = query.Scopes(PosSaleFilterScope(sel.Filter))
	}

	res := query.
		Where("(pos_sales.paid = ? OR pos_sales.paid IS NULL)", false).
		Updates(map[string]interface{}{
			"paid":          true,
			"paid_at":       paidAt,
			"payment_batch": batch,
			"updated_at":    time.Now(),
		})
	return res.RowsAffected, res.Error
}
