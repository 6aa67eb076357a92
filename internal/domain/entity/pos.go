package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

// PosCompany is an acquirer whose card terminals are lent to customers
type PosCompany struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	CNPJ      string    `gorm:"column:cnpj;size:20;not null;uniqueIndex:idx_pos_companies_cnpj" json:"cnpj"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID for new POS companies
func (p *PosCompany) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName overrides the table name
func (PosCompany) TableName() string {
	return "pos_companies"
}

// PosTerminal is a physical card terminal. The terminal decides which
// customer and POS company a sale belongs to.
type PosTerminal struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PosCompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pos_terminals_company_code,priority:1" json:"pos_company_id"`
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	TerminalCode string    `gorm:"size:50;not null;uniqueIndex:idx_pos_terminals_company_code,priority:2" json:"terminal_code"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	PosCompany *PosCompany `gorm:"foreignKey:PosCompanyID" json:"pos_company,omitempty"`
	Customer   *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// BeforeCreate generates a UUID for new terminals
func (t *PosTerminal) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName overrides the table name
func (PosTerminal) TableName() string {
	return "pos_terminals"
}

// CustomerRate holds the per-payment-type fee percentages of one customer
type CustomerRate struct {
	ID                  uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID          uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_customer_rates_customer_id" json:"customer_id"`
	DebitPercent        money.Amount `gorm:"type:decimal(5,2);not null" json:"debit_percent"`
	CreditAVistaPercent money.Amount `gorm:"column:credit_avista_percent;type:decimal(5,2);not null" json:"credit_avista_percent"`
	Credit2To6Percent   money.Amount `gorm:"column:credit_2a6_percent;type:decimal(5,2);not null" json:"credit_2a6_percent"`
	Credit7To12Percent  money.Amount `gorm:"column:credit_7a12_percent;type:decimal(5,2);not null" json:"credit_7a12_percent"`
	PixKey              *string      `gorm:"size:150" json:"pix_key"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// BeforeCreate generates a UUID for new rate rows
func (r *CustomerRate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName overrides the table name
func (CustomerRate) TableName() string {
	return "pos_customer_rates"
}

// PosSale is one card or PIX transaction captured by a terminal.
// NetAmount is always Amount minus FeeValue.
type PosSale struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	PosCompanyID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"pos_company_id"`
	PosTerminalID uuid.UUID        `gorm:"type:uuid;not null;index" json:"pos_terminal_id"`
	NSU           string           `gorm:"column:nsu;size:50;not null" json:"nsu"`
	SaleDatetime  time.Time        `gorm:"not null;index" json:"sale_datetime"`
	Amount        money.Amount     `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentType   enum.PaymentType `gorm:"size:20;not null" json:"payment_type"`
	FeePercent    money.Amount     `gorm:"type:decimal(5,2);not null" json:"fee_percent"`
	FeeValue      money.Amount     `gorm:"type:decimal(12,2);not null" json:"fee_value"`
	NetAmount     money.Amount     `gorm:"type:decimal(12,2);not null" json:"net_amount"`
	Paid          bool             `gorm:"not null;index" json:"paid"`
	PaidAt        *time.Time       `json:"paid_at"`
	PaymentBatch  *string          `gorm:"size:100" json:"payment_batch"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	Customer    *Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	PosCompany  *PosCompany  `gorm:"foreignKey:PosCompanyID" json:"pos_company,omitempty"`
	PosTerminal *PosTerminal `gorm:"foreignKey:PosTerminalID" json:"pos_terminal,omitempty"`
}

// BeforeCreate generates a UUID for new sales
func (s *PosSale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName overrides the table name
func (PosSale) TableName() string {
	return "pos_sales"
}
