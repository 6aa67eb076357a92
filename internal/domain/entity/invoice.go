package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

// Invoice is a nota fiscal issued by a Company for a Customer. It may also
// carry the metadata of the card-terminal sale it documents.
type Invoice struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	CompanyID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"company_id"`
	IssuedAt    time.Time          `gorm:"not null;index" json:"issued_at"`
	TotalAmount money.Amount       `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PaidAmount  *money.Amount      `gorm:"type:decimal(12,2)" json:"paid_amount"`
	FeePercent  money.Amount       `gorm:"type:decimal(5,2);not null" json:"fee_percent"`
	FeeValue    money.Amount       `gorm:"type:decimal(12,2);not null" json:"fee_value"`
	Status      enum.InvoiceStatus `gorm:"size:20;not null;index" json:"status"`

	BuyerName *string `gorm:"size:150" json:"buyer_name"`
	BuyerCPF  *string `gorm:"column:buyer_cpf;size:20" json:"buyer_cpf"`

	TerminalID     *string       `gorm:"size:50" json:"terminal_id"`
	NSU            *string       `gorm:"column:nsu;size:50" json:"nsu"`
	SaleDatetime   *time.Time    `json:"sale_datetime"`
	SaleAmount     *money.Amount `gorm:"type:decimal(12,2)" json:"sale_amount"`
	IsTerminalSale bool          `gorm:"not null" json:"is_terminal_sale"`
	IsOurTerminal  bool          `gorm:"not null" json:"is_our_terminal"`

	PdfURL *string `gorm:"column:pdf_url;type:text" json:"pdf_url"`
	NfLink *string `gorm:"column:nf_link;type:text" json:"nf_link"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships, populated only by explicit hydrating queries
	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	Company  *Company  `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// ApplyTerminalRules derives IsTerminalSale from the terminal metadata and
// zeroes the fee when the sale ran on one of our own terminals.
func (i *Invoice) ApplyTerminalRules() {
	i.TerminalID = blankToNil(i.TerminalID)
	i.NSU = blankToNil(i.NSU)

	i.IsTerminalSale = i.IsOurTerminal ||
		i.TerminalID != nil ||
		i.NSU != nil ||
		i.SaleDatetime != nil ||
		i.SaleAmount != nil

	if i.IsOurTerminal {
		i.FeePercent = money.Zero()
		i.FeeValue = money.Zero()
	}
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
