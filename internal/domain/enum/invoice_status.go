package enum

// InvoiceStatus is the lifecycle state of a nota fiscal
type InvoiceStatus string

const (
	InvoiceStatusIssued    InvoiceStatus = "EMITIDA"
	InvoiceStatusPaid      InvoiceStatus = "PAGA"
	InvoiceStatusCancelled InvoiceStatus = "CANCELADA"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known status
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusIssued, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}
