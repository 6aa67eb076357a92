package enum

// PaymentType is the card or instant-payment method of a POS sale
type PaymentType string

const (
	PaymentTypeDebit        PaymentType = "DEBITO"
	PaymentTypeCreditAVista PaymentType = "CREDITO_AVISTA"
	PaymentTypeCredit2To6   PaymentType = "CREDITO_2A6"
	PaymentTypeCredit7To12  PaymentType = "CREDITO_7A12"
	PaymentTypePix          PaymentType = "PIX"
)

// PaymentTypes lists every accepted payment type
func PaymentTypes() []PaymentType {
	return []PaymentType{
		PaymentTypeDebit,
		PaymentTypeCreditAVista,
		PaymentTypeCredit2To6,
		PaymentTypeCredit7To12,
		PaymentTypePix,
	}
}

func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether p is one of the known payment types
func (p PaymentType) IsValid() bool {
	for _, known := range PaymentTypes() {
		if p == known {
			return true
		}
	}
	return false
}
