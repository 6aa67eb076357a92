// Package fee holds the pure rules that turn a customer's rate table and a
// gross amount into the commission charged and the amount paid out.
package fee

import (
	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
	"github.com/sangkips/notas-backoffice/pkg/money"
)

// Breakdown is the result of applying a fee percent to a gross amount
type Breakdown struct {
	FeeValue  money.Amount
	NetAmount money.Amount
}

// ResolveFeePercent returns the percent charged for paymentType under rate.
// A missing rate row and payment types without a column (PIX) cost nothing.
func ResolveFeePercent(rate *entity.CustomerRate, paymentType enum.PaymentType) money.Amount {
	if rate == nil {
		return money.Zero()
	}

	switch paymentType {
	case enum.PaymentTypeDebit:
		return rate.DebitPercent
	case enum.PaymentTypeCreditAVista:
		return rate.CreditAVistaPercent
	case enum.PaymentTypeCredit2To6:
		return rate.Credit2To6Percent
	case enum.PaymentTypeCredit7To12:
		return rate.Credit7To12Percent
	default:
		return money.Zero()
	}
}

// ComputeFee computes fee = round(gross * percent / 100, 2) half away from
// zero, and net = gross - fee.
func ComputeFee(gross, percent money.Amount) (Breakdown, error) {
	if gross.IsNegative() {
		return Breakdown{}, apperror.NewFieldError("amount", "must not be negative")
	}
	if percent.IsNegative() {
		return Breakdown{}, apperror.NewFieldError("fee_percent", "must not be negative")
	}

	feeValue := gross.Decimal.Mul(percent.Decimal).Shift(-2).Round(2)
	net := gross.Decimal.Sub(feeValue).Round(2)

	return Breakdown{
		FeeValue:  money.New(feeValue),
		NetAmount: money.New(net),
	}, nil
}
