package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sangkips/notas-backoffice/pkg/apperror"
)

// Postgres SQLSTATE codes we translate
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var conflictMessages = map[string]string{
	"idx_customers_whatsapp_number":  "A customer with this WhatsApp number already exists",
	"idx_companies_cnpj":             "A company with this CNPJ already exists",
	"idx_pos_companies_cnpj":         "A POS company with this CNPJ already exists",
	"idx_pos_terminals_company_code": "Terminal code already registered for this POS company",
	"idx_customer_rates_customer_id": "This customer already has a rate table",
	"idx_system_users_email":         "A user with this email already exists",
	"idx_idempotency_key_user":       "Idempotency key already used",
}

// TranslateError maps constraint violations to client errors. Anything else
// is returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		if msg, ok := conflictMessages[pgErr.ConstraintName]; ok {
			return apperror.NewConflictError(msg)
		}
		return apperror.NewConflictError("Record already exists")
	case foreignKeyViolation:
		return apperror.NewBadRequestError("Record is referenced by or references missing data")
	}
	return err
}
