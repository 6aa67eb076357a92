package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/sangkips/notas-backoffice/internal/domain/enum"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
)

var registerOnce sync.Once

// Register installs the custom tags on gin's validator and makes field
// errors report JSON names. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("payment_type", func(fl validator.FieldLevel) bool {
			return enum.PaymentType(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("invoice_status", func(fl validator.FieldLevel) bool {
			return enum.InvoiceStatus(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("group_by", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "", "day", "month":
				return true
			}
			return false
		})
	})
}

func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// FromBindError converts a gin binding error into a 400 AppError carrying
// one FieldError per offending field.
func FromBindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return apperror.NewValidationError(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperror.NewFieldError(typeErr.Field, "has an invalid type")
	}
	if errors.Is(err, io.EOF) {
		return apperror.NewBadRequestError("Request body is required")
	}
	return apperror.NewBadRequestError("Invalid request body")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "payment_type":
		return "must be one of " + joinPaymentTypes()
	case "invoice_status":
		return "must be one of EMITIDA, PAGA, CANCELADA"
	case "group_by":
		return "must be day or month"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

func joinPaymentTypes() string {
	types := enum.PaymentTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
