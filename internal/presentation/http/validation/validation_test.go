package validation

import (
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/notas-backoffice/pkg/apperror"
)

type saleForm struct {
	NSU         string `json:"nsu" binding:"required,max=5"`
	PaymentType string `json:"payment_type" binding:"required,payment_type"`
	Status      string `json:"status" binding:"omitempty,invoice_status"`
	GroupBy     string `json:"group_by" binding:"group_by"`
	Email       string `json:"email" binding:"omitempty,email"`
}

func bind(t *testing.T, body string) *apperror.AppError {
	t.Helper()
	Register()
	var form saleForm
	err := binding.JSON.BindBody([]byte(body), &form)
	if err == nil {
		return nil
	}
	appErr := apperror.GetAppError(FromBindError(err))
	require.NotNil(t, appErr)
	return appErr
}

func fieldMessages(appErr *apperror.AppError) map[string]string {
	out := map[string]string{}
	for _, fe := range appErr.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestValidBody(t *testing.T) {
	assert.Nil(t, bind(t, `{"nsu":"1","payment_type":"PIX","status":"PAGA","group_by":"month"}`))
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	appErr := bind(t, `{"nsu":"123456","payment_type":"BOLETO","status":"RASCUNHO","group_by":"week","email":"x"}`)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	msgs := fieldMessages(appErr)
	assert.Equal(t, "must be at most 5", msgs["nsu"])
	assert.Contains(t, msgs["payment_type"], "must be one of")
	assert.Contains(t, msgs["payment_type"], "PIX")
	assert.Equal(t, "must be one of EMITIDA, PAGA, CANCELADA", msgs["status"])
	assert.Equal(t, "must be day or month", msgs["group_by"])
	assert.Equal(t, "must be a valid email address", msgs["email"])
}

func TestRequiredFields(t *testing.T) {
	msgs := fieldMessages(bind(t, `{}`))
	assert.Equal(t, "is required", msgs["nsu"])
	assert.Equal(t, "is required", msgs["payment_type"])
}

func TestTypeAndSyntaxErrors(t *testing.T) {
	appErr := bind(t, `{"nsu":12}`)
	require.NotNil(t, appErr)
	assert.Equal(t, "has an invalid type", fieldMessages(appErr)["nsu"])

	appErr = bind(t, `{"nsu":`)
	require.NotNil(t, appErr)
	assert.Equal(t, "Invalid request body", appErr.Message)

	appErr = apperror.GetAppError(FromBindError(io.EOF))
	assert.Equal(t, "Request body is required", appErr.Message)
}
