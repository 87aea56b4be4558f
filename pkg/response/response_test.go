package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "baddelli/pkg/errors"
)

func record(t *testing.T, fn func(c echo.Context) error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, fn(c))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestError_AppError(t *testing.T) {
	rec, body := record(t, func(c echo.Context) error {
		return Error(c, apperrors.InvalidTransition("trade request is accepted and cannot become rejected"))
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, body.Success)
	assert.Equal(t, apperrors.CodeInvalidTransition, body.Error.Code)
}

func TestError_ValidationErrors(t *testing.T) {
	type input struct {
		Text string `validate:"required"`
	}
	err := validator.New().Struct(input{})

	rec, body := record(t, func(c echo.Context) error { return Error(c, err) })

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text is required", body.Error.Message)
}

func TestError_UnknownErrorsAreHidden(t *testing.T) {
	rec, body := record(t, func(c echo.Context) error { return Error(c, assert.AnError) })

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperrors.CodeInternal, body.Error.Code)
	assert.NotContains(t, body.Error.Message, assert.AnError.Error())
}

func TestError_HTTPErrorsKeepTheirKind(t *testing.T) {
	cases := []struct {
		err    *echo.HTTPError
		status int
		code   string
	}{
		{echo.ErrNotFound, http.StatusNotFound, apperrors.CodeNotFound},
		{echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, apperrors.CodeMethodNotAllowed},
		{echo.ErrUnauthorized, http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, apperrors.CodeValidation},
		{echo.NewHTTPError(http.StatusBadRequest, "bad json"), http.StatusBadRequest, apperrors.CodeValidation},
		{echo.ErrInternalServerError, http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tc := range cases {
		rec, body := record(t, func(c echo.Context) error { return Error(c, tc.err) })

		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, tc.code, body.Error.Code, "status %d", tc.status)
		assert.NotEmpty(t, body.Error.Message)
	}
}

func TestList(t *testing.T) {
	rec, body := record(t, func(c echo.Context) error { return List(c, []string{"a", "b"}, 2) })

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
	assert.Equal(t, map[string]interface{}{"items": []interface{}{"a", "b"}, "total": float64(2)}, body.Data)
}
