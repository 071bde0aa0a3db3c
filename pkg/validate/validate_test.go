package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cme-platform/config"
	"cme-platform/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phoneReq struct {
	Phone    string `json:"phone" binding:"required,cnphone"`
	Password string `json:"password" binding:"required,min=6,max=50"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req phoneReq
	return BindJSON(c, &req)
}

func TestBindJSONDetails(t *testing.T) {
	err := bind(t, `{"phone":"12000000000","password":"123"}`)
	require.Error(t, err)

	appErr, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.CodeValidation, appErr.Code)
	details := appErr.Details.([]FieldError)
	require.Len(t, details, 2)
	assert.Equal(t, FieldError{Field: "phone", Rule: "cnphone"}, details[0])
	assert.Equal(t, FieldError{Field: "password", Rule: "min", Param: "6"}, details[1])
}

func TestBindJSONAcceptsValid(t *testing.T) {
	assert.NoError(t, bind(t, `{"phone":"13000000001","password":"secret1"}`))
}

func TestBindJSONMalformed(t *testing.T) {
	err := bind(t, `{"phone":`)
	assert.True(t, errs.HasCode(err, errs.CodeValidation))
}

func TestPageQueryNormalize(t *testing.T) {
	cfg := config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100}

	q := PageQuery{}
	require.NoError(t, q.Normalize(cfg))
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.PageSize)
	assert.Equal(t, 0, q.Offset())

	q = PageQuery{Page: 3, PageSize: 10}
	require.NoError(t, q.Normalize(cfg))
	assert.Equal(t, 20, q.Offset())

	q = PageQuery{Page: 1, PageSize: 101}
	assert.True(t, errs.HasCode(q.Normalize(cfg), errs.CodeValidation))

	q = PageQuery{Page: -1}
	assert.Error(t, q.Normalize(cfg))
}
