package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cme-platform/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestFailWritesAppErrorVerbatim(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		Fail(c, errs.Validation("金额格式错误", map[string]string{"field": "amount"}))
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	assert.Equal(t, "金额格式错误", errBody["message"])
	assert.NotNil(t, errBody["details"])
	assert.NotContains(t, body, "data")
}

func TestFailCollapsesUnknownErrors(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		Fail(c, errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "SERVER_ERROR", errBody["code"])
	assert.NotContains(t, errBody["message"], "10.0.0.1")
}

func TestPaginatedMeta(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		Paginated(c, []string{"a", "b"}, 2, 2, 5)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	meta := body["meta"].(map[string]interface{})
	assert.EqualValues(t, 2, meta["page"])
	assert.EqualValues(t, 2, meta["pageSize"])
	assert.EqualValues(t, 5, meta["total"])
	assert.EqualValues(t, 3, meta["totalPages"])
}

func TestNewMetaZeroTotal(t *testing.T) {
	meta := NewMeta(1, 20, 0)
	assert.Equal(t, 0, meta.TotalPages)
}
