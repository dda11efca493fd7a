package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOutOfStock = errors.New("out of stock")

func respond(t *testing.T, r *Responder, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/commerce/orders", nil)
	r.RespondError(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondError_UsesMappers(t *testing.T) {
	r := NewResponder("", nil, func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errOutOfStock) {
			return NewInsufficientStockProblem("Insufficient stock for B. Available: 1", "B", 1), true
		}
		return ProblemDetail{}, false
	})

	w, body := respond(t, r, errOutOfStock)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	assert.Equal(t, TypeConflict, body["type"])
	assert.Equal(t, "B", body["itemId"])
	assert.Equal(t, float64(1), body["available"])
	assert.Equal(t, "/api/commerce/orders", body["instance"])
}

func TestRespondError_HidesInternalCauses(t *testing.T) {
	w, body := respond(t, NewResponder("", nil), errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, InternalDetail, body["detail"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRespondError_PassesProblemsThrough(t *testing.T) {
	w, body := respond(t, NewResponder("https://errors.example.com", nil), ErrUnavailable.WithDetail("item is not available"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "https://errors.example.com/problems/unavailable", body["type"])
}

func TestWithExtension_DoesNotAliasTemplates(t *testing.T) {
	a := ErrConflict.WithExtension("itemId", "A")
	b := a.WithExtension("itemId", "B")
	assert.Equal(t, "A", a.Extensions["itemId"])
	assert.Equal(t, "B", b.Extensions["itemId"])
	assert.Nil(t, ErrConflict.Extensions)
}

func TestNewNotFoundProblem_NamesResource(t *testing.T) {
	w, body := respond(t, NewResponder("", nil), NewNotFoundProblem("item", "ghost"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "item with identifier 'ghost' not found", body["detail"])
	assert.Equal(t, "item", body["resourceType"])
	assert.Equal(t, "ghost", body["identifier"])
	assert.Equal(t, "/api/commerce/orders", body["instance"])

	kept := ErrNotFound.WithInstance("/custom")
	_, body = respond(t, NewResponder("", nil), kept)
	assert.Equal(t, "/custom", body["instance"])
}
