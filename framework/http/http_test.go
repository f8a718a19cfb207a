package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-winter/framework/container"
	gohttp "github.com/km-arc/go-winter/framework/http"
	"github.com/km-arc/go-winter/framework/validation"
)

func TestResponse_Fail(t *testing.T) {
	verrs := validation.New().Var("name", "", "required")
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", fmt.Errorf("wrapped: %w", verrs), http.StatusUnprocessableEntity, `{"errors":{"name":["The name field is required."]}}`},
		{"no such bean", &container.Error{Kind: container.KindNoSuchBean, Bean: "x", Message: "gone"}, http.StatusNotFound, `{"message":"container: [x] gone"}`},
		{"ambiguous", &container.Error{Kind: container.KindNoUniqueMatch, Message: "two"}, http.StatusConflict, `{"message":"container: two"}`},
		{"other", errors.New("boom"), http.StatusInternalServerError, `{"message":"boom"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			gohttp.NewResponse(rec).Fail(tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestResponse_Success(t *testing.T) {
	rec := httptest.NewRecorder()
	gohttp.NewResponse(rec).Success(map[string]string{"k": "v"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"k":"v"}}`, rec.Body.String())
}

func TestRequest_Params(t *testing.T) {
	r := chi.NewRouter()
	var name, page string
	r.Get("/users/{name}", func(w http.ResponseWriter, r *http.Request) {
		req := gohttp.NewRequest(r)
		name, page = req.RouteParam("name"), req.Query("page", "1")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/bob", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", name)
	assert.Equal(t, "1", page)
}
