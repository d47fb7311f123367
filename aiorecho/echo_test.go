package aiorecho_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dephin/aior"
	"github.com/dephin/aior/aiorecho"
)

type (
	itemPath struct {
		ItemID int `json:"item_id"`
	}
	itemBody struct {
		Name string `json:"name"`
	}
	getItemReq struct {
		Path aior.Path[itemPath]
	}
	renameItemReq struct {
		Path aior.Path[itemPath]
		Body aior.Body[itemBody]
	}
)

func newRouter() *aior.Router {
	r := aior.New()
	r.Handle("/items/{item_id}", aior.NewResource("ItemHandler",
		aior.Get(func(_ context.Context, req *getItemReq) (aior.Response, error) {
			return aior.JSON(req.Path.Value), nil
		}),
		aior.Put(func(_ context.Context, req *renameItemReq) (aior.Response, error) {
			return aior.JSON(map[string]any{"item_id": req.Path.Value.ItemID, "name": req.Body.Value.Name}), nil
		}),
	))
	r.Handle("/health", aior.NewResource("HealthHandler",
		aior.RawOperation(http.MethodGet, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	))
	return r
}

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = aiorecho.ErrorHandler
	routes := aiorecho.Mount(e, newRouter())
	require.Len(t, routes, 3)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestPath(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		template string
		want     string
	}{
		"root":        {template: "/", want: "/"},
		"literal":     {template: "/items", want: "/items"},
		"placeholder": {template: "/items/{item_id}", want: "/items/:item_id"},
		"two":         {template: "/shops/{shop}/items/{item}", want: "/shops/:shop/items/:item"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := aior.ParseTemplate(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, aiorecho.Path(tmpl))
		})
	}
}

func TestMount(t *testing.T) {
	t.Parallel()

	e := newEcho(t)

	tests := map[string]struct {
		method string
		target string
		body   string
		status int
		want   string
	}{
		"path param":   {method: http.MethodGet, target: "/items/7", status: http.StatusOK, want: `{"item_id":7}`},
		"body":         {method: http.MethodPut, target: "/items/7", body: `{"name":"TV"}`, status: http.StatusOK, want: `{"item_id":7,"name":"TV"}`},
		"bad param":    {method: http.MethodGet, target: "/items/x", status: http.StatusBadRequest, want: `[{"loc":["item_id"],"msg":"value is not a valid integer","type":"type_error.integer"}]`},
		"raw":          {method: http.MethodGet, target: "/health", status: http.StatusNoContent},
		"unknown":      {method: http.MethodGet, target: "/shops", status: http.StatusNotFound, want: `{"type":"about:blank","title":"Not Found","status":404,"detail":"Not Found"}`},
		"wrong method": {method: http.MethodDelete, target: "/items/7", status: http.StatusMethodNotAllowed},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			w := do(e, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.want != "" {
				assert.JSONEq(t, tt.want, w.Body.String())
			}
		})
	}
}

func TestMount_group(t *testing.T) {
	t.Parallel()

	e := echo.New()
	var seen []string
	g := e.Group("/api")
	aiorecho.Mount(g, newRouter(), func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			seen = append(seen, c.Path())
			return next(c)
		}
	})

	w := do(e, http.MethodGet, "/api/items/3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"item_id":3}`, w.Body.String())
	assert.Equal(t, []string{"/api/items/:item_id"}, seen)
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err    error
		status int
		detail string
	}{
		"echo error":  {err: echo.NewHTTPError(http.StatusUnauthorized, "token expired"), status: http.StatusUnauthorized, detail: "token expired"},
		"echo status": {err: echo.NewHTTPError(http.StatusForbidden), status: http.StatusForbidden, detail: "Forbidden"},
		"aior error":  {err: aior.Error(http.StatusConflict, "taken"), status: http.StatusConflict, detail: "taken"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e := echo.New()
			w := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), w)

			aiorecho.ErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, aior.ContentTypeError, w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), `"detail":"`+tt.detail+`"`)
		})
	}
}
