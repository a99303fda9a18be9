package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/docbridge/http/server"
)

func newServer(responder server.ErrorResponder, mws ...server.Middleware) *server.HTTPServer {
	return server.NewHTTPServer(server.Config{Host: "127.0.0.1", Port: 0, BodyLimit: 1 << 20}, responder, mws)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthz(t *testing.T) {
	srv := newServer(server.ErrorResponder{})

	resp, err := srv.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"status": "ok"}, decode(t, resp))
}

func TestMiddlewarePriority(t *testing.T) {
	var order []string
	mw := func(name string, p int) server.Middleware {
		return server.Middleware{Priority: p, Handler: func(c *fiber.Ctx) error {
			order = append(order, name)
			return c.Next()
		}}
	}

	srv := newServer(server.ErrorResponder{}, mw("low", 1), mw("high", 10), server.Middleware{Priority: 5}, mw("mid", 5))

	_, err := srv.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "mid", "low"}, order)
}

func TestErrorResponder(t *testing.T) {
	responder := server.ErrorResponder{StatusByCode: map[string]int{"convert_failed": http.StatusBadGateway}}
	srv := newServer(responder)
	srv.RegisterRouter(func(r fiber.Router) {
		r.Post("/upstream", func(*fiber.Ctx) error {
			return errx.New("conversion failed", errx.WithCode("convert_failed"), errx.WithDetails(errx.D{"status": 500}))
		})
		r.Post("/invalid", func(*fiber.Ctx) error {
			return errx.New("key is required", errx.WithCode("missing_key"), errx.WithType(errx.T_Validation))
		})
		r.Post("/plain", func(*fiber.Ctx) error {
			return assert.AnError
		})
	})

	resp, err := srv.Test(httptest.NewRequest(http.MethodPost, "/upstream", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "convert_failed", body["error"])
	assert.Equal(t, map[string]any{"status": float64(500)}, body["details"])

	resp, err = srv.Test(httptest.NewRequest(http.MethodPost, "/invalid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing_key", decode(t, resp)["error"])

	resp, err = srv.Test(httptest.NewRequest(http.MethodPost, "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, decode(t, resp)["error"])

	resp, err = srv.Test(httptest.NewRequest(http.MethodGet, "/missing", strings.NewReader("")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "router_error", decode(t, resp)["error"])
}

func TestErrorResponder_HideDetails(t *testing.T) {
	srv := newServer(server.ErrorResponder{HideDetails: true})
	srv.RegisterRouter(func(r fiber.Router) {
		r.Post("/fail", func(*fiber.Ctx) error {
			return errx.New("upload failed", errx.WithCode("upload_failed"), errx.WithDetails(errx.D{"bucket": "docs"}))
		})
	})

	resp, err := srv.Test(httptest.NewRequest(http.MethodPost, "/fail", nil))
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Equal(t, "upload_failed", body["error"])
	assert.NotContains(t, body, "details")
	assert.NotContains(t, body, "trace")
}
