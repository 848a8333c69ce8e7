package rest_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shillien-project/portal/api/rest"
	"github.com/shillien-project/portal/countdown"
)

func countdownGet(h *rest.CountdownHandler) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/api/countdown", h.Status)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/countdown", nil))
	return w
}

func TestCountdownStatus_Disabled(t *testing.T) {
	w := countdownGet(rest.NewCountdownHandler(nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled":false}`, w.Body.String())
}

func TestCountdownStatus_Running(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	target := now.Add(90 * time.Second)
	eng := countdown.NewEngine(now, target, func(countdown.Breakdown) {})
	eng.Tick()

	w := countdownGet(rest.NewCountdownHandler(eng))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"enabled":true`)
	assert.Contains(t, body, target.Format(time.RFC3339))
}
