package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/Sternrassler/paged-api-client/pkg/client"
	_ "github.com/Sternrassler/paged-api-client/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, prometheus.DefaultRegisterer, Registry)
}

func TestHandler_ServesMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
