package providers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/aop"
	"github.com/km-arc/go-winter/framework/container"
	"github.com/km-arc/go-winter/framework/providers"
	"github.com/km-arc/go-winter/framework/routing"
	"github.com/km-arc/go-winter/framework/validation"
)

type Counter interface {
	Next() (int, error)
}

type counter struct{ n int }

func newCounter() Counter { return &counter{} }

func (c *counter) Next() (int, error) { c.n++; return c.n, nil }

func (c *counter) Proxy(h aop.Handler, bean string) any {
	return &counterProxy{target: c, h: h, bean: bean}
}

type counterProxy struct {
	target *counter
	h      aop.Handler
	bean   string
}

func (p *counterProxy) Next() (int, error) {
	return aop.Intercept(p.h, p.bean, p.target, "Next", nil, p.target.Next)
}

type limits struct {
	Max int `value:"${limits.max:0}" validate:"min=1"`
}

func newLimits() *limits { return &limits{} }

func start(t *testing.T, bps ...*container.Blueprint) *container.Container {
	t.Helper()
	c, err := container.Start(nil,
		container.WithLogger(zap.NewNop()),
		container.WithProviders(providers.Framework()...),
		container.WithBlueprints(bps...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestFramework_Beans(t *testing.T) {
	c := start(t)

	for _, name := range []string{
		"validator", "validationInterceptor",
		"metricsRegistry", "metricsHandler",
		"aroundInterceptor", "loggingHandler",
		"router", "beansController",
	} {
		assert.True(t, c.ContainsBean(name), name)
	}

	_, err := container.GetNamed[*validation.Validator](c, "validator")
	assert.NoError(t, err)

	reg := container.Resolve[*prometheus.Registry](c, "metricsRegistry")
	n, err := testutil.GatherAndCount(reg, "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRoutingProvider_MountsControllers(t *testing.T) {
	c := start(t)
	r := container.Resolve[*routing.Router](c, "router")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/beans/metricsHandler", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"*aop.MetricsHandler"`)
}

func TestMetricsHandler_AroundBean(t *testing.T) {
	c := start(t,
		container.Component("counter", newCounter).Annotate(aop.AnnotationAround, "metricsHandler"),
	)

	got := container.Resolve[Counter](c, "counter")
	_, isProxy := got.(*counterProxy)
	require.True(t, isProxy)

	for i := 1; i <= 3; i++ {
		n, err := got.Next()
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	reg := container.Resolve[*prometheus.Registry](c, "metricsRegistry")
	n, err := testutil.GatherAndCount(reg, "winter_bean_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestValidationProvider_RejectsInvalidBean(t *testing.T) {
	_, err := container.Start(nil,
		container.WithProviders(providers.Framework()...),
		container.WithBlueprints(container.Component("limits", newLimits)),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrBeanCreation)
	assert.Contains(t, err.Error(), "The Max must be at least 1.")
}
