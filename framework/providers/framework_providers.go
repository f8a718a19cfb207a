package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/aop"
	"github.com/km-arc/go-winter/framework/container"
	"github.com/km-arc/go-winter/framework/routing"
	"github.com/km-arc/go-winter/framework/validation"
)

// Framework returns the core providers in registration order.
func Framework() []container.ServiceProvider {
	return []container.ServiceProvider{
		&ValidationServiceProvider{},
		&MetricsServiceProvider{},
		&AOPServiceProvider{},
		&RoutingServiceProvider{},
	}
}

// ── ValidationServiceProvider ─────────────────────────────────────────────────

// ValidationServiceProvider registers the struct validator and the
// interceptor that validates `validate`-tagged beans after init.
//
// Beans:
//   - "validator"              → *validation.Validator
//   - "validationInterceptor"  → *validation.Interceptor
type ValidationServiceProvider struct {
	container.BaseProvider
}

func (p *ValidationServiceProvider) Register(reg *container.Registry) error {
	return reg.Register(
		container.Component("validator", validation.New),
		validation.Blueprint(),
	)
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider registers a private prometheus registry with the Go
// and process collectors, and an aop handler that times bean calls.
//
// Beans:
//   - "metricsRegistry"  → *prometheus.Registry
//   - "metricsHandler"   → *aop.MetricsHandler
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(reg *container.Registry) error {
	return reg.Register(
		container.Component("metricsRegistry", prometheus.NewRegistry).
			OnInit(func(bean any) error {
				r := bean.(*prometheus.Registry)
				return registerAll(r,
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
			}),
		container.Component("metricsHandler", aop.NewMetricsHandler, container.Ref("metricsRegistry")),
	)
}

func registerAll(r prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ── AOPServiceProvider ────────────────────────────────────────────────────────

// AOPServiceProvider registers the around interceptor and the logging
// handler. Beans opt in with Annotate(aop.AnnotationAround, "loggingHandler").
//
// Beans:
//   - "aroundInterceptor"  → *aop.AroundInterceptor
//   - "loggingHandler"     → *aop.LoggingHandler
type AOPServiceProvider struct {
	container.BaseProvider
}

func (p *AOPServiceProvider) Register(reg *container.Registry) error {
	return reg.Register(
		aop.Blueprint(),
		container.Component("loggingHandler", aop.NewLoggingHandler, container.Ref("logger")),
	)
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router and mounts every
// routing.Controller bean once the container is ready.
//
// Configuration keys:
//   - server.cors.allowed-origins (comma-separated, default: none)
//
// Beans:
//   - "router"           → *routing.Router
//   - "beansController"  → *routing.BeansController
type RoutingServiceProvider struct{}

func (p *RoutingServiceProvider) Register(reg *container.Registry) error {
	return reg.Register(
		container.Component("router", routing.NewWithOrigins,
			container.Ref("logger"),
			container.Value("${server.cors.allowed-origins:}"),
		),
		container.Component("beansController", routing.NewBeansController, container.Ref("container")),
	)
}

func (p *RoutingServiceProvider) Boot(c *container.Container) error {
	r, err := container.GetNamed[*routing.Router](c, "router")
	if err != nil {
		return err
	}
	n, err := routing.Mount(c, r)
	if err != nil {
		return err
	}
	c.Logger().Info("routes mounted", zap.Int("controllers", n), zap.Int("routes", len(r.Routes())))
	return nil
}
