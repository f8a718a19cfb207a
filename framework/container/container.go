package container

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/config"
)

// ── Options ───────────────────────────────────────────────────────────────────

type options struct {
	logger     *zap.Logger
	blueprints []*Blueprint
	providers  []ServiceProvider
}

// Option configures Start.
type Option func(*options)

// WithLogger sets the container logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBlueprints registers blueprints directly.
func WithBlueprints(bps ...*Blueprint) Option {
	return func(o *options) { o.blueprints = append(o.blueprints, bps...) }
}

// WithProviders registers ServiceProviders. Their Register runs before
// any bean is built; Boot runs once the container is ready.
func WithProviders(ps ...ServiceProvider) Option {
	return func(o *options) { o.providers = append(o.providers, ps...) }
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container owns the registry and every live bean. It is built by Start and
// is read-only afterwards, so lookups are safe for concurrent use.
//
// The container registers itself as "container", the resolver as "resolver"
// and its logger as "logger".
type Container struct {
	id       string
	registry *Registry
	resolver *config.Resolver
	logger   *zap.Logger

	pipeline pipeline

	// bean name → instance before substitution
	origins map[string]any

	providers []ServiceProvider

	// traversal state, set only while Start runs
	active *creation

	closeOnce sync.Once
}

// Start registers every blueprint, builds the object graph and returns a
// ready container. Any failure aborts the whole start.
//
//	c, err := container.Start(resolver,
//	    container.WithLogger(logger),
//	    container.WithProviders(&hello.Provider{}),
//	)
//	defer c.Close()
func Start(resolver *config.Resolver, opts ...Option) (*Container, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if resolver == nil {
		resolver = config.NewResolver(config.NewStore())
	}
	id := uuid.NewString()
	c := &Container{
		id:        id,
		registry:  NewRegistry(),
		resolver:  resolver,
		logger:    o.logger.With(zap.String("container", id)),
		origins:   make(map[string]any),
		providers: o.providers,
	}

	if err := c.registry.Register(
		Instance("container", c),
		Instance("resolver", resolver),
		Instance("logger", c.logger),
	); err != nil {
		return nil, err
	}
	for _, p := range o.providers {
		if err := p.Register(c.registry); err != nil {
			return nil, fmt.Errorf("container: register provider %T: %w", p, err)
		}
	}
	if err := c.registry.Register(o.blueprints...); err != nil {
		return nil, err
	}

	if err := c.build(); err != nil {
		c.logger.Error("container start failed", zap.Error(err))
		return nil, err
	}
	c.registry.seal()

	for _, p := range o.providers {
		if err := p.Boot(c); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("container: boot provider %T: %w", p, err)
		}
	}
	c.logger.Info("container started",
		zap.Int("beans", c.registry.Len()),
		zap.Strings("interceptors", c.pipeline.names()),
	)
	return c, nil
}

// build runs the creation passes, then injection, then initialization.
func (c *Container) build() error {
	cr := &creation{}
	c.active = cr
	defer func() { c.active = nil }()

	sorted := c.registry.Sorted()

	factories := make(map[string]bool)
	for _, bp := range sorted {
		if bp.strategy != strategyFactory {
			continue
		}
		if _, ok := c.registry.FindByName(bp.factoryBean); !ok {
			return newError(KindBeanDefinition, bp.name, "factory bean %q not found", bp.factoryBean)
		}
		factories[bp.factoryBean] = true
	}

	// factory sources first: their methods are called by later beans
	for _, bp := range sorted {
		if bp.configuration || factories[bp.name] {
			if _, err := c.create(bp, cr); err != nil {
				return err
			}
		}
	}

	// interceptors next, built against an empty pipeline; the chain is
	// installed once the pass is done
	var chain []interceptor
	for _, bp := range sorted {
		if !isInterceptor(bp) {
			continue
		}
		inst, err := c.create(bp, cr)
		if err != nil {
			return err
		}
		chain = append(chain, interceptor{name: bp.name, instance: inst})
	}
	c.pipeline.chain = chain

	for _, bp := range sorted {
		if _, err := c.create(bp, cr); err != nil {
			return err
		}
	}

	for _, bp := range sorted {
		if err := c.inject(bp, cr); err != nil {
			return err
		}
	}
	for _, bp := range sorted {
		if err := c.initialize(bp); err != nil {
			return err
		}
	}
	return nil
}

// ── Lookups ───────────────────────────────────────────────────────────────────

// ID returns the unique id attached to every log line of this container.
func (c *Container) ID() string { return c.id }

// Registry returns the sealed registry.
func (c *Container) Registry() *Registry { return c.registry }

// Resolver returns the config resolver.
func (c *Container) Resolver() *config.Resolver { return c.resolver }

// Logger returns the container logger.
func (c *Container) Logger() *zap.Logger { return c.logger }

// ContainsBean reports whether a bean named name exists.
func (c *Container) ContainsBean(name string) bool {
	_, ok := c.registry.FindByName(name)
	return ok
}

// GetBean returns the live instance of the bean named name.
func (c *Container) GetBean(name string) (any, error) {
	bp, ok := c.registry.FindByName(name)
	if !ok {
		return nil, newError(KindNoSuchBean, name, "no bean named %q", name)
	}
	return c.live(bp)
}

// GetNamedBean returns the bean named name, checked against t.
func (c *Container) GetNamedBean(name string, t reflect.Type) (any, error) {
	bp, err := c.registry.FindByNameAndType(name, t)
	if err != nil {
		return nil, err
	}
	return c.live(bp)
}

// GetBeanOfType returns the single bean satisfying t.
func (c *Container) GetBeanOfType(t reflect.Type) (any, error) {
	bp, err := c.registry.FindByType(t)
	if err != nil {
		return nil, err
	}
	if bp == nil {
		return nil, noBeanOfType(t)
	}
	return c.live(bp)
}

// GetBeans returns every bean satisfying t, ordered by (order, name).
func (c *Container) GetBeans(t reflect.Type) ([]any, error) {
	bps := c.registry.FindAllByType(t)
	out := make([]any, 0, len(bps))
	for _, bp := range bps {
		v, err := c.live(bp)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// live returns bp's current instance. While Start runs, an unbuilt bean is
// created on demand.
func (c *Container) live(bp *Blueprint) (any, error) {
	if bp.state == StateInstantiated {
		return bp.instance, nil
	}
	if c.active != nil {
		return c.create(bp, c.active)
	}
	return nil, newError(KindBeanCreation, bp.name, "bean is not instantiated")
}

// ── Shutdown ──────────────────────────────────────────────────────────────────

// Close runs every destroy hook once, in reverse registration order. A
// failing hook is logged and does not stop the others.
func (c *Container) Close() error {
	var errs []error
	c.closeOnce.Do(func() {
		all := c.registry.All()
		for i := len(all) - 1; i >= 0; i-- {
			bp := all[i]
			if bp.state != StateInstantiated {
				continue
			}
			if err := c.destroy(bp); err != nil {
				c.logger.Error("destroy hook failed", zap.String("bean", bp.name), zap.Error(err))
				errs = append(errs, err)
			}
		}
		c.logger.Info("container closed")
	})
	return errors.Join(errs...)
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Get returns the single bean assignable to T.
//
//	greeter, err := container.Get[hello.Greeter](c)
func Get[T any](c *Container) (T, error) {
	var zero T
	v, err := c.GetBeanOfType(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return asType[T](v)
}

// GetNamed returns the bean named name as T.
func GetNamed[T any](c *Container, name string) (T, error) {
	var zero T
	v, err := c.GetNamedBean(name, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return asType[T](v)
}

// GetAll returns every bean assignable to T, ordered by (order, name).
func GetAll[T any](c *Container) ([]T, error) {
	vs, err := c.GetBeans(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		t, err := asType[T](v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// MustGet is like Get but panics on failure. Use it in bootstrap code only.
func MustGet[T any](c *Container) T {
	v, err := Get[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

// Resolve is like GetNamed but panics on failure.
//
//	// Instead of: db := c.GetBean("db") + type assertion
//	// Write:      db := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, name string) T {
	v, err := GetNamed[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}

func asType[T any](v any) (T, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, newError(KindTypeMismatch, "", "bean resolved to %T, not %v", v, reflect.TypeFor[T]())
	}
	return typed, nil
}
