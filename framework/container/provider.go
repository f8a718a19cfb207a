package container

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider is the boundary to whatever enumerates blueprints.
//
// Register is called before any bean is built and only declares
// blueprints. Boot is called once the container is ready, making it safe
// to look up beans there.
//
//	type Provider struct{ container.BaseProvider }
//
//	func (p *Provider) Register(reg *container.Registry) error {
//	    return reg.Register(
//	        container.Configuration("helloConfig", NewConfig, container.Value("${hello.zone:UTC}")),
//	        container.Component("greeter", NewGreeter, container.Auto()),
//	    )
//	}
//
//	func (p *Provider) Boot(c *container.Container) error {
//	    c.Logger().Info("hello booted")
//	    return nil
//	}
type ServiceProvider interface {
	// Register declares blueprints. Do NOT look up beans here.
	Register(reg *Registry) error

	// Boot runs after start. Any bean may be looked up.
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op Boot.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(reg *container.Registry) error { ... }
type BaseProvider struct{}

func (BaseProvider) Boot(*Container) error { return nil }

// ProviderFunc adapts a plain registration function to ServiceProvider.
type ProviderFunc func(reg *Registry) error

func (f ProviderFunc) Register(reg *Registry) error { return f(reg) }
func (ProviderFunc) Boot(*Container) error          { return nil }
