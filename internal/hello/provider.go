package hello

import (
	"github.com/km-arc/go-winter/framework/aop"
	"github.com/km-arc/go-winter/framework/container"
)

// Provider registers the hello application. It needs the framework
// providers for "validator" and "loggingHandler".
type Provider struct {
	container.BaseProvider
}

func (p *Provider) Register(reg *container.Registry) error {
	return reg.Register(
		container.Configuration("helloConfiguration", NewConfiguration,
			container.Value("${hello.greeting:Hello}"),
			container.Value("${hello.zone:UTC}"),
		),
		container.Bean("clock", "helloConfiguration", (*Configuration).Clock),
		container.Component("greeter", NewGreeter).
			Annotate(aop.AnnotationAround, "loggingHandler").
			Annotate("description", "greets people"),
		container.Component("helloController", NewController, container.Ref("validator")),
	)
}
