package aop

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/container"
)

// AnnotationAround names the handler bean a blueprint is proxied with.
//
//	container.Component("greeter", hello.NewGreeter).Annotate(aop.AnnotationAround, "loggingHandler")
const AnnotationAround = "around"

// AroundInterceptor replaces annotated beans with their Proxy and hands the
// original back for injection.
type AroundInterceptor struct {
	c       *container.Container
	logger  *zap.Logger
	origins map[string]any
}

// NewAroundInterceptor is the constructor for the "aroundInterceptor" bean.
func NewAroundInterceptor(c *container.Container) *AroundInterceptor {
	return &AroundInterceptor{
		c:       c,
		logger:  c.Logger().Named("aop"),
		origins: make(map[string]any),
	}
}

// Blueprint declares the interceptor. Order 0 keeps it ahead of user
// interceptors.
func Blueprint() *container.Blueprint {
	return container.Component("aroundInterceptor", NewAroundInterceptor, container.Ref("container")).WithOrder(0)
}

func (a *AroundInterceptor) BeforeInit(bean any, name string) (any, error) {
	bp, ok := a.c.Registry().FindByName(name)
	if !ok {
		return bean, nil
	}
	handlerName, ok := bp.Annotation(AnnotationAround)
	if !ok {
		return bean, nil
	}
	p, ok := bean.(Proxyable)
	if !ok {
		return nil, fmt.Errorf("bean %q is annotated %s=%q but %T does not implement aop.Proxyable", name, AnnotationAround, handlerName, bean)
	}
	hb, err := a.c.GetBean(handlerName)
	if err != nil {
		return nil, fmt.Errorf("handler of bean %q: %w", name, err)
	}
	h, ok := hb.(Handler)
	if !ok {
		return nil, fmt.Errorf("handler bean %q of type %T does not implement aop.Handler", handlerName, hb)
	}
	proxy := p.Proxy(h, name)
	a.origins[name] = bean
	a.logger.Debug("bean proxied", zap.String("bean", name), zap.String("handler", handlerName))
	return proxy, nil
}

func (a *AroundInterceptor) ResolveOriginal(bean any, name string) any {
	if origin, ok := a.origins[name]; ok {
		return origin
	}
	return bean
}
