package aop

import (
	"errors"
	"fmt"
)

// ── Invocation ────────────────────────────────────────────────────────────────

// Invocation is one method call routed through a Handler.
type Invocation struct {
	Bean   string
	Method string
	Args   []any
	Target any

	proceed func() ([]any, error)
}

// NewInvocation builds an Invocation whose Proceed runs proceed.
func NewInvocation(bean, method string, args []any, target any, proceed func() ([]any, error)) *Invocation {
	return &Invocation{Bean: bean, Method: method, Args: args, Target: target, proceed: proceed}
}

// Proceed calls the target method and returns its results.
func (inv *Invocation) Proceed() ([]any, error) {
	if inv.proceed == nil {
		return nil, errors.New("aop: invocation has no target")
	}
	return inv.proceed()
}

func (inv *Invocation) String() string { return inv.Bean + "." + inv.Method }

// ── Handlers ──────────────────────────────────────────────────────────────────

// Handler wraps method calls of proxied beans.
type Handler interface {
	Invoke(inv *Invocation) ([]any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(inv *Invocation) ([]any, error)

func (f HandlerFunc) Invoke(inv *Invocation) ([]any, error) { return f(inv) }

// Before runs fn ahead of the call. An error from fn skips the call.
//
//	aop.Before(func(inv *aop.Invocation) error {
//	    log.Printf("calling %s", inv)
//	    return nil
//	})
func Before(fn func(inv *Invocation) error) Handler {
	return HandlerFunc(func(inv *Invocation) ([]any, error) {
		if err := fn(inv); err != nil {
			return nil, err
		}
		return inv.Proceed()
	})
}

// After runs fn with the results of the call and returns what fn returns.
func After(fn func(inv *Invocation, results []any, err error) ([]any, error)) Handler {
	return HandlerFunc(func(inv *Invocation) ([]any, error) {
		out, err := inv.Proceed()
		return fn(inv, out, err)
	})
}

// Chain nests handlers; the first is outermost.
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(inv *Invocation) ([]any, error) {
		return chainAt(handlers, 0, inv)
	})
}

func chainAt(handlers []Handler, i int, inv *Invocation) ([]any, error) {
	if i == len(handlers) {
		return inv.Proceed()
	}
	next := *inv
	next.proceed = func() ([]any, error) { return chainAt(handlers, i+1, inv) }
	return handlers[i].Invoke(&next)
}

// ── Proxies ───────────────────────────────────────────────────────────────────

// Proxyable beans build their own decorator. The decorator implements the
// same interface as the bean and routes calls through h with Intercept.
type Proxyable interface {
	Proxy(h Handler, bean string) any
}

// Intercept routes one single-result call through h.
//
//	func (p *greeterProxy) Greet(name string) (string, error) {
//	    return aop.Intercept(p.h, p.bean, p.target, "Greet", []any{name}, func() (string, error) {
//	        return p.target.Greet(name)
//	    })
//	}
func Intercept[T any](h Handler, bean string, target any, method string, args []any, fn func() (T, error)) (T, error) {
	var zero T
	inv := NewInvocation(bean, method, args, target, func() ([]any, error) {
		v, err := fn()
		return []any{v}, err
	})
	out, err := h.Invoke(inv)
	if err != nil {
		return zero, err
	}
	if len(out) == 0 || out[0] == nil {
		return zero, nil
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("aop: %s returned %T, want %T", inv, out[0], zero)
	}
	return v, nil
}
