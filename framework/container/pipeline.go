package container

import "reflect"

// ── Interceptor hooks ─────────────────────────────────────────────────────────

// BeforeInitInterceptor sees every bean right after construction and may
// return a replacement. Returning nil is a contract violation.
type BeforeInitInterceptor interface {
	BeforeInit(bean any, name string) (any, error)
}

// OriginResolver maps a substituted bean back to the object that should
// receive injection. It runs in reverse pipeline order. nil keeps the input.
type OriginResolver interface {
	ResolveOriginal(bean any, name string) any
}

// AfterInitInterceptor sees every bean after its init hook and may return
// a replacement. Returning nil is a contract violation.
type AfterInitInterceptor interface {
	AfterInit(bean any, name string) (any, error)
}

var (
	beforeInitType = reflect.TypeFor[BeforeInitInterceptor]()
	resolverType   = reflect.TypeFor[OriginResolver]()
	afterInitType  = reflect.TypeFor[AfterInitInterceptor]()
)

// isInterceptor reports whether bp's declared type implements any hook.
func isInterceptor(bp *Blueprint) bool {
	t := bp.typ
	return t.Implements(beforeInitType) || t.Implements(resolverType) || t.Implements(afterInitType)
}

// ── Pipeline ──────────────────────────────────────────────────────────────────

type interceptor struct {
	name     string
	instance any
}

// pipeline is built once during start, sorted by (order, name).
type pipeline struct {
	chain []interceptor
}

func (p *pipeline) names() []string {
	out := make([]string, len(p.chain))
	for i, ic := range p.chain {
		out[i] = ic.name
	}
	return out
}

// hook is BeforeInit or AfterInit.
type hook func(ic any, bean any, name string) (any, bool, error)

func beforeInitHook(ic any, bean any, name string) (any, bool, error) {
	h, ok := ic.(BeforeInitInterceptor)
	if !ok {
		return nil, false, nil
	}
	out, err := h.BeforeInit(bean, name)
	return out, true, err
}

func afterInitHook(ic any, bean any, name string) (any, bool, error) {
	h, ok := ic.(AfterInitInterceptor)
	if !ok {
		return nil, false, nil
	}
	out, err := h.AfterInit(bean, name)
	return out, true, err
}

// apply runs h over the chain in order, enforcing the substitution contract.
func (p *pipeline) apply(bp *Blueprint, bean any, h hook, stage string) (any, error) {
	cur := bean
	for _, ic := range p.chain {
		out, ok, err := h(ic.instance, cur, bp.name)
		if !ok {
			continue
		}
		if err != nil {
			return nil, wrapError(KindBeanCreation, bp.name, err, "%s interceptor %q failed", stage, ic.name)
		}
		if isNil(out) {
			return nil, newError(KindInterceptorContract, bp.name, "%s interceptor %q returned nil", stage, ic.name)
		}
		if !reflect.TypeOf(out).AssignableTo(bp.typ) {
			return nil, newError(KindInterceptorContract, bp.name, "%s interceptor %q returned %T, not assignable to %v", stage, ic.name, out, bp.typ)
		}
		cur = out
	}
	return cur, nil
}

// resolveOriginal runs every OriginResolver in reverse order.
func (p *pipeline) resolveOriginal(bean any, name string) any {
	cur := bean
	for i := len(p.chain) - 1; i >= 0; i-- {
		r, ok := p.chain[i].instance.(OriginResolver)
		if !ok {
			continue
		}
		if out := r.ResolveOriginal(cur, name); !isNil(out) {
			cur = out
		}
	}
	return cur
}
