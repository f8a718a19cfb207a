package aop_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-winter/framework/aop"
	"github.com/km-arc/go-winter/framework/config"
	"github.com/km-arc/go-winter/framework/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type Greeter interface {
	Greet(name string) (string, error)
}

type greeter struct {
	Prefix string `value:"${greeting.prefix:Hello}"`
	inited bool
}

func newGreeter() Greeter { return &greeter{} }

func (g *greeter) Init() error { g.inited = true; return nil }

func (g *greeter) Greet(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty name")
	}
	return g.Prefix + ", " + name, nil
}

func (g *greeter) Proxy(h aop.Handler, bean string) any {
	return &greeterProxy{target: g, h: h, bean: bean}
}

type greeterProxy struct {
	target *greeter
	h      aop.Handler
	bean   string
}

func (p *greeterProxy) Greet(name string) (string, error) {
	return aop.Intercept(p.h, p.bean, p.target, "Greet", []any{name}, func() (string, error) {
		return p.target.Greet(name)
	})
}

type plain struct{}

func (plain) Greet(string) (string, error) { return "", nil }

func invocation(out []any, err error) *aop.Invocation {
	return aop.NewInvocation("bean", "Method", nil, nil, func() ([]any, error) { return out, err })
}

// ── Handlers ──────────────────────────────────────────────────────────────────

func TestChain_Order(t *testing.T) {
	var trace []string
	mark := func(label string) aop.Handler {
		return aop.HandlerFunc(func(inv *aop.Invocation) ([]any, error) {
			trace = append(trace, label+">")
			out, err := inv.Proceed()
			trace = append(trace, "<"+label)
			return out, err
		})
	}
	inv := aop.NewInvocation("bean", "Method", nil, nil, func() ([]any, error) {
		trace = append(trace, "call")
		return []any{1}, nil
	})

	out, err := aop.Chain(mark("a"), mark("b")).Invoke(inv)
	require.NoError(t, err)
	assert.Equal(t, []any{1}, out)
	assert.Equal(t, []string{"a>", "b>", "call", "<b", "<a"}, trace)
}

func TestBefore_ErrorSkipsCall(t *testing.T) {
	called := false
	inv := aop.NewInvocation("bean", "Method", nil, nil, func() ([]any, error) {
		called = true
		return nil, nil
	})
	denied := errors.New("denied")
	_, err := aop.Before(func(*aop.Invocation) error { return denied }).Invoke(inv)
	assert.ErrorIs(t, err, denied)
	assert.False(t, called)
}

func TestAfter_RewritesResult(t *testing.T) {
	h := aop.After(func(_ *aop.Invocation, out []any, err error) ([]any, error) {
		return []any{out[0].(string) + "!"}, err
	})
	out, err := h.Invoke(invocation([]any{"hi"}, nil))
	require.NoError(t, err)
	assert.Equal(t, []any{"hi!"}, out)
}

func TestIntercept_TypeMismatch(t *testing.T) {
	h := aop.HandlerFunc(func(*aop.Invocation) ([]any, error) { return []any{42}, nil })
	_, err := aop.Intercept(h, "bean", nil, "Method", nil, func() (string, error) { return "x", nil })
	assert.ErrorContains(t, err, "bean.Method returned int")
}

func TestLoggingHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := aop.NewLoggingHandler(zap.New(core))

	_, _ = h.Invoke(invocation([]any{"ok"}, nil))
	_, err := h.Invoke(invocation(nil, errors.New("bad")))
	require.Error(t, err)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, "Method", logs.All()[0].ContextMap()["method"])
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := aop.NewMetricsHandler(reg)
	require.NoError(t, err)

	_, _ = h.Invoke(invocation(nil, nil))
	_, _ = h.Invoke(invocation(nil, errors.New("bad")))

	n, err := testutil.GatherAndCount(reg, "winter_bean_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per outcome")

	_, err = aop.NewMetricsHandler(reg)
	assert.Error(t, err, "duplicate registration")
}

// ── AroundInterceptor ─────────────────────────────────────────────────────────

func startWith(t *testing.T, bps ...*container.Blueprint) (*container.Container, error) {
	t.Helper()
	store := config.NewStore(map[string]string{"greeting.prefix": "Hi"})
	return container.Start(config.NewResolver(store), container.WithBlueprints(append([]*container.Blueprint{aop.Blueprint()}, bps...)...))
}

func TestAround_ProxiesAnnotatedBeans(t *testing.T) {
	var calls []string
	handler := aop.HandlerFunc(func(inv *aop.Invocation) ([]any, error) {
		calls = append(calls, inv.String())
		return inv.Proceed()
	})
	c, err := startWith(t,
		container.Instance("tracer", handler),
		container.Component("greeter", newGreeter).Annotate(aop.AnnotationAround, "tracer"),
		container.Component("plainGreeter", func() Greeter { return plain{} }),
	)
	require.NoError(t, err)
	defer c.Close()

	g := container.Resolve[Greeter](c, "greeter")
	require.IsType(t, &greeterProxy{}, g)

	msg, err := g.Greet("Bob")
	require.NoError(t, err)
	assert.Equal(t, "Hi, Bob", msg, "value injected on the original")
	assert.Equal(t, []string{"greeter.Greet"}, calls)

	_, err = g.Greet("")
	assert.EqualError(t, err, "empty name")

	assert.True(t, g.(*greeterProxy).target.inited)
	assert.IsType(t, plain{}, container.Resolve[Greeter](c, "plainGreeter"))
}

func TestAround_Errors(t *testing.T) {
	tests := []struct {
		name string
		bps  []*container.Blueprint
		want string
	}{
		{
			name: "missing handler",
			bps:  []*container.Blueprint{container.Component("greeter", newGreeter).Annotate(aop.AnnotationAround, "ghost")},
			want: "ghost",
		},
		{
			name: "handler of wrong type",
			bps: []*container.Blueprint{
				container.Instance("notHandler", &greeter{}),
				container.Component("greeter", newGreeter).Annotate(aop.AnnotationAround, "notHandler"),
			},
			want: "does not implement aop.Handler",
		},
		{
			name: "bean not proxyable",
			bps: []*container.Blueprint{
				container.Instance("tracer", aop.HandlerFunc(func(inv *aop.Invocation) ([]any, error) { return inv.Proceed() })),
				container.Component("plainGreeter", func() Greeter { return plain{} }).Annotate(aop.AnnotationAround, "tracer"),
			},
			want: "does not implement aop.Proxyable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := startWith(t, tt.bps...)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, container.ErrBeanCreation)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
