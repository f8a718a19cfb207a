package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-winter/framework/config"
	"github.com/km-arc/go-winter/framework/container"
)

// ── Cycles ────────────────────────────────────────────────────────────────────

func TestEngine_CircularDependency(t *testing.T) {
	tests := []struct {
		name string
		bps  []*container.Blueprint
		path string
	}{
		{
			name: "self",
			bps:  []*container.Blueprint{container.Component("a", nodeCtor("a"), container.Ref("a"))},
			path: "a -> a",
		},
		{
			name: "pair",
			bps: []*container.Blueprint{
				container.Component("a", nodeCtor("a"), container.Ref("b")),
				container.Component("b", nodeCtor("b"), container.Ref("a")),
			},
			path: "a -> b -> a",
		},
		{
			name: "triangle",
			bps: []*container.Blueprint{
				container.Component("a", nodeCtor("a"), container.Ref("b")),
				container.Component("b", nodeCtor("b"), container.Ref("c")),
				container.Component("c", nodeCtor("c"), container.Ref("a")),
			},
			path: "a -> b -> c -> a",
		},
		{
			name: "through factory",
			bps: []*container.Blueprint{
				container.Component("a", func(*cat) *node { return &node{} }, container.Ref("made")),
				container.Component("f", func(*node) *factory { return &factory{} }, container.Ref("a")),
				container.Bean("made", "f", (*factory).Make),
			},
			path: "f -> a -> made -> f",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := startErr(t, nil, tt.bps...)
			assert.ErrorIs(t, err, container.ErrCircularDependency)
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

// ── Ordering ──────────────────────────────────────────────────────────────────

type dbConfig struct{ url string }

type conn struct{ url string }

func (d *dbConfig) Open() (*conn, error) { return &conn{url: d.url}, nil }

type repo struct{ conn *conn }

func TestEngine_FactoryBeforeDependents(t *testing.T) {
	rec := &recorder{}
	c := start(t, map[string]string{"db.url": "mem://winter"},
		container.Component("repo", func(cn *conn) *repo {
			rec.add("repo")
			return &repo{conn: cn}
		}, container.Ref("conn")).WithOrder(10),
		container.Bean("conn", "db", (*dbConfig).Open),
		container.Component("db", func(url string) *dbConfig {
			rec.add("db")
			return &dbConfig{url: url}
		}, container.Value("${db.url}")).WithOrder(0),
	)

	assert.Equal(t, []string{"db", "repo"}, rec.events)

	cn, err := container.GetNamed[*conn](c, "conn")
	require.NoError(t, err)
	require.NotNil(t, cn)
	assert.Equal(t, "mem://winter", cn.url)

	r, err := container.GetNamed[*repo](c, "repo")
	require.NoError(t, err)
	assert.Same(t, cn, r.conn)
}

func TestEngine_ConfigurationBuiltFirst(t *testing.T) {
	rec := &recorder{}
	start(t, nil,
		container.Component("plain", func() *node {
			rec.add("plain")
			return &node{}
		}).WithOrder(0),
		container.Configuration("cfg", func() *dbConfig {
			rec.add("cfg")
			return &dbConfig{}
		}).WithOrder(100),
	)
	assert.Equal(t, []string{"cfg", "plain"}, rec.events)
}

func TestEngine_EachBeanBuiltOnce(t *testing.T) {
	calls := 0
	c := start(t, nil,
		container.Component("shared", func() *node {
			calls++
			return &node{name: "shared"}
		}),
		container.Component("a", func(n *node) *repo { return &repo{} }, container.Ref("shared")),
		container.Component("b", func(n *node) *conn { return &conn{} }, container.Ref("shared")),
	)
	assert.Equal(t, 1, calls)
	assert.True(t, c.ContainsBean("shared"))
}

// ── Parameters ────────────────────────────────────────────────────────────────

type titled struct {
	title string
	port  int
}

func TestEngine_ValueParams(t *testing.T) {
	c := start(t, map[string]string{"app.title": "Winter"},
		container.Component("t", func(title string, port int) *titled {
			return &titled{title: title, port: port}
		}, container.Value("${app.title}"), container.Value("${server.port:8080}")),
	)
	v := container.Resolve[*titled](c, "t")
	assert.Equal(t, "Winter", v.title)
	assert.Equal(t, 8080, v.port)
}

func TestEngine_MissingRequiredConfigAbortsStart(t *testing.T) {
	err := startErr(t, nil,
		container.Component("t", func(title string) *titled { return &titled{title: title} },
			container.Value("${app.title}")),
	)
	assert.ErrorIs(t, err, container.ErrMissingConfig)
	assert.ErrorIs(t, err, config.ErrMissing)
	assert.Contains(t, err.Error(), "app.title")
}

func TestEngine_ConversionFailure(t *testing.T) {
	err := startErr(t, map[string]string{"server.port": "eighty"},
		container.Component("t", func(port int) *titled { return &titled{port: port} },
			container.Value("server.port")),
	)
	assert.ErrorIs(t, err, config.ErrConversion)
}

func TestEngine_OptionalParams(t *testing.T) {
	var got *cat
	var title string
	start(t, nil,
		container.Component("t", func(c *cat, s string) *titled {
			got, title = c, s
			return &titled{}
		}, container.Ref("nope").Optional(), container.Value("${app.title}").Optional()),
	)
	assert.Nil(t, got)
	assert.Empty(t, title)
}

func TestEngine_UnsatisfiedDependency(t *testing.T) {
	err := startErr(t, nil,
		container.Component("t", func(*cat) *titled { return &titled{} }, container.Ref("nope")),
	)
	assert.ErrorIs(t, err, container.ErrUnsatisfiedDependency)

	err = startErr(t, nil,
		container.Component("t", func(Cat) *titled { return &titled{} }, container.Auto()),
	)
	assert.ErrorIs(t, err, container.ErrUnsatisfiedDependency)
}

func TestEngine_AutoParamUsesPrimary(t *testing.T) {
	var got Cat
	start(t, nil,
		container.Component("catA", newCat("a")).AsPrimary(),
		container.Component("catB", newCat("b")),
		container.Component("owner", func(c Cat) *titled {
			got = c
			return &titled{}
		}, container.Auto()),
	)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Meow())
}

func TestEngine_AutoParamAmbiguous(t *testing.T) {
	err := startErr(t, nil,
		container.Component("catA", newCat("a")),
		container.Component("catB", newCat("b")),
		container.Component("owner", func(Cat) *titled { return &titled{} }, container.Auto()),
	)
	assert.ErrorIs(t, err, container.ErrNoUniqueMatch)
}

func TestEngine_RefTypeMismatch(t *testing.T) {
	err := startErr(t, nil,
		container.Component("catA", newCat("a")),
		container.Component("owner", func(*dog) *titled { return &titled{} }, container.Ref("catA")),
	)
	assert.ErrorIs(t, err, container.ErrTypeMismatch)
}

// A dependency that fails on its own propagates its error, it is not
// reported as missing.
func TestEngine_DependencyFailurePropagates(t *testing.T) {
	err := startErr(t, nil,
		container.Component("conn", func(url string) *conn { return &conn{url: url} },
			container.Value("${db.url}")),
		container.Component("repo", func(c *conn) *repo { return &repo{conn: c} },
			container.Ref("conn").Optional()).WithOrder(0),
	)
	assert.ErrorIs(t, err, container.ErrMissingConfig)
	assert.NotErrorIs(t, err, container.ErrUnsatisfiedDependency)
}

// ── Invocation failures ───────────────────────────────────────────────────────

func TestEngine_BeanCreationFailed(t *testing.T) {
	tests := []struct {
		name string
		bp   *container.Blueprint
	}{
		{"error", container.Component("x", func() (*node, error) { return nil, errBoom })},
		{"panic", container.Component("x", func() *node { panic("kaboom") })},
		{"nil result", container.Component("x", func() *node { return nil })},
		{"factory error", container.Bean("x", "f", func(*factory) (*cat, error) { return nil, errBoom })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bps := []*container.Blueprint{tt.bp, container.Component("f", func() *factory { return &factory{} })}
			err := startErr(t, nil, bps...)
			assert.ErrorIs(t, err, container.ErrBeanCreation)
			assert.Contains(t, err.Error(), "[x]")
		})
	}

	err := startErr(t, nil, container.Component("x", func() (*node, error) { return nil, errBoom }))
	assert.ErrorIs(t, err, errBoom)
}

func TestEngine_UnknownFactoryBean(t *testing.T) {
	err := startErr(t, nil, container.Bean("x", "ghost", (*factory).Make))
	assert.ErrorIs(t, err, container.ErrBeanDefinition)
}
