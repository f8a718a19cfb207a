package container_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-winter/framework/container"
)

var catType = reflect.TypeFor[Cat]()

func names(bps []*container.Blueprint) []string {
	out := make([]string, len(bps))
	for i, bp := range bps {
		out[i] = bp.Name()
	}
	return out
}

// ── FindByType / FindAllByType ────────────────────────────────────────────────

func TestRegistry_PrimaryWins(t *testing.T) {
	reg := container.NewRegistry()
	require.NoError(t, reg.Register(
		container.Component("catB", newCat("b")),
		container.Component("catA", newCat("a")).AsPrimary(),
	))

	bp, err := reg.FindByType(catType)
	require.NoError(t, err)
	assert.Equal(t, "catA", bp.Name())

	assert.Equal(t, []string{"catA", "catB"}, names(reg.FindAllByType(catType)))
}

func TestRegistry_SingleCandidateNeedsNoPrimary(t *testing.T) {
	reg := container.NewRegistry()
	require.NoError(t, reg.Register(container.Component("only", newCat("x"))))

	bp, err := reg.FindByType(catType)
	require.NoError(t, err)
	assert.Equal(t, "only", bp.Name())
}

func TestRegistry_NoUniqueMatchMessages(t *testing.T) {
	none := container.NewRegistry()
	require.NoError(t, none.Register(
		container.Component("catA", newCat("a")),
		container.Component("catB", newCat("b")),
	))
	_, err := none.FindByType(catType)
	require.ErrorIs(t, err, container.ErrNoUniqueMatch)
	assert.Contains(t, err.Error(), "but no primary specified")

	multi := container.NewRegistry()
	require.NoError(t, multi.Register(
		container.Component("catA", newCat("a")).AsPrimary(),
		container.Component("catB", newCat("b")).AsPrimary(),
	))
	_, err = multi.FindByType(catType)
	require.ErrorIs(t, err, container.ErrNoUniqueMatch)
	assert.Contains(t, err.Error(), "multiple primary specified")
}

func TestRegistry_NoMatch(t *testing.T) {
	reg := container.NewRegistry()
	bp, err := reg.FindByType(catType)
	assert.NoError(t, err)
	assert.Nil(t, bp)
	assert.Empty(t, reg.FindAllByType(catType))
}

func TestRegistry_SortedByOrderThenName(t *testing.T) {
	reg := container.NewRegistry()
	require.NoError(t, reg.Register(
		container.Component("zeta", newCat("z")),
		container.Component("alpha", newCat("a")),
		container.Component("late", newCat("l")).WithOrder(20),
		container.Component("early", newCat("e")).WithOrder(1),
		container.Component("beta", newCat("b")).WithOrder(1),
	))

	assert.Equal(t, []string{"beta", "early", "late", "alpha", "zeta"}, names(reg.FindAllByType(catType)))
	assert.Equal(t, []string{"zeta", "alpha", "late", "early", "beta"}, reg.Names())
	assert.Equal(t, 5, reg.Len())
}

// ── FindByName ────────────────────────────────────────────────────────────────

func TestRegistry_FindByNameAndType(t *testing.T) {
	reg := container.NewRegistry()
	require.NoError(t, reg.Register(container.Component("catA", newCat("a"))))

	bp, err := reg.FindByNameAndType("catA", catType)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[*cat](), bp.Type())

	_, err = reg.FindByNameAndType("catA", reflect.TypeFor[*dog]())
	assert.ErrorIs(t, err, container.ErrTypeMismatch)

	_, err = reg.FindByNameAndType("missing", catType)
	assert.ErrorIs(t, err, container.ErrNoSuchBean)

	_, ok := reg.FindByName("missing")
	assert.False(t, ok)
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := container.NewRegistry()
	require.NoError(t, reg.Register(container.Component("catA", newCat("a"))))

	err := reg.Register(container.Instance("catA", &dog{}))
	assert.ErrorIs(t, err, container.ErrDuplicateName)
	assert.Equal(t, 1, reg.Len())
}

// ── Definition checks ─────────────────────────────────────────────────────────

type bothTags struct {
	Title string `value:"${t}" inject:"t"`
}

type hiddenTag struct {
	title string `value:"${t}"`
}

type badValueField struct {
	Ch chan int `value:"${ch}"`
}

type setterHost struct{ v int }

func (s *setterHost) SetV(v int)          { s.v = v }
func (s *setterHost) SetTwo(a, b int)     { s.v = a + b }
func (s *setterHost) Start(ctx int) error { return nil }

type factory struct{}

func (f *factory) Make() *cat { return &cat{} }

func TestRegistry_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		bp   *container.Blueprint
	}{
		{"empty name", container.Component("", newCat("a"))},
		{"not a function", container.Component("x", 42)},
		{"nil instance", container.Instance("x", nil)},
		{"bad second return", container.Component("x", func() (*cat, string) { return nil, "" })},
		{"arity mismatch", container.Component("x", func(int) *cat { return nil })},
		{"too many params", container.Component("x", newCat("a"), container.Value("${v}"))},
		{"variadic", container.Component("x", func(...int) *cat { return nil }, container.Value("${v}"))},
		{"unconvertible value", container.Component("x", func(chan int) *cat { return nil }, container.Value("${v}"))},
		{"configuration with ref", container.Configuration("x", func(*dog) *factory { return nil }, container.Ref("d"))},
		{"configuration with auto", container.Configuration("x", func(*dog) *factory { return nil }, container.Auto())},
		{"factory without bean name", container.Bean("x", "", (*factory).Make)},
		{"factory not a method", container.Bean("x", "f", func() *cat { return nil })},
		{"both tags", container.Component("x", func() *bothTags { return nil })},
		{"unexported tagged field", container.Component("x", func() *hiddenTag { return nil })},
		{"value tag on unsupported type", container.Component("x", func() *badValueField { return nil })},
		{"missing setter", container.Component("x", func() *setterHost { return nil }).Setter("SetNope", container.Value("${v}"))},
		{"setter arity", container.Component("x", func() *setterHost { return nil }).Setter("SetTwo", container.Value("${v}"))},
		{"init hook arity", container.Component("x", func() *setterHost { return nil }).InitMethod("SetV")},
		{"destroy hook arity", container.Component("x", func() *setterHost { return nil }).DestroyMethod("Start")},
		{"callback and method", container.Component("x", func() *setterHost { return nil }).
			InitMethod("Close").OnInit(func(any) error { return nil })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := container.NewRegistry()
			err := reg.Register(tt.bp)
			assert.ErrorIs(t, err, container.ErrBeanDefinition)
			assert.Equal(t, 0, reg.Len())
		})
	}
}

func TestRegistry_SealedAfterStart(t *testing.T) {
	c := start(t, nil)
	err := c.Registry().Register(container.Component("late", newCat("l")))
	assert.ErrorIs(t, err, container.ErrBeanDefinition)
}
