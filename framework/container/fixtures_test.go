package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-winter/framework/config"
	"github.com/km-arc/go-winter/framework/container"
)

// ── shared fixtures ───────────────────────────────────────────────────────────

type Cat interface{ Meow() string }

type cat struct{ name string }

func (c *cat) Meow() string { return c.name }

func newCat(name string) func() *cat {
	return func() *cat { return &cat{name: name} }
}

type dog struct{}

type node struct{ name string }

func nodeCtor(name string) func(*node) *node {
	return func(*node) *node { return &node{name: name} }
}

var errBoom = errors.New("boom")

func resolverWith(t *testing.T, props map[string]string) *config.Resolver {
	t.Helper()
	store, err := config.Load(config.WithoutEnvironment(), config.WithProperties(props))
	require.NoError(t, err)
	return config.NewResolver(store)
}

func start(t *testing.T, props map[string]string, bps ...*container.Blueprint) *container.Container {
	t.Helper()
	c, err := container.Start(resolverWith(t, props), container.WithBlueprints(bps...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func startErr(t *testing.T, props map[string]string, bps ...*container.Blueprint) error {
	t.Helper()
	c, err := container.Start(resolverWith(t, props), container.WithBlueprints(bps...))
	require.Error(t, err)
	require.Nil(t, c, "no partial container on failure")
	return err
}

// recorder collects events in call order.
type recorder struct{ events []string }

func (r *recorder) add(e string) { r.events = append(r.events, e) }
