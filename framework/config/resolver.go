package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// Resolver resolves configuration keys and placeholder expressions against
// a Store. It is safe for concurrent use since the Store never changes.
type Resolver struct {
	store  *Store
	logger *zap.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver wraps store.
//
//	store, _ := config.Load(config.WithEnvFile(".env"))
//	r := config.NewResolver(store)
//	title, err := r.GetRequired("${app.title:Winter}")
func NewResolver(store *Store, opts ...ResolverOption) *Resolver {
	if store == nil {
		store = NewStore()
	}
	r := &Resolver{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if ce := r.logger.Check(zap.DebugLevel, "config keys loaded"); ce != nil {
		ce.Write(zap.Int("count", store.Len()), zap.Strings("keys", store.Keys()))
	}
	return r
}

// Store returns the underlying Store.
func (r *Resolver) Store() *Store { return r.store }

// Contains reports whether key resolves to a value.
func (r *Resolver) Contains(key string) bool {
	_, ok, err := r.Get(key)
	return ok && err == nil
}

// ── Expression grammar ────────────────────────────────────────────────────────

type expr struct {
	name       string
	def        string
	hasDefault bool
}

// parseExpr recognises "${name}" and "${name:default}". The name ends at the
// first ':' so defaults may themselves be expressions.
func parseExpr(s string) (expr, bool, error) {
	if !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return expr{}, false, nil
	}
	body := s[2 : len(s)-1]
	name, def, hasDefault := strings.Cut(body, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return expr{}, true, syntax(s, errors.New("empty key"))
	}
	return expr{name: name, def: def, hasDefault: hasDefault}, true, nil
}

// ── String resolution ─────────────────────────────────────────────────────────

// Get resolves key, which is a plain key or a placeholder expression.
// ok is false when nothing was found; err is set for syntax errors and for
// an expression whose key is absent with no default.
func (r *Resolver) Get(key string) (string, bool, error) {
	v, err := r.resolve(key, nil)
	var ce *Error
	if errors.As(err, &ce) && ce.Kind == KindMissing && ce.Key == key {
		// plain key absent
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// GetOrDefault returns def when key does not resolve.
func (r *Resolver) GetOrDefault(key, def string) (string, error) {
	v, ok, err := r.Get(key)
	if errors.Is(err, ErrMissing) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// GetRequired fails with ErrMissing when key does not resolve.
func (r *Resolver) GetRequired(key string) (string, error) {
	v, ok, err := r.Get(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", missing(key)
	}
	return v, nil
}

func (r *Resolver) resolve(key string, chain []string) (string, error) {
	e, isExpr, err := parseExpr(key)
	if err != nil {
		return "", err
	}
	if !isExpr {
		return r.lookup(key, chain)
	}
	v, err := r.lookup(e.name, chain)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrMissing) || !e.hasDefault {
		return "", err
	}
	return r.expand(e.def, chain)
}

// lookup reads a plain key and expands its stored value.
func (r *Resolver) lookup(name string, chain []string) (string, error) {
	for _, seen := range chain {
		if seen == name {
			return "", syntax(name, fmt.Errorf("circular reference %s -> %s", strings.Join(chain, " -> "), name))
		}
	}
	raw, ok := r.store.Lookup(name)
	if !ok {
		return "", missing(name)
	}
	return r.expand(raw, append(chain, name))
}

// expand resolves text when it is an expression; other text is literal.
func (r *Resolver) expand(text string, chain []string) (string, error) {
	if _, isExpr, err := parseExpr(text); err != nil {
		return "", err
	} else if !isExpr {
		return text, nil
	}
	return r.resolve(text, chain)
}

// ── Typed resolution ──────────────────────────────────────────────────────────

// GetTyped resolves key and converts it to t. ok is false when key is absent.
func (r *Resolver) GetTyped(key string, t reflect.Type) (any, bool, error) {
	v, ok, err := r.Get(key)
	if err != nil || !ok {
		return nil, ok, err
	}
	out, err := convertKey(key, v, t)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// GetRequiredTyped is GetTyped failing with ErrMissing on absence.
func (r *Resolver) GetRequiredTyped(key string, t reflect.Type) (any, error) {
	v, ok, err := r.GetTyped(key, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missing(key)
	}
	return v, nil
}

func convertKey(key, value string, t reflect.Type) (any, error) {
	out, err := Convert(value, t)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) && ce.Key == "" {
			ce.Key = key
		}
		return nil, err
	}
	return out, nil
}

// GetAs resolves key as T.
//
//	port, ok, err := config.GetAs[int](r, "${server.port:8080}")
func GetAs[T any](r *Resolver, key string) (T, bool, error) {
	var zero T
	v, ok, err := r.GetTyped(key, reflect.TypeFor[T]())
	if err != nil || !ok {
		return zero, ok, err
	}
	return v.(T), true, nil
}

// GetRequiredAs resolves key as T, failing with ErrMissing on absence.
func GetRequiredAs[T any](r *Resolver, key string) (T, error) {
	var zero T
	v, err := r.GetRequiredTyped(key, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// GetAsOrDefault resolves key as T, returning def when it is absent.
// Conversion failures are still reported.
func GetAsOrDefault[T any](r *Resolver, key string, def T) (T, error) {
	v, ok, err := GetAs[T](r, key)
	if errors.Is(err, ErrMissing) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}
