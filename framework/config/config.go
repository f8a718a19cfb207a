package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ── Loading ───────────────────────────────────────────────────────────────────

// Option configures Load.
type Option func(*loader) error

type loader struct {
	skipEnv bool
	layers  []map[string]string
}

// WithoutEnvironment skips seeding the store from the process environment.
func WithoutEnvironment() Option {
	return func(l *loader) error {
		l.skipEnv = true
		return nil
	}
}

// WithEnvFile overlays one or more dotenv files. Missing files are skipped,
// .env may not exist in production.
//
//	store, err := config.Load(config.WithEnvFile(".env", ".env.local"))
func WithEnvFile(paths ...string) Option {
	return func(l *loader) error {
		for _, path := range paths {
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				continue
			}
			values, err := godotenv.Read(path)
			if err != nil {
				return fmt.Errorf("config: read %s: %w", path, err)
			}
			l.layers = append(l.layers, values)
		}
		return nil
	}
}

// WithYAMLFile overlays a YAML document flattened to dotted keys.
// A missing file is skipped.
//
//	# application.yml
//	app:
//	  title: Winter
//	server:
//	  port: 8080          → app.title=Winter, server.port=8080
func WithYAMLFile(path string) Option {
	return func(l *loader) error {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		values, err := flattenYAML(data)
		if err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
		l.layers = append(l.layers, values)
		return nil
	}
}

// WithYAML overlays an in-memory YAML document.
func WithYAML(data []byte) Option {
	return func(l *loader) error {
		values, err := flattenYAML(data)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		l.layers = append(l.layers, values)
		return nil
	}
}

// WithProperties overlays explicit key/value pairs.
func WithProperties(props map[string]string) Option {
	return func(l *loader) error {
		l.layers = append(l.layers, props)
		return nil
	}
}

// Load builds a Store: environment first, then every option in order.
// Later layers win.
func Load(opts ...Option) (*Store, error) {
	l := &loader{}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	layers := l.layers
	if !l.skipEnv {
		layers = append([]map[string]string{Environ()}, layers...)
	}
	return NewStore(layers...), nil
}

// ── YAML flattening ───────────────────────────────────────────────────────────

func flattenYAML(data []byte) (map[string]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	out := make(map[string]string)
	if len(doc.Content) == 0 {
		return out, nil
	}
	flattenNode("", doc.Content[0], out)
	return out, nil
}

// flattenNode keeps scalar leaves only; sequences and nulls are dropped.
func flattenNode(prefix string, node *yaml.Node, out map[string]string) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if prefix != "" {
				key = prefix + "." + key
			}
			flattenNode(key, node.Content[i+1], out)
		}
	case yaml.ScalarNode:
		if node.Tag == "!!null" || prefix == "" {
			return
		}
		out[prefix] = strings.TrimSpace(node.Value)
	}
}
