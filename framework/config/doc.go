// Package config loads the layered key/value Store and resolves placeholder
// expressions against it.
//
// # Layers
//
// Load merges, later wins:
//
//  1. the process environment
//  2. dotenv files           config.WithEnvFile(".env")
//  3. a YAML document        config.WithYAMLFile("application.yml")
//  4. explicit pairs         config.WithProperties(map[string]string{...})
//
// YAML is flattened to dotted keys; only scalar leaves are kept.
//
// # Expressions
//
//	r.Get("app.title")                         // plain key
//	r.Get("${app.title}")                      // fails with ErrMissing when absent
//	r.Get("${app.title:Winter}")               // default
//	r.Get("${app.path:${app.home:${HOME}}}")   // defaults nest to any depth
//
// Stored values that are themselves expressions are expanded on read.
//
// # Types
//
//	port, err := config.GetRequiredAs[int](r, "${server.port:8080}")
//	ttl, err  := config.GetAsOrDefault(r, "cache.ttl", 5*time.Minute)  // "PT5M" or "5m"
//
// Supported targets: string, bool, the int/uint/float families, time.Time,
// time.Duration and *time.Location, including named types over those kinds.
package config
