package config

import (
	"fmt"
	"reflect"
)

// ErrorKind classifies configuration failures.
type ErrorKind string

const (
	KindMissing    ErrorKind = "CONFIG_MISSING"
	KindConversion ErrorKind = "TYPE_CONVERSION"
	KindSyntax     ErrorKind = "PLACEHOLDER_SYNTAX"
)

// Sentinels for errors.Is.
var (
	ErrMissing    = &Error{Kind: KindMissing}
	ErrConversion = &Error{Kind: KindConversion}
	ErrSyntax     = &Error{Kind: KindSyntax}
)

// Error is returned by the Resolver and the converter table.
type Error struct {
	Kind   ErrorKind
	Key    string
	Value  string
	Target reflect.Type
	Cause  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissing:
		return fmt.Sprintf("config: property %q not found", e.Key)
	case KindConversion:
		msg := fmt.Sprintf("config: cannot convert %q to %v", e.Value, e.Target)
		if e.Key != "" {
			msg += fmt.Sprintf(" (property %q)", e.Key)
		}
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
		return msg
	case KindSyntax:
		if e.Cause != nil {
			return fmt.Sprintf("config: invalid placeholder %q: %v", e.Key, e.Cause)
		}
		return fmt.Sprintf("config: invalid placeholder %q", e.Key)
	}
	return fmt.Sprintf("config: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Kind so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func missing(key string) error { return &Error{Kind: KindMissing, Key: key} }

func syntax(key string, cause error) error {
	return &Error{Kind: KindSyntax, Key: key, Cause: cause}
}
