package container

import (
	"fmt"
	"reflect"
)

// ErrorKind classifies container failures.
type ErrorKind string

const (
	KindNoSuchBean            ErrorKind = "NO_SUCH_BEAN"
	KindDuplicateName         ErrorKind = "DUPLICATE_NAME"
	KindBeanDefinition        ErrorKind = "BEAN_DEFINITION"
	KindCircularDependency    ErrorKind = "CIRCULAR_DEPENDENCY"
	KindUnsatisfiedDependency ErrorKind = "UNSATISFIED_DEPENDENCY"
	KindTypeMismatch          ErrorKind = "TYPE_MISMATCH"
	KindNoUniqueMatch         ErrorKind = "NO_UNIQUE_MATCH"
	KindBeanCreation          ErrorKind = "BEAN_CREATION"
	KindInterceptorContract   ErrorKind = "INTERCEPTOR_CONTRACT"
	KindMissingConfig         ErrorKind = "MISSING_CONFIG"
)

// Sentinels for errors.Is.
//
//	if errors.Is(err, container.ErrCircularDependency) { ... }
var (
	ErrNoSuchBean            = &Error{Kind: KindNoSuchBean}
	ErrDuplicateName         = &Error{Kind: KindDuplicateName}
	ErrBeanDefinition        = &Error{Kind: KindBeanDefinition}
	ErrCircularDependency    = &Error{Kind: KindCircularDependency}
	ErrUnsatisfiedDependency = &Error{Kind: KindUnsatisfiedDependency}
	ErrTypeMismatch          = &Error{Kind: KindTypeMismatch}
	ErrNoUniqueMatch         = &Error{Kind: KindNoUniqueMatch}
	ErrBeanCreation          = &Error{Kind: KindBeanCreation}
	ErrInterceptorContract   = &Error{Kind: KindInterceptorContract}
	ErrMissingConfig         = &Error{Kind: KindMissingConfig}
)

// Error is the single error type returned by the container.
type Error struct {
	Kind    ErrorKind
	Bean    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := "container: "
	if e.Bean != "" {
		msg += fmt.Sprintf("[%s] ", e.Bean)
	}
	if e.Message != "" {
		msg += e.Message
	} else {
		msg += string(e.Kind)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Kind so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, bean string, format string, args ...any) *Error {
	return &Error{Kind: kind, Bean: bean, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, bean string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Bean: bean, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func noBeanOfType(t reflect.Type) *Error {
	return newError(KindNoSuchBean, "", "no bean with type '%v' found", t)
}
