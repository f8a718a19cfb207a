package validation

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/container"
)

// Interceptor validates every bean whose struct carries `validate` tags,
// once the bean is fully initialized.
type Interceptor struct {
	v      *Validator
	logger *zap.Logger
	tagged sync.Map // reflect.Type → bool
}

// NewInterceptor is the constructor for the "validationInterceptor" bean.
func NewInterceptor(logger *zap.Logger) *Interceptor {
	return &Interceptor{v: New(), logger: logger.Named("validation")}
}

// Blueprint declares the interceptor.
func Blueprint() *container.Blueprint {
	return container.Component("validationInterceptor", NewInterceptor, container.Ref("logger")).WithOrder(1)
}

func (i *Interceptor) AfterInit(bean any, name string) (any, error) {
	if !i.hasRules(reflect.TypeOf(bean)) {
		return bean, nil
	}
	if errs := i.v.Struct(bean); errs != nil {
		return nil, fmt.Errorf("bean %q is invalid: %w", name, errs)
	}
	i.logger.Debug("bean validated", zap.String("bean", name))
	return bean, nil
}

// hasRules reports whether t (or *t) is a struct with a validate tag on a
// direct or embedded field.
func (i *Interceptor) hasRules(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if v, ok := i.tagged.Load(t); ok {
		return v.(bool)
	}
	st := t
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	}
	found := st.Kind() == reflect.Struct && structHasRules(st)
	i.tagged.Store(t, found)
	return found
}

func structHasRules(st reflect.Type) bool {
	for n := 0; n < st.NumField(); n++ {
		f := st.Field(n)
		if _, ok := f.Tag.Lookup("validate"); ok {
			return true
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct && structHasRules(f.Type) {
			return true
		}
	}
	return false
}
