package container

import (
	"errors"
	"math"
	"reflect"

	"github.com/km-arc/go-winter/framework/config"
)

// ── Parameters ────────────────────────────────────────────────────────────────

type paramKind int

const (
	paramValue paramKind = iota
	paramRef
	paramAuto
)

// Param describes how one constructor, factory or setter argument is resolved.
type Param struct {
	kind     paramKind
	expr     string
	ref      string
	optional bool
}

// Value resolves the argument through the config Resolver.
//
//	container.Value("${server.port:8080}")
func Value(expr string) Param { return Param{kind: paramValue, expr: expr} }

// Ref resolves the argument to the bean with the given name.
func Ref(name string) Param { return Param{kind: paramRef, ref: name} }

// Auto resolves the argument by its parameter type.
func Auto() Param { return Param{kind: paramAuto} }

// Optional makes an unresolved argument the zero value instead of an error.
func (p Param) Optional() Param {
	p.optional = true
	return p
}

// IsOptional reports whether the Param was marked Optional.
func (p Param) IsOptional() bool { return p.optional }

func (p Param) String() string {
	switch p.kind {
	case paramValue:
		return "value(" + p.expr + ")"
	case paramRef:
		return "ref(" + p.ref + ")"
	}
	return "auto"
}

// ── Lifecycle capabilities ────────────────────────────────────────────────────

// Initializer is discovered on beans with no explicit init hook.
type Initializer interface {
	Init() error
}

// Destroyer is discovered on beans with no explicit destroy hook.
type Destroyer interface {
	Destroy() error
}

// ── Blueprint ─────────────────────────────────────────────────────────────────

type strategy int

const (
	strategyConstructor strategy = iota
	strategyFactory
	strategyInstance
)

// State is the lifecycle position of a Blueprint.
type State int

const (
	StateRegistered State = iota
	StateConstructing
	StateInstantiated
)

// DefaultOrder is the ordering weight of blueprints without WithOrder.
const DefaultOrder = math.MaxInt

type setterPoint struct {
	method string
	param  Param
}

// Blueprint describes how to build exactly one bean.
//
//	container.Component("repo", NewRepo, container.Ref("conn")).WithOrder(10)
//	container.Bean("conn", "db", (*DBConfig).Open)
//	container.Instance("clock", realClock{})
type Blueprint struct {
	name     string
	typ      reflect.Type
	strategy strategy

	fn          reflect.Value // constructor or factory method expression
	factoryBean string
	params      []Param

	order         int
	primary       bool
	configuration bool

	initName, destroyName string
	initFn, destroyFn     func(bean any) error

	setters     []setterPoint
	annotations map[string]string

	state    State
	instance any
	err      error
}

// Component declares a bean built by calling ctor. ctor returns T or (T, error)
// and takes one argument per param.
func Component(name string, ctor any, params ...Param) *Blueprint {
	bp := newBlueprint(name, strategyConstructor, params)
	bp.fn = reflect.ValueOf(ctor)
	bp.typ = returnType(bp.fn)
	return bp
}

// Configuration declares a factory-source bean. It is built before every
// other bean and may only take Value params.
func Configuration(name string, ctor any, params ...Param) *Blueprint {
	bp := Component(name, ctor, params...)
	bp.configuration = true
	return bp
}

// Bean declares a bean produced by a method of another bean. method is a
// method expression whose receiver is the factory bean:
//
//	container.Bean("zone", "helloConfig", (*HelloConfig).Zone)
func Bean(name, factoryBean string, method any, params ...Param) *Blueprint {
	bp := newBlueprint(name, strategyFactory, params)
	bp.factoryBean = factoryBean
	bp.fn = reflect.ValueOf(method)
	bp.typ = returnType(bp.fn)
	return bp
}

// Instance declares a pre-built bean. The declared type is the dynamic type
// of value.
func Instance(name string, value any) *Blueprint {
	bp := newBlueprint(name, strategyInstance, nil)
	if value == nil {
		bp.err = errors.New("instance is nil")
		return bp
	}
	bp.typ = reflect.TypeOf(value)
	bp.instance = value
	bp.state = StateInstantiated
	return bp
}

func newBlueprint(name string, s strategy, params []Param) *Blueprint {
	return &Blueprint{
		name:        name,
		strategy:    s,
		params:      params,
		order:       DefaultOrder,
		annotations: make(map[string]string),
	}
}

func returnType(fn reflect.Value) reflect.Type {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.Type().NumOut() == 0 {
		return nil
	}
	return fn.Type().Out(0)
}

// ── Fluent configuration ──────────────────────────────────────────────────────

// WithOrder sets the ordering weight. Lower sorts first.
func (b *Blueprint) WithOrder(order int) *Blueprint {
	b.order = order
	return b
}

// AsPrimary marks the blueprint as the winner of ambiguous type lookups.
func (b *Blueprint) AsPrimary() *Blueprint {
	b.primary = true
	return b
}

// InitMethod names a no-arg method looked up on the realized instance.
func (b *Blueprint) InitMethod(name string) *Blueprint {
	b.initName = name
	return b
}

// DestroyMethod names a no-arg method looked up on the realized instance.
func (b *Blueprint) DestroyMethod(name string) *Blueprint {
	b.destroyName = name
	return b
}

// OnInit binds an init callback receiving the live instance.
func (b *Blueprint) OnInit(fn func(bean any) error) *Blueprint {
	b.initFn = fn
	return b
}

// OnDestroy binds a destroy callback receiving the live instance.
func (b *Blueprint) OnDestroy(fn func(bean any) error) *Blueprint {
	b.destroyFn = fn
	return b
}

// Setter declares a single-argument method called during injection.
//
//	container.Component("svc", NewService).Setter("SetCache", container.Ref("cache"))
func (b *Blueprint) Setter(method string, p Param) *Blueprint {
	b.setters = append(b.setters, setterPoint{method: method, param: p})
	return b
}

// Annotate attaches metadata read by interceptors.
func (b *Blueprint) Annotate(key, value string) *Blueprint {
	b.annotations[key] = value
	return b
}

// ── Accessors ─────────────────────────────────────────────────────────────────

func (b *Blueprint) Name() string          { return b.name }
func (b *Blueprint) Type() reflect.Type    { return b.typ }
func (b *Blueprint) Order() int            { return b.order }
func (b *Blueprint) Primary() bool         { return b.primary }
func (b *Blueprint) IsConfiguration() bool { return b.configuration }
func (b *Blueprint) FactoryBean() string   { return b.factoryBean }
func (b *Blueprint) State() State          { return b.state }

// Instance returns the live instance, nil before construction.
func (b *Blueprint) Instance() any { return b.instance }

// Annotation returns the value attached with Annotate.
func (b *Blueprint) Annotation(key string) (string, bool) {
	v, ok := b.annotations[key]
	return v, ok
}

// AssignableTo reports whether the declared type satisfies t.
func (b *Blueprint) AssignableTo(t reflect.Type) bool {
	return b.typ != nil && t != nil && b.typ.AssignableTo(t)
}

func (b *Blueprint) String() string {
	if b.typ == nil {
		return b.name
	}
	return b.name + " (" + b.typ.String() + ")"
}

// setInstance makes value the live instance.
func (b *Blueprint) setInstance(value any) error {
	if isNil(value) {
		return newError(KindBeanCreation, b.name, "instance of %v is nil", b.typ)
	}
	if !reflect.TypeOf(value).AssignableTo(b.typ) {
		return newError(KindBeanCreation, b.name, "instance %T is not assignable to %v", value, b.typ)
	}
	b.instance = value
	b.state = StateInstantiated
	return nil
}

// ── Definition checks ─────────────────────────────────────────────────────────

var errorType = reflect.TypeFor[error]()

// validate rejects structurally invalid blueprints at registration time.
func (b *Blueprint) validate() error {
	if b.name == "" {
		return newError(KindBeanDefinition, "", "blueprint without a name")
	}
	if b.err != nil {
		return wrapError(KindBeanDefinition, b.name, b.err, "invalid blueprint")
	}
	switch b.strategy {
	case strategyConstructor:
		if err := b.checkFunc("constructor", 0); err != nil {
			return err
		}
	case strategyFactory:
		if b.factoryBean == "" {
			return newError(KindBeanDefinition, b.name, "factory bean name is empty")
		}
		if err := b.checkFunc("factory method", 1); err != nil {
			return err
		}
	}
	if b.typ == nil {
		return newError(KindBeanDefinition, b.name, "declared type is unknown")
	}
	if b.initFn != nil && b.initName != "" {
		return newError(KindBeanDefinition, b.name, "both init callback and init method %q declared", b.initName)
	}
	if b.destroyFn != nil && b.destroyName != "" {
		return newError(KindBeanDefinition, b.name, "both destroy callback and destroy method %q declared", b.destroyName)
	}
	for _, hook := range []string{b.initName, b.destroyName} {
		if hook == "" {
			continue
		}
		if m, ok := b.typ.MethodByName(hook); ok {
			if err := checkHook(b.name, hook, m.Type, b.typ.Kind() != reflect.Interface); err != nil {
				return err
			}
		}
	}
	for _, s := range b.setters {
		if s.method == "" {
			return newError(KindBeanDefinition, b.name, "setter without a method name")
		}
		m, ok := b.typ.MethodByName(s.method)
		if !ok {
			if b.typ.Kind() == reflect.Interface {
				continue
			}
			return newError(KindBeanDefinition, b.name, "setter %s not found on %v", s.method, b.typ)
		}
		in := m.Type.NumIn()
		if b.typ.Kind() != reflect.Interface {
			in--
		}
		if in != 1 {
			return newError(KindBeanDefinition, b.name, "setter %s must take exactly one argument, takes %d", s.method, in)
		}
	}
	if _, err := metaFor(b.typ); err != nil {
		return wrapError(KindBeanDefinition, b.name, err, "invalid injection points on %v", b.typ)
	}
	return nil
}

// checkFunc validates a constructor (skip 0) or a factory method expression
// (skip 1, the receiver) against the declared params.
func (b *Blueprint) checkFunc(what string, skip int) error {
	if !b.fn.IsValid() || b.fn.Kind() != reflect.Func || b.fn.IsNil() {
		return newError(KindBeanDefinition, b.name, "%s is not a function", what)
	}
	ft := b.fn.Type()
	if ft.IsVariadic() {
		return newError(KindBeanDefinition, b.name, "variadic %s is not supported", what)
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return newError(KindBeanDefinition, b.name, "%s must return T or (T, error)", what)
	}
	if ft.NumIn() < skip {
		return newError(KindBeanDefinition, b.name, "%s has no receiver", what)
	}
	if got := ft.NumIn() - skip; got != len(b.params) {
		return newError(KindBeanDefinition, b.name, "%s takes %d arguments, %d params declared", what, got, len(b.params))
	}
	for i, p := range b.params {
		arg := ft.In(i + skip)
		switch p.kind {
		case paramValue:
			if !config.CanConvert(arg) {
				return newError(KindBeanDefinition, b.name, "argument %d of type %v cannot take a config value", i, arg)
			}
		case paramRef, paramAuto:
			if b.configuration {
				return newError(KindBeanDefinition, b.name, "configuration beans only take value params, argument %d is %v", i, p)
			}
		}
	}
	return nil
}

// checkHook validates a named init/destroy method. Method types from a
// concrete type include the receiver.
func checkHook(bean, name string, mt reflect.Type, hasReceiver bool) error {
	in := mt.NumIn()
	if hasReceiver {
		in--
	}
	if in != 0 {
		return newError(KindBeanDefinition, bean, "hook %s must take no arguments, takes %d", name, in)
	}
	switch {
	case mt.NumOut() == 0:
	case mt.NumOut() == 1 && mt.Out(0) == errorType:
	default:
		return newError(KindBeanDefinition, bean, "hook %s must return nothing or error", name)
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.Slice, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// sameInstance compares identity for reference kinds and equality otherwise.
func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	return ta.Comparable() && a == b
}
