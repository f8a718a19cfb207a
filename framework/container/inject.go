package container

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/config"
)

// ── Injection metadata ────────────────────────────────────────────────────────

// Struct tags marking injection points:
//
//	type Service struct {
//	    Title string       `value:"${app.title:Winter}"`
//	    Repo  *Repo        `inject:"repo"`
//	    Cache Cache        `inject:",optional"`   // by type
//	}
const (
	tagValue  = "value"
	tagInject = "inject"
)

type fieldPoint struct {
	index []int
	name  string
	typ   reflect.Type
	param Param
}

type typeMeta struct {
	fields []fieldPoint
}

type metaEntry struct {
	meta *typeMeta
	err  error
}

var metaCache sync.Map // reflect.Type → metaEntry

// metaFor returns the cached injection table of t. Pointers to structs and
// structs have fields; every other type has an empty table.
func metaFor(t reflect.Type) (*typeMeta, error) {
	if t == nil {
		return &typeMeta{}, nil
	}
	if v, ok := metaCache.Load(t); ok {
		e := v.(metaEntry)
		return e.meta, e.err
	}
	meta := &typeMeta{}
	st := t
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	}
	var err error
	if st.Kind() == reflect.Struct {
		err = collectFields(st, nil, meta)
	}
	if err != nil {
		meta = nil
	}
	metaCache.Store(t, metaEntry{meta: meta, err: err})
	return meta, err
}

// collectFields walks st and every embedded struct.
func collectFields(st reflect.Type, prefix []int, meta *typeMeta) error {
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		index := append(append([]int(nil), prefix...), i)

		valueExpr, hasValue := f.Tag.Lookup(tagValue)
		injectSpec, hasInject := f.Tag.Lookup(tagInject)

		if !hasValue && !hasInject {
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				if err := collectFields(f.Type, index, meta); err != nil {
					return err
				}
			}
			continue
		}
		if hasValue && hasInject {
			return fmt.Errorf("field %s.%s has both value and inject tags", st.Name(), f.Name)
		}
		if !f.IsExported() {
			return fmt.Errorf("field %s.%s is unexported and cannot be injected", st.Name(), f.Name)
		}
		point := fieldPoint{index: index, name: f.Name, typ: f.Type}
		if hasValue {
			if !config.CanConvert(f.Type) {
				return fmt.Errorf("field %s.%s of type %v cannot take a config value", st.Name(), f.Name, f.Type)
			}
			point.param = Value(valueExpr)
		} else {
			point.param = parseInjectTag(injectSpec)
		}
		meta.fields = append(meta.fields, point)
	}
	return nil
}

// parseInjectTag reads "name[,optional]"; an empty name injects by type.
func parseInjectTag(spec string) Param {
	name, opts, _ := strings.Cut(spec, ",")
	p := Auto()
	if name = strings.TrimSpace(name); name != "" {
		p = Ref(name)
	}
	for _, opt := range strings.Split(opts, ",") {
		if strings.TrimSpace(opt) == "optional" {
			p = p.Optional()
		}
	}
	return p
}

// ── Injection ─────────────────────────────────────────────────────────────────

// injectTarget returns the object that receives injection: the pipeline's
// resolved original, or the stashed pre-substitution instance when the
// resolvers leave the substitute in place.
func (c *Container) injectTarget(bp *Blueprint) any {
	live := bp.instance
	target := c.pipeline.resolveOriginal(live, bp.name)
	if sameInstance(target, live) {
		if origin, ok := c.origins[bp.name]; ok {
			return origin
		}
	}
	return target
}

// inject sets tagged fields and calls declared setters on the original.
func (c *Container) inject(bp *Blueprint, cr *creation) error {
	target := c.injectTarget(bp)
	rt := reflect.TypeOf(target)

	meta, err := metaFor(rt)
	if err != nil {
		return wrapError(KindBeanDefinition, bp.name, err, "invalid injection points on %v", rt)
	}
	if len(meta.fields) > 0 {
		rv := reflect.ValueOf(target)
		if rv.Kind() != reflect.Ptr {
			return newError(KindBeanDefinition, bp.name, "%v has injection points but is not a pointer", rt)
		}
		elem := rv.Elem()
		for _, fp := range meta.fields {
			v, err := c.resolveParam(bp.name, fp.param, fp.typ, cr)
			if err != nil {
				return err
			}
			elem.FieldByIndex(fp.index).Set(v)
			c.logger.Debug("field injected", zap.String("bean", bp.name), zap.String("field", fp.name))
		}
	}

	for _, s := range bp.setters {
		if err := c.callSetter(bp, target, s, cr); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) callSetter(bp *Blueprint, target any, s setterPoint, cr *creation) error {
	rv := reflect.ValueOf(target)
	m := rv.MethodByName(s.method)
	if !m.IsValid() {
		return newError(KindBeanDefinition, bp.name, "setter %s not found on %T", s.method, target)
	}
	mt := m.Type()
	if mt.NumIn() != 1 {
		return newError(KindBeanDefinition, bp.name, "setter %s must take exactly one argument, takes %d", s.method, mt.NumIn())
	}
	if rv.Kind() == reflect.Ptr {
		if _, ok := rv.Elem().Type().MethodByName(s.method); ok {
			c.logger.Warn("setter has a value receiver, changes will not reach the bean",
				zap.String("bean", bp.name), zap.String("setter", s.method))
		}
	}
	arg, err := c.resolveParam(bp.name, s.param, mt.In(0), cr)
	if err != nil {
		return err
	}
	out, err := invoke(m, []reflect.Value{arg})
	if err == nil && len(out) > 0 {
		err = errorResult(out[len(out)-1])
	}
	if err != nil {
		return wrapError(KindBeanCreation, bp.name, err, "setter %s failed", s.method)
	}
	return nil
}

// ── Lifecycle hooks ───────────────────────────────────────────────────────────

// initialize runs the init hook on the live instance, then AfterInit.
func (c *Container) initialize(bp *Blueprint) error {
	if err := c.runHook(bp, bp.initFn, bp.initName, "init", func(v any) (func() error, bool) {
		i, ok := v.(Initializer)
		if !ok {
			return nil, false
		}
		return i.Init, true
	}); err != nil {
		return err
	}

	before := bp.instance
	out, err := c.pipeline.apply(bp, before, afterInitHook, "after-init")
	if err != nil {
		return err
	}
	if !sameInstance(out, before) {
		if _, ok := c.origins[bp.name]; !ok {
			c.origins[bp.name] = before
		}
		bp.instance = out
		c.logger.Debug("bean substituted after init", zap.String("bean", bp.name), zap.String("type", fmt.Sprintf("%T", out)))
	}
	return nil
}

// destroy runs the destroy hook on the live instance.
func (c *Container) destroy(bp *Blueprint) error {
	return c.runHook(bp, bp.destroyFn, bp.destroyName, "destroy", func(v any) (func() error, bool) {
		d, ok := v.(Destroyer)
		if !ok {
			return nil, false
		}
		return d.Destroy, true
	})
}

// runHook resolves a hook in priority order: bound callback, named method,
// then the discovered capability. Named methods and capabilities are looked
// up on the live instance first and on the original second.
func (c *Container) runHook(bp *Blueprint, fn func(any) error, method, stage string, discover func(any) (func() error, bool)) error {
	live := bp.instance
	if live == nil {
		return nil
	}
	var call func() error
	switch {
	case fn != nil:
		call = func() error { return fn(live) }
	case method != "":
		m, err := lookupHook(bp, method, c.candidates(bp))
		if err != nil {
			return err
		}
		call = func() error {
			out, err := invoke(m, nil)
			if err != nil {
				return err
			}
			if len(out) == 1 {
				return errorResult(out[0])
			}
			return nil
		}
	default:
		for _, v := range c.candidates(bp) {
			if f, ok := discover(v); ok {
				call = f
				break
			}
		}
	}
	if call == nil {
		return nil
	}
	c.logger.Debug("running "+stage+" hook", zap.String("bean", bp.name))
	if err := safeCall(call); err != nil {
		return wrapError(KindBeanCreation, bp.name, err, "%s hook failed", stage)
	}
	return nil
}

// candidates returns the live instance and, when substituted, its original.
func (c *Container) candidates(bp *Blueprint) []any {
	out := []any{bp.instance}
	if origin, ok := c.origins[bp.name]; ok && !sameInstance(origin, bp.instance) {
		out = append(out, origin)
	}
	return out
}

func lookupHook(bp *Blueprint, method string, candidates []any) (reflect.Value, error) {
	for _, v := range candidates {
		m := reflect.ValueOf(v).MethodByName(method)
		if !m.IsValid() {
			continue
		}
		if err := checkHook(bp.name, method, m.Type(), false); err != nil {
			return reflect.Value{}, err
		}
		return m, nil
	}
	return reflect.Value{}, newError(KindBeanDefinition, bp.name, "hook method %s not found on %T", method, bp.instance)
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// invoke calls fn, converting a panic into an error.
func invoke(fn reflect.Value, args []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn.Call(args), nil
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func errorResult(v reflect.Value) error {
	if v.Type() != errorType || v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
