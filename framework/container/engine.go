package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/config"
)

// creation is the traversal state of one start: the names currently under
// construction, in call order.
type creation struct {
	path []string
}

func (cr *creation) enter(name string) error {
	for i, n := range cr.path {
		if n == name {
			cycle := append(append([]string(nil), cr.path[i:]...), name)
			return newError(KindCircularDependency, name, "circular dependency: %s", strings.Join(cycle, " -> "))
		}
	}
	cr.path = append(cr.path, name)
	return nil
}

func (cr *creation) leave() { cr.path = cr.path[:len(cr.path)-1] }

// ── Creation ──────────────────────────────────────────────────────────────────

// create builds bp and its dependencies. An instantiated blueprint is
// returned as is.
func (c *Container) create(bp *Blueprint, cr *creation) (any, error) {
	if bp.state == StateInstantiated {
		return bp.instance, nil
	}
	if err := cr.enter(bp.name); err != nil {
		return nil, err
	}
	defer cr.leave()
	bp.state = StateConstructing
	defer func() {
		if bp.state == StateConstructing {
			bp.state = StateRegistered
		}
	}()

	var args []reflect.Value
	ft := bp.fn.Type()
	skip := 0
	if bp.strategy == strategyFactory {
		recv, err := c.factoryReceiver(bp, ft.In(0), cr)
		if err != nil {
			return nil, err
		}
		args = append(args, recv)
		skip = 1
	}
	for i, p := range bp.params {
		v, err := c.resolveParam(bp.name, p, ft.In(i+skip), cr)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	out, err := invoke(bp.fn, args)
	if err == nil && len(out) == 2 {
		err = errorResult(out[1])
	}
	if err != nil {
		return nil, wrapError(KindBeanCreation, bp.name, err, "create bean of type %v", bp.typ)
	}
	raw := out[0].Interface()
	if err := bp.setInstance(raw); err != nil {
		return nil, err
	}
	c.logger.Debug("bean created", zap.String("bean", bp.name), zap.String("type", bp.typ.String()))

	sub, err := c.pipeline.apply(bp, raw, beforeInitHook, "before-init")
	if err != nil {
		return nil, err
	}
	if !sameInstance(sub, raw) {
		c.origins[bp.name] = raw
		bp.instance = sub
		c.logger.Debug("bean substituted", zap.String("bean", bp.name), zap.String("type", fmt.Sprintf("%T", sub)))
	}
	return bp.instance, nil
}

// factoryReceiver returns the factory bean's live instance, or its original
// when a substitute cannot serve as the method receiver.
func (c *Container) factoryReceiver(bp *Blueprint, recvType reflect.Type, cr *creation) (reflect.Value, error) {
	factory, ok := c.registry.FindByName(bp.factoryBean)
	if !ok {
		return reflect.Value{}, newError(KindBeanDefinition, bp.name, "factory bean %q not found", bp.factoryBean)
	}
	inst, err := c.create(factory, cr)
	if err != nil {
		return reflect.Value{}, err
	}
	if v := reflect.ValueOf(inst); v.Type().AssignableTo(recvType) {
		return v, nil
	}
	if origin, ok := c.origins[factory.name]; ok {
		if v := reflect.ValueOf(origin); v.Type().AssignableTo(recvType) {
			return v, nil
		}
	}
	return reflect.Value{}, newError(KindBeanDefinition, bp.name, "factory bean %q of type %T cannot receive %v", factory.name, inst, recvType)
}

// resolveParam produces the value of one argument or field of type t.
func (c *Container) resolveParam(bean string, p Param, t reflect.Type, cr *creation) (reflect.Value, error) {
	switch p.kind {
	case paramValue:
		return c.resolveValue(bean, p, t)
	case paramRef:
		dep, err := c.registry.FindByNameAndType(p.ref, t)
		if errors.Is(err, ErrNoSuchBean) {
			return c.unresolved(bean, p, t, err)
		}
		if err != nil {
			return reflect.Value{}, err
		}
		return c.dependency(dep, t, cr)
	default:
		dep, err := c.registry.FindByType(t)
		if err != nil {
			return reflect.Value{}, err
		}
		if dep == nil {
			return c.unresolved(bean, p, t, noBeanOfType(t))
		}
		return c.dependency(dep, t, cr)
	}
}

func (c *Container) resolveValue(bean string, p Param, t reflect.Type) (reflect.Value, error) {
	v, err := c.resolver.GetRequiredTyped(p.expr, t)
	if errors.Is(err, config.ErrMissing) {
		if p.optional {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, wrapError(KindMissingConfig, bean, err, "missing config %s", p.expr)
	}
	if err != nil {
		return reflect.Value{}, wrapError(KindBeanCreation, bean, err, "resolve config %s", p.expr)
	}
	return reflect.ValueOf(v), nil
}

// dependency builds dep when needed and returns its live instance. A failure
// of dep's own construction propagates unchanged.
func (c *Container) dependency(dep *Blueprint, t reflect.Type, cr *creation) (reflect.Value, error) {
	inst, err := c.create(dep, cr)
	if err != nil {
		return reflect.Value{}, err
	}
	v := reflect.ValueOf(inst)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, newError(KindTypeMismatch, dep.name, "live instance %T is not assignable to %v", inst, t)
	}
	if t.Kind() == reflect.Interface {
		iv := reflect.New(t).Elem()
		iv.Set(v)
		return iv, nil
	}
	return v, nil
}

func (c *Container) unresolved(bean string, p Param, t reflect.Type, cause error) (reflect.Value, error) {
	if p.optional {
		return reflect.Zero(t), nil
	}
	return reflect.Value{}, wrapError(KindUnsatisfiedDependency, bean, cause, "unsatisfied dependency %v of type %v", p, t)
}
