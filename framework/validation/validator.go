package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds validation errors per field.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return e != nil && len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error joins every message, fields in ascending order.
func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var msgs []string
	for _, f := range fields {
		msgs = append(msgs, e.Bag[f]...)
	}
	return strings.Join(msgs, " ")
}

// ── Validator ────────────────────────────────────────────────────────────────

// Validator runs go-playground rules and renders readable messages.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator reporting fields by their json name when present.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s. It returns nil when s is valid.
//
//	if errs := v.Struct(cfg); errs != nil {
//	    res.ValidationError(errs)
//	}
func (v *Validator) Struct(s any) *Errors {
	return collect(v.v.Struct(s))
}

// Var validates one value against a rule string.
//
//	errs := v.Var("name", name, "required,alpha,max=32")
func (v *Validator) Var(field string, value any, rules string) *Errors {
	err := v.v.Var(value, rules)
	if err == nil {
		return nil
	}
	errs := &Errors{}
	if fes, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fes {
			errs.add(field, message(field, fe))
		}
		return errs
	}
	errs.add(field, err.Error())
	return errs
}

func collect(err error) *Errors {
	if err == nil {
		return nil
	}
	errs := &Errors{}
	fes, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.add("_", err.Error())
		return errs
	}
	for _, fe := range fes {
		field := fe.Field()
		errs.add(field, message(field, fe))
	}
	return errs
}

// message renders one failed rule.
func message(field string, fe validator.FieldError) string {
	param := fe.Param()
	sized := fe.Kind() == reflect.String || fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	} else if sized {
		unit = " items"
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "url", "http_url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "numeric", "number":
		return fmt.Sprintf("The %s must be a number.", field)
	case "boolean":
		return fmt.Sprintf("The %s field must be true or false.", field)
	case "alpha":
		return fmt.Sprintf("The %s may only contain letters.", field)
	case "alphanum":
		return fmt.Sprintf("The %s may only contain letters and numbers.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "len":
		return fmt.Sprintf("The %s must be %s%s.", field, param, unit)
	case "min":
		if sized {
			return fmt.Sprintf("The %s must be at least %s%s.", field, param, unit)
		}
		return fmt.Sprintf("The %s must be at least %s.", field, param)
	case "max":
		if sized {
			return fmt.Sprintf("The %s may not be greater than %s%s.", field, param, unit)
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, param)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	case "lt":
		return fmt.Sprintf("The %s must be less than %s.", field, param)
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	case "timezone":
		return fmt.Sprintf("The %s must be a valid zone.", field)
	}
	return fmt.Sprintf("The %s format is invalid.", field)
}
