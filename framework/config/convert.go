package config

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ── Converter table ───────────────────────────────────────────────────────────

type converter func(s string, t reflect.Type) (any, error)

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
	locationType = reflect.TypeFor[*time.Location]()
)

// converters is fixed; named types with a supported underlying kind are
// handled by kind in lookupConverter.
var converters = map[reflect.Type]converter{
	durationType: toDuration,
	timeType:     toTime,
	locationType: toLocation,
}

var kindConverters = map[reflect.Kind]converter{
	reflect.String:  toString,
	reflect.Bool:    toBool,
	reflect.Int:     toInt,
	reflect.Int8:    toInt,
	reflect.Int16:   toInt,
	reflect.Int32:   toInt,
	reflect.Int64:   toInt,
	reflect.Uint:    toUint,
	reflect.Uint8:   toUint,
	reflect.Uint16:  toUint,
	reflect.Uint32:  toUint,
	reflect.Uint64:  toUint,
	reflect.Float32: toFloat,
	reflect.Float64: toFloat,
}

func lookupConverter(t reflect.Type) (converter, bool) {
	if t == nil {
		return nil, false
	}
	if c, ok := converters[t]; ok {
		return c, true
	}
	c, ok := kindConverters[t.Kind()]
	return c, ok
}

// CanConvert reports whether Convert supports t.
func CanConvert(t reflect.Type) bool {
	_, ok := lookupConverter(t)
	return ok
}

// Convert turns a resolved string into a value of type t.
//
//	v, err := config.Convert("PT15M", reflect.TypeFor[time.Duration]())  // 15m0s
func Convert(value string, t reflect.Type) (any, error) {
	c, ok := lookupConverter(t)
	if !ok {
		return nil, &Error{Kind: KindConversion, Value: value, Target: t, Cause: errors.New("unsupported type")}
	}
	out, err := c(strings.TrimSpace(value), t)
	if err != nil {
		return nil, &Error{Kind: KindConversion, Value: value, Target: t, Cause: err}
	}
	return out, nil
}

func toString(s string, t reflect.Type) (any, error) {
	return reflect.ValueOf(s).Convert(t).Interface(), nil
}

func toBool(s string, t reflect.Type) (any, error) {
	b, err := cast.ToBoolE(s)
	if err != nil {
		return nil, err
	}
	return reflect.ValueOf(b).Convert(t).Interface(), nil
}

func toInt(s string, t reflect.Type) (any, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if n, err = cast.ToInt64E(s); err != nil {
			return nil, err
		}
	}
	v := reflect.New(t).Elem()
	if v.OverflowInt(n) {
		return nil, errOutOfRange
	}
	v.SetInt(n)
	return v.Interface(), nil
}

func toUint(s string, t reflect.Type) (any, error) {
	if strings.HasPrefix(s, "-") {
		return nil, errors.New("negative value for unsigned type")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		if n, err = cast.ToUint64E(s); err != nil {
			return nil, err
		}
	}
	v := reflect.New(t).Elem()
	if v.OverflowUint(n) {
		return nil, errOutOfRange
	}
	v.SetUint(n)
	return v.Interface(), nil
}

func toFloat(s string, t reflect.Type) (any, error) {
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return nil, err
	}
	v := reflect.New(t).Elem()
	if v.OverflowFloat(f) {
		return nil, errOutOfRange
	}
	v.SetFloat(f)
	return v.Interface(), nil
}

// toTime accepts the layouts cast understands, a bare clock time, and an
// ISO zoned form with a trailing "[Zone/Id]".
func toTime(s string, _ reflect.Type) (any, error) {
	if i := strings.IndexByte(s, '['); i > 0 && strings.HasSuffix(s, "]") {
		loc, err := time.LoadLocation(s[i+1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, s[:i])
		if err != nil {
			return nil, err
		}
		return t.In(loc), nil
	}
	if t, err := time.Parse(time.TimeOnly, s); err == nil {
		return t, nil
	}
	return cast.ToTimeE(s)
}

var errOutOfRange = errors.New("value out of range")

var isoDuration = regexp.MustCompile(`^(-)?P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// toDuration accepts Go syntax ("1h30m") and ISO-8601 ("PT1H30M", "P2DT3H").
func toDuration(s string, _ reflect.Type) (any, error) {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(s))
	if m == nil || s == "P" || strings.HasSuffix(strings.ToUpper(s), "T") {
		return cast.ToDurationE(s)
	}
	var d time.Duration
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute}
	for i, unit := range units {
		if m[i+2] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+2], 10, 64)
		if err != nil {
			return nil, err
		}
		if n > math.MaxInt64/int64(unit) {
			return nil, errOutOfRange
		}
		if d, err = addDuration(d, time.Duration(n)*unit); err != nil {
			return nil, err
		}
	}
	if m[5] != "" {
		secs, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			return nil, err
		}
		ns := secs * float64(time.Second)
		if ns >= math.MaxInt64 {
			return nil, errOutOfRange
		}
		if d, err = addDuration(d, time.Duration(ns)); err != nil {
			return nil, err
		}
	}
	if m[1] == "-" {
		d = -d
	}
	return d, nil
}

// addDuration adds two non-negative durations.
func addDuration(a, b time.Duration) (time.Duration, error) {
	if b > math.MaxInt64-a {
		return 0, errOutOfRange
	}
	return a + b, nil
}

func toLocation(s string, _ reflect.Type) (any, error) {
	return time.LoadLocation(s)
}
