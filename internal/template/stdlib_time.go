package template

import (
	"fmt"
	"time"
)

// Clock is an injectable time source, for testability.
var Clock = time.Now

// Timestamp wraps a time.Time so its ISO-8601 string is what expression
// interpolation stringifies it to.
type Timestamp struct {
	time.Time
}

// String renders the timestamp as ISO-8601, satisfying fmt.Stringer so
// Stringify renders it directly rather than via %v.
func (t Timestamp) String() string { return t.Format(time.RFC3339) }

// registerTimeHelpers wires now(offset?) and timedelta(...).
func registerTimeHelpers(h map[string]HelperFunc) {
	h["now"] = func(env *Env, args []any) (any, error) {
		env.MarkImpure()
		t := Clock()
		if len(args) > 0 {
			offset, ok := args[0].(time.Duration)
			if !ok {
				return nil, fmt.Errorf("now: offset must be a duration (from timedelta)")
			}
			t = t.Add(offset)
		}
		return Timestamp{t}, nil
	}
	h["timedelta"] = func(env *Env, args []any) (any, error) {
		return timedelta(args)
	}
}

// timedelta builds a time.Duration from named components passed as
// (key, value) pairs, with overflow detection.
func timedelta(args []any) (time.Duration, error) {
	var total time.Duration
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return 0, fmt.Errorf("timedelta: argument %d must be a component name", i)
		}
		n, ok := toFloat(args[i+1])
		if !ok {
			return 0, fmt.Errorf("timedelta: value for %q must be numeric", key)
		}
		var unit time.Duration
		switch key {
		case "days":
			unit = 24 * time.Hour
		case "hours":
			unit = time.Hour
		case "minutes":
			unit = time.Minute
		case "seconds":
			unit = time.Second
		case "milliseconds":
			unit = time.Millisecond
		case "microseconds":
			unit = time.Microsecond
		case "nanoseconds":
			unit = time.Nanosecond
		default:
			return 0, fmt.Errorf("timedelta: unknown component %q", key)
		}
		contribution := time.Duration(n * float64(unit))
		next := total + contribution
		if (contribution > 0 && next < total) || (contribution < 0 && next > total) {
			return 0, fmt.Errorf("timedelta: overflow")
		}
		total = next
	}
	return total, nil
}
