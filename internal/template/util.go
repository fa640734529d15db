package template

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonOrSprint JSON-marshals maps/slices/arrays (so interpolated structured
// values read as valid JSON instead of Go's "map[foo:bar]") and falls back
// to fmt.Sprintf for everything else.
func jsonOrSprint(val any) string {
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", val)
}

// truthy implements the expression language's boolean coercion: false/nil/
// zero-value/empty-string/empty-collection are falsy, everything else is
// truthy.
func truthy(val any) bool {
	if val == nil {
		return false
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}
