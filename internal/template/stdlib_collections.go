package template

import "fmt"

// registerCollectionHelpers wires uniq/flatten/group_by as small,
// hand-rolled utility functions.
func (r *Registry) registerCollectionHelpers(h map[string]HelperFunc) {
	h["uniq"] = func(env *Env, args []any) (any, error) {
		items, err := argSlice(args, 0)
		if err != nil {
			return nil, err
		}
		return uniqStable(items), nil
	}
	h["flatten"] = func(env *Env, args []any) (any, error) {
		items, err := argSlice(args, 0)
		if err != nil {
			return nil, err
		}
		return flattenOneLevel(items)
	}
	h["group_by"] = func(env *Env, args []any) (any, error) {
		items, err := argSlice(args, 0)
		if err != nil {
			return nil, err
		}
		attr, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		return groupBy(items, attr)
	}
}

func argSlice(args []any, i int) ([]any, error) {
	if i >= len(args) {
		return nil, errArgCount(i)
	}
	s, ok := args[i].([]any)
	if !ok {
		return nil, errArgType(i, "list", args[i])
	}
	return s, nil
}

// uniqStable de-duplicates items preserving first-seen order, comparing by
// their JSON/string rendering (matching Stringify's own notion of identity
// for structured values).
func uniqStable(items []any) []any {
	seen := make(map[string]struct{}, len(items))
	out := make([]any, 0, len(items))
	for _, item := range items {
		key := stringify(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// flattenOneLevel flattens exactly one level of nested sequences; a scalar
// element is rejected, since only sequences are flattenable.
func flattenOneLevel(items []any) ([]any, error) {
	out := make([]any, 0, len(items))
	for i, item := range items {
		nested, ok := item.([]any)
		if !ok {
			return nil, fmt.Errorf("flatten: element %d is not a sequence (got %T)", i, item)
		}
		out = append(out, nested...)
	}
	return out, nil
}

// groupBy partitions items by the named attribute; within each group items
// keep their input order, but the result is a map, so the first-seen order of
// the keys is not kept. A missing or empty attribute value on any item is an
// error.
func groupBy(items []any, attr string) (map[string]any, error) {
	order := make([]string, 0)
	groups := make(map[string][]any)
	for i, item := range items {
		val, err := indexField(item, attr)
		if err != nil {
			return nil, fmt.Errorf("group_by: element %d: %w", i, err)
		}
		key := stringify(val)
		if key == "" {
			return nil, fmt.Errorf("group_by: element %d has an empty %q attribute", i, attr)
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}
	out := make(map[string]any, len(order))
	for _, key := range order {
		out[key] = groups[key]
	}
	// order itself is discarded here: Go's map[string]any can't preserve
	// iteration order, so key order only survives for callers that already
	// know which keys to look up (group_by's primary use).
	return out, nil
}
