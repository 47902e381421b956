package jinja

import (
	"fmt"
	"sort"
	"strings"
)

// FilterFunc defines the signature for a filter function.
// input is the value to be filtered; args and kwargs are the evaluated
// positional and keyword arguments from the template.
type FilterFunc func(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error)

// Filters stores the registered filter functions.
var Filters = map[string]FilterFunc{
	"sort":    sortFilter,
	"length":  lengthFilter,
	"count":   lengthFilter,
	"default": defaultFilter,
	"join":    joinFilter,
	"upper":   upperFilter,
	"lower":   lowerFilter,
	"trim":    trimFilter,
	"first":   firstFilter,
	"last":    lastFilter,
}

// sortFilter implements the 'sort' filter over sequences.
// Usage: {{ methods | sort(attribute='name') }}
// The sort is stable, so elements with equal keys keep their original
// relative order. Strings order by code point, numbers numerically. Without
// an attribute the elements themselves are the keys. A 'reverse=true'
// keyword inverts the order.
func sortFilter(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if isNone(input) {
		return []interface{}{}, nil
	}
	items, ok := toList(input)
	if !ok {
		return nil, fmt.Errorf("sort requires a sequence, got %T", input)
	}

	attribute := ""
	if attr, ok := kwargs["attribute"]; ok {
		s, ok := attr.(string)
		if !ok {
			return nil, fmt.Errorf("sort attribute must be a string, got %T", attr)
		}
		attribute = s
	}
	reverse := false
	if rev, ok := kwargs["reverse"]; ok {
		reverse = isTruthy(rev)
	}

	keyOf := func(v interface{}) interface{} {
		if attribute == "" {
			return v
		}
		return attrOf(v, attribute)
	}

	out := make([]interface{}, len(items))
	copy(out, items)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		cmp, ok := compareValues(keyOf(out[i]), keyOf(out[j]))
		if !ok && sortErr == nil {
			sortErr = fmt.Errorf("cannot order %T and %T", keyOf(out[i]), keyOf(out[j]))
		}
		if reverse {
			return cmp > 0
		}
		return cmp < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

// lengthFilter implements the 'length' filter: element count for sequences
// and mappings, character count for strings, 0 for none/undefined.
// Usage: {% if signals | length != 0 %}
func lengthFilter(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	n, ok := lengthOf(input)
	if !ok {
		return nil, fmt.Errorf("object of type %T has no length", input)
	}
	return n, nil
}

// defaultFilter implements the 'default' filter: the fallback replaces a
// falsy input value.
// Usage: {{ summary | default('No summary.') }}
func defaultFilter(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("default requires a fallback argument")
	}
	if !isTruthy(input) {
		return args[0], nil
	}
	return input, nil
}

// joinFilter implements the 'join' filter.
// Usage: {{ names | join(', ') }}
func joinFilter(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if isNone(input) {
		return "", nil
	}
	items, ok := toList(input)
	if !ok {
		return nil, fmt.Errorf("join requires a sequence, got %T", input)
	}
	separator := ""
	if len(args) > 0 {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("join separator must be a string, got %T", args[0])
		}
		separator = s
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = formatValue(item)
	}
	return strings.Join(parts, separator), nil
}

// upperFilter converts a string to uppercase.
func upperFilter(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	return strings.ToUpper(formatValue(input)), nil
}

// lowerFilter converts a string to lowercase.
func lowerFilter(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	return strings.ToLower(formatValue(input)), nil
}

// trimFilter strips surrounding whitespace, or a given cutset.
func trimFilter(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s := formatValue(input)
	if len(args) == 0 {
		return strings.TrimSpace(s), nil
	}
	cutset, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("trim cutset must be a string, got %T", args[0])
	}
	return strings.Trim(s, cutset), nil
}

// firstFilter returns the first element of a sequence, or Undefined when the
// sequence is empty.
func firstFilter(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	items, ok := toList(input)
	if !ok {
		return nil, fmt.Errorf("first requires a sequence, got %T", input)
	}
	if len(items) == 0 {
		return Undefined, nil
	}
	return items[0], nil
}

// lastFilter returns the last element of a sequence, or Undefined when the
// sequence is empty.
func lastFilter(input interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	items, ok := toList(input)
	if !ok {
		return nil, fmt.Errorf("last requires a sequence, got %T", input)
	}
	if len(items) == 0 {
		return Undefined, nil
	}
	return items[len(items)-1], nil
}
