// Package util holds the stateless helpers shared by the request builder and
// the response normalizer: object introspection and query-string encoding.
package util

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
)

// IsObject reports whether v is a non-primitive value: a map, struct, slice,
// array, or a pointer to one of those.
func IsObject(v any) bool {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return false
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// Size returns the number of keys of a map, the number of exported fields of
// a struct, or the length of a slice, array or string. Anything else is 0.
func Size(v any) int {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return 0
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len()
	case reflect.Struct:
		n := 0
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).IsExported() {
				n++
			}
		}
		return n
	default:
		return 0
	}
}

// Serialize percent-encodes an object-like value into "key=value" pairs
// joined with "&". Keys are emitted in sorted order. Structs are flattened
// through their `url` tags. Non-object input yields an empty string.
func Serialize(v any) string {
	if !IsObject(v) {
		return ""
	}

	values, err := toValues(v)
	if err != nil {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sortKeys(keys)

	var pairs []string
	for _, k := range keys {
		for _, val := range values[k] {
			pairs = append(pairs, EncodeComponent(k)+"="+EncodeComponent(val))
		}
	}

	return strings.Join(pairs, "&")
}

// Unserialize decodes a query string into a map. Each pair is split on its
// first "=", a pair without "=" maps to an empty value, and the last
// duplicate key wins. Only percent escapes are decoded; "+" stays literal.
func Unserialize(s string) (map[string]string, error) {
	formatted := make(map[string]string)

	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}

		rawKey, rawVal, _ := strings.Cut(pair, "=")

		key, err := url.PathUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("decode key %q: %w", rawKey, err)
		}
		val, err := url.PathUnescape(rawVal)
		if err != nil {
			return nil, fmt.Errorf("decode value of %q: %w", key, err)
		}

		formatted[key] = val
	}

	return formatted, nil
}

// EncodeComponent escapes s for use as a query key or value. Spaces become
// %20 rather than "+".
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func toValues(v any) (url.Values, error) {
	if values, ok := v.(url.Values); ok {
		return values, nil
	}

	rv := indirect(reflect.ValueOf(v))
	values := make(url.Values)

	switch rv.Kind() {
	case reflect.Struct:
		return query.Values(v)
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			key := stringify(iter.Key().Interface())
			values.Set(key, stringify(iter.Value().Interface()))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			values.Set(strconv.Itoa(i), stringify(rv.Index(i).Interface()))
		}
	}

	return values, nil
}

// stringify renders a scalar the way it reads in a query string. Lists are
// joined with commas.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = stringify(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}

	return fmt.Sprint(v)
}

// sortKeys orders keys lexically, or numerically when every key is an index.
func sortKeys(keys []string) {
	indexes := make([]int, len(keys))
	for i, k := range keys {
		n, err := strconv.Atoi(k)
		if err != nil {
			sort.Strings(keys)
			return
		}
		indexes[i] = n
	}

	sort.Ints(indexes)
	for i, n := range indexes {
		keys[i] = strconv.Itoa(n)
	}
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
