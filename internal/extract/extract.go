// Package extract pulls values out of JSON response bodies with JSONPath-style
// expressions, for chaining collection requests.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/jax/http"
)

// Value returns the value at path in body. Strings come back unquoted, every
// other type as its raw JSON text.
func Value(body, path string) (string, error) {
	if body == "" {
		return "", fmt.Errorf("empty JSON body")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.Valid(body) {
		return "", fmt.Errorf("body is not valid JSON")
	}

	result := gjson.Get(body, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	if result.Type == gjson.String {
		return result.Str, nil
	}
	return result.Raw, nil
}

// Values resolves every named path against body. Values that resolved are
// returned even when others failed.
func Values(body string, paths map[string]string) (map[string]string, error) {
	if len(paths) == 0 {
		return map[string]string{}, nil
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(paths))
	var failures []string
	for _, name := range names {
		value, err := Value(body, paths[name])
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		results[name] = value
	}

	if len(failures) > 0 {
		return results, fmt.Errorf("extraction errors: %s", strings.Join(failures, "; "))
	}
	return results, nil
}

// FromResponse resolves paths against the response body.
func FromResponse(resp *http.Response, paths map[string]string) (map[string]string, error) {
	if resp == nil {
		return nil, fmt.Errorf("no response to extract from")
	}
	return Values(resp.Text, paths)
}

// toGjsonPath rewrites $.users[0].name as users.0.name.
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	path = strings.NewReplacer(`['`, ".", `']`, "", `["`, ".", `"]`, "").Replace(path)
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	return strings.TrimPrefix(path, ".")
}
