package core

import (
	"maps"
	"strings"
)

// ResolveFlow turns step templates into steps addressed against baseURL, in
// declaration order. Templates are not modified; every resolved step gets its
// own copies of the template maps.
func ResolveFlow(templates []StepTemplate, baseURL string) ([]ResolvedStep, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, &ConfigError{Field: "base_url", Reason: "base address is empty"}
	}

	resolved := make([]ResolvedStep, 0, len(templates))
	for _, tmpl := range templates {
		resolved = append(resolved, ResolvedStep{
			Name:    tmpl.Name,
			Method:  tmpl.Method,
			URL:     JoinURL(baseURL, tmpl.Endpoint),
			Body:    copyValue(tmpl.Body),
			Params:  maps.Clone(tmpl.Params),
			Headers: maps.Clone(tmpl.Headers),
		})
	}
	return resolved, nil
}

// JoinURL joins base and endpoint with exactly one "/" between them. Nothing
// is escaped or validated.
func JoinURL(base, endpoint string) string {
	base = strings.TrimRight(base, "/")
	if endpoint == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(endpoint, "/")
}

// copyValue deep-copies the map/slice structure of a decoded YAML or JSON body.
func copyValue[T any](v T) T {
	out, _ := copyAny(v).(T)
	return out
}

func copyAny(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		if typed == nil {
			return typed
		}
		out := make(map[string]any, len(typed))
		for k, vv := range typed {
			out[k] = copyAny(vv)
		}
		return out
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, vv := range typed {
			out[i] = copyAny(vv)
		}
		return out
	default:
		return v
	}
}
