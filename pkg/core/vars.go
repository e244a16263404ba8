package core

import "strings"

// Placeholders recognized in step URLs, headers, params and body values.
const (
	PlaceholderUserID    = "{userId}"
	PlaceholderPassword  = "{password}"
	PlaceholderStartDate = "{startDate}"
	PlaceholderEndDate   = "{endDate}"
	PlaceholderToken     = "{token}"
)

// Resolver rewrites a single string.
type Resolver func(string) string

// credentialResolver replaces credential and date placeholders, one after the
// other, in a fixed order.
func credentialResolver(shared *SharedContext) Resolver {
	pairs := [][2]string{
		{PlaceholderUserID, shared.UserID},
		{PlaceholderPassword, shared.Password},
		{PlaceholderStartDate, shared.StartDate},
		{PlaceholderEndDate, shared.EndDate},
	}
	return func(s string) string {
		for _, p := range pairs {
			s = strings.ReplaceAll(s, p[0], p[1])
		}
		return s
	}
}

func tokenResolver(token string) Resolver {
	return func(s string) string {
		return strings.ReplaceAll(s, PlaceholderToken, token)
	}
}

// SubstituteStep returns a copy of step with placeholders replaced from
// shared. Credentials and dates are always replaced; {token} is replaced only
// once a token has been extracted and is otherwise left as written. Neither
// step nor shared is modified.
func SubstituteStep(step ResolvedStep, shared *SharedContext) ResolvedStep {
	out := applyResolver(step, credentialResolver(shared))
	if token, ok := shared.Token(); ok {
		out = applyResolver(out, tokenResolver(token))
	}
	return out
}

func applyResolver(step ResolvedStep, resolve Resolver) ResolvedStep {
	out := ResolvedStep{
		Name:    step.Name,
		Method:  step.Method,
		URL:     resolve(step.URL),
		Params:  resolveStringMap(step.Params, resolve),
		Headers: resolveStringMap(step.Headers, resolve),
	}
	if step.Body != nil {
		out.Body, _ = ResolveValue(step.Body, resolve).(map[string]any)
	}
	return out
}

func resolveStringMap(m map[string]string, resolve Resolver) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = resolve(v)
	}
	return out
}

// ResolveValue walks maps and slices, rewriting every string it finds.
// Other values are returned as is. The result never shares containers with
// the input.
func ResolveValue(value any, resolve Resolver) any {
	switch v := value.(type) {
	case string:
		return resolve(v)
	case map[string]any:
		resolvedMap := make(map[string]any, len(v))
		for key, val := range v {
			resolvedMap[key] = ResolveValue(val, resolve)
		}
		return resolvedMap
	case []any:
		resolvedSlice := make([]any, len(v))
		for i, item := range v {
			resolvedSlice[i] = ResolveValue(item, resolve)
		}
		return resolvedSlice
	default:
		return v
	}
}
