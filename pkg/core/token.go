package core

import "github.com/tidwall/gjson"

// tokenPaths lists where a bearer token may live in a response, highest
// priority first.
var tokenPaths = []string{
	"accessToken",
	"access_token",
	"token",
	"data.tokens.accessToken",
}

// ExtractToken looks for a token in a raw JSON response. Only objects are
// inspected. The first path holding a non-empty string wins; empty, null and
// non-string values are skipped.
func ExtractToken(raw []byte) (token string, path string, found bool) {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return "", "", false
	}
	for _, p := range tokenPaths {
		res := doc.Get(p)
		if res.Type != gjson.String || res.Str == "" {
			continue
		}
		return res.Str, p, true
	}
	return "", "", false
}
