// Package diagnose turns the log text of a failed run into a one-line,
// operator-facing guess at what went wrong. It only produces text; nothing
// in the run depends on its answer.
package diagnose

import "strings"

// Fallback is returned when no signature matches.
const Fallback = "Unknown error. Check the attached run.log for details."

type signature struct {
	// any one needle or code is enough, unless all is set.
	needles []string
	all     bool
	// codes match only as standalone numbers, so "1.401s" or a port like
	// ":40123" is not a 401.
	codes   []string
	message string
}

// signatures are checked in order; the first match wins.
var signatures = []signature{
	{
		codes:   []string{"401"},
		needles: []string{"Unauthorized"},
		message: "Authentication failed: the API rejected the credentials or token (401 Unauthorized).",
	},
	{
		needles: []string{"ConnectionError", "connection refused", "no such host", "network is unreachable"},
		message: "Network unreachable: could not connect to the API server.",
	},
	{
		needles: []string{"JSONDecodeError", "invalid character", "unexpected end of JSON input"},
		message: "Malformed response: the API returned data that could not be parsed.",
	},
	{
		needles: []string{"SMTPAuthenticationError", "535 "},
		message: "Mail server rejected the SMTP username or password.",
	},
	{
		needles: []string{"Timeout", "deadline exceeded"},
		message: "Request timed out: the API did not respond in time.",
	},
	{
		needles: []string{"FileNotFoundError", "no such file or directory"},
		message: "A required file was not found.",
	},
	{
		needles: []string{"KeyError", "missing field"},
		message: "An expected field was missing from an API response.",
	},
	{
		needles: []string{"Token", "WARNING"},
		all:     true,
		message: "No token was found in the login response; later requests were sent without one.",
	},
}

// Classify returns the diagnosis for the first signature found in logText.
func Classify(logText string) string {
	for _, sig := range signatures {
		if sig.matches(logText) {
			return sig.message
		}
	}
	return Fallback
}

func (s signature) matches(text string) bool {
	for _, c := range s.codes {
		if containsCode(text, c) {
			return true
		}
	}
	if s.all {
		for _, n := range s.needles {
			if !strings.Contains(text, n) {
				return false
			}
		}
		return true
	}
	for _, n := range s.needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// containsCode reports whether code appears in text with no digit, letter,
// '.' or ':' directly on either side.
func containsCode(text, code string) bool {
	for from := 0; ; {
		i := strings.Index(text[from:], code)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(code)
		if (start == 0 || !partOfNumber(text[start-1])) && (end == len(text) || !partOfNumber(text[end])) {
			return true
		}
		from = start + 1
	}
}

func partOfNumber(b byte) bool {
	return b == '.' || b == ':' ||
		('0' <= b && b <= '9') ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z')
}
