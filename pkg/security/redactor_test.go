package security_test

import (
	"testing"

	"github.com/arnavsurve/dropreport/pkg/security"
	"github.com/stretchr/testify/assert"
)

func TestRedactor_Redact(t *testing.T) {
	tests := []struct {
		name    string
		secrets []string
		input   string
		want    string
	}{
		{
			name:    "exact match",
			secrets: []string{"supersecret"},
			input:   "The password is supersecret",
			want:    "The password is ********",
		},
		{
			name:    "multiple occurrences",
			secrets: []string{"abcdef"},
			input:   "Authorization: Bearer abcdef, retrying with abcdef",
			want:    "Authorization: Bearer ********, retrying with ********",
		},
		{
			name:    "multiple secrets",
			secrets: []string{"pass123", "key456"},
			input:   "Password: pass123, Token: key456",
			want:    "Password: ********, Token: ********",
		},
		{
			name:    "empty secret is skipped",
			secrets: []string{"", "valid"},
			input:   "Empty: , Valid: valid",
			want:    "Empty: , Valid: ********",
		},
		{
			name:    "no secrets returns original string",
			secrets: nil,
			input:   "Original string",
			want:    "Original string",
		},
		{
			name:    "overlapping secrets",
			secrets: []string{"secret", "supersecret"},
			input:   "This contains supersecret and secret values",
			want:    "This contains ******** and ******** values",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := security.NewRedactor(tt.secrets...)
			assert.Equal(t, tt.want, r.Redact(tt.input))
		})
	}
}

func TestRedactor_NilReturnsInput(t *testing.T) {
	var r *security.Redactor
	assert.Equal(t, "plain", r.Redact("plain"))
	r.AddSecret("ignored")
}

func TestRedactor_AddSecret(t *testing.T) {
	r := security.NewRedactor("pw")
	r.AddSecret("token-xyz")
	r.AddSecret("token-xyz")
	r.AddSecret("")

	assert.ElementsMatch(t, []string{"pw", "token-xyz"}, r.Secrets)
	assert.Equal(t, "Bearer ********", r.Redact("Bearer token-xyz"))
}
