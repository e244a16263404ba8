package security

import (
	"sort"
	"strings"
	"sync"
)

const mask = "********"

// Redactor masks known secret values (credentials, SMTP password, bearer
// tokens picked up mid-run) in log output.
type Redactor struct {
	mu      sync.RWMutex
	Secrets []string
}

func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		r.AddSecret(s)
	}
	return r
}

// AddSecret registers another value to mask. Empty and duplicate values are ignored.
func (r *Redactor) AddSecret(secret string) {
	if r == nil || secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.Secrets {
		if s == secret {
			return
		}
	}
	r.Secrets = append(r.Secrets, secret)
}

func (r *Redactor) Redact(s string) string {
	if r == nil {
		return s
	}
	r.mu.RLock()
	if len(r.Secrets) == 0 {
		r.mu.RUnlock()
		return s
	}
	// Longer secrets first so a secret that contains another is masked whole.
	secrets := make([]string, len(r.Secrets))
	copy(secrets, r.Secrets)
	r.mu.RUnlock()

	sort.Slice(secrets, func(i, j int) bool {
		return len(secrets[i]) > len(secrets[j])
	})

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, mask)
	}
	return s
}
