package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/arnavsurve/dropreport/pkg/core"
	"github.com/go-playground/validator/v10"
)

// Recipient selection modes.
const (
	ModeAll  = "all"
	ModeCron = "cron"
	ModeOne  = "one"
	ModeMany = "many"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseRecipients decodes a JSON array of addresses and checks every entry.
func ParseRecipients(data string) ([]string, error) {
	var addrs []string
	if err := json.Unmarshal([]byte(data), &addrs); err != nil {
		return nil, &core.ConfigError{Field: "RECIPIENTS_JSON", Reason: fmt.Sprintf("not a JSON list of addresses: %v", err)}
	}
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}
	if err := validate.Var(addrs, "min=1,dive,email"); err != nil {
		return nil, &core.ConfigError{Field: "RECIPIENTS_JSON", Reason: describeAddrError(addrs, err)}
	}
	return addrs, nil
}

// PickRecipients narrows the configured list according to mode. An empty mode
// behaves like "all", which is what scheduled runs use.
func PickRecipients(all []string, mode, emails string) ([]string, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	emails = strings.TrimSpace(emails)

	switch mode {
	case "", ModeCron, ModeAll:
		return all, nil
	case ModeOne:
		if err := validate.Var(emails, "required,email"); err != nil {
			return nil, &core.ConfigError{Field: "EMAILS", Reason: fmt.Sprintf("mode %q needs one valid address, got %q", ModeOne, emails)}
		}
		return []string{emails}, nil
	case ModeMany:
		var picked []string
		for _, e := range strings.Split(emails, ",") {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			if !slices.Contains(all, e) {
				return nil, &core.ConfigError{Field: "EMAILS", Reason: fmt.Sprintf("%q is not a configured recipient", e)}
			}
			picked = append(picked, e)
		}
		if len(picked) == 0 {
			return nil, &core.ConfigError{Field: "EMAILS", Reason: fmt.Sprintf("mode %q needs at least one address", ModeMany)}
		}
		return picked, nil
	default:
		return nil, &core.ConfigError{Field: "MODE", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
}

func describeAddrError(addrs []string, err error) string {
	if len(addrs) == 0 {
		return "at least one address is required"
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("invalid address %q", verrs[0].Value())
	}
	return err.Error()
}
