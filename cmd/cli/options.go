package cli

import (
	"strings"
	"time"

	"github.com/arnavsurve/dropreport/pkg/httpcall"
	"github.com/arnavsurve/dropreport/pkg/notify"
	"github.com/arnavsurve/dropreport/pkg/retry"
)

// FlowOptions locate the flow file and the API it runs against.
type FlowOptions struct {
	Flow    string `help:"The flow configuration file." default:"dropreport.yml"`
	BaseURL string `help:"Base address every step endpoint is joined to." env:"BASE_URL"`
}

type CredentialOptions struct {
	UserID   string `help:"Substituted for {userId} in step fields." env:"API_USER_ID"`
	Password string `help:"Substituted for {password} in step fields." env:"API_PASSWORD"`
}

type DateOptions struct {
	ReportType string `help:"Report period used when no explicit dates are given." enum:"daily,weekly,monthly" default:"daily" env:"REPORT_TYPE"`
	StartDate  string `help:"First day of the report (YYYY-MM-DD)." env:"START_DATE"`
	EndDate    string `help:"Last day of the report (YYYY-MM-DD)." env:"END_DATE"`
}

type RetryOptions struct {
	MaxAttempts  int           `help:"Attempts per step, counting the first." default:"3" env:"RETRY_MAX_ATTEMPTS"`
	InitialDelay time.Duration `help:"Wait before the first retry." default:"1s" env:"RETRY_INITIAL_DELAY"`
	Multiplier   float64       `help:"Backoff multiplier between retries." default:"2" env:"RETRY_MULTIPLIER"`
	Budget       time.Duration `help:"Total time a step may spend retrying." default:"30s" env:"RETRY_BUDGET"`
	Timeout      time.Duration `help:"Per-request timeout." default:"15s" env:"HTTP_TIMEOUT"`
}

func (o RetryOptions) policy() retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxAttempts = o.MaxAttempts
	p.InitialDelay = o.InitialDelay
	p.Multiplier = o.Multiplier
	p.Budget = o.Budget
	return p
}

func (o RetryOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return httpcall.DefaultTimeout
	}
	return o.Timeout
}

// MailOptions configure delivery of the report. Mail is skipped when no SMTP
// host is set.
type MailOptions struct {
	SMTPHost       string `help:"SMTP server host." env:"SMTP_HOST"`
	SMTPPort       int    `help:"SMTP server port (STARTTLS)." default:"587" env:"SMTP_PORT"`
	SMTPUser       string `help:"SMTP username, also the default sender." env:"SMTP_USER"`
	SMTPPass       string `help:"SMTP password." env:"SMTP_PASS"`
	MailFrom       string `help:"Sender address if it differs from the SMTP username." env:"MAIL_FROM"`
	RecipientsJSON string `help:"JSON list of report recipients." env:"RECIPIENTS_JSON"`
	Mode           string `help:"Recipient selection: all, cron, one or many." env:"MODE"`
	Emails         string `help:"Address(es) used by the one and many modes." env:"EMAILS"`
	AdminEmails    string `help:"Comma separated admin addresses that receive run.log." env:"ADMIN_EMAILS"`
}

func (o MailOptions) enabled() bool {
	return strings.TrimSpace(o.SMTPHost) != ""
}

func (o MailOptions) smtpConfig() notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     o.SMTPHost,
		Port:     o.SMTPPort,
		Username: o.SMTPUser,
		Password: o.SMTPPass,
		From:     o.MailFrom,
	}
}

// recipients resolves the report and admin address lists.
func (o MailOptions) recipients() (report, admins []string, err error) {
	if strings.TrimSpace(o.RecipientsJSON) != "" {
		all, err := notify.ParseRecipients(o.RecipientsJSON)
		if err != nil {
			return nil, nil, err
		}
		if report, err = notify.PickRecipients(all, o.Mode, o.Emails); err != nil {
			return nil, nil, err
		}
	}
	for _, a := range strings.Split(o.AdminEmails, ",") {
		if a = strings.TrimSpace(a); a != "" {
			admins = append(admins, a)
		}
	}
	return report, admins, nil
}
