package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavsurve/dropreport/pkg/core"
	"github.com/arnavsurve/dropreport/pkg/diagnose"
	"github.com/arnavsurve/dropreport/pkg/httpcall"
	"github.com/arnavsurve/dropreport/pkg/notify"
	"github.com/arnavsurve/dropreport/pkg/report"
	"github.com/arnavsurve/dropreport/pkg/types"
)

type RunCmd struct {
	FlowOptions       `embed:""`
	CredentialOptions `embed:""`
	DateOptions       `embed:""`
	RetryOptions      `embed:""`
	MailOptions       `embed:""`

	ArtifactDir string `help:"Directory for CSV artifacts. Defaults to the working directory." env:"ARTIFACT_DIR"`
	Report      string `help:"Workbook path. Defaults to <report-type>_report.xlsx."`
	RunLog      string `help:"Human readable run log, attached to admin mail." default:"run.log"`
	Verbose     bool   `help:"Log at debug level." short:"v"`

	// sender replaces the SMTP client in tests.
	sender notify.Sender    `kong:"-"`
	now    func() time.Time `kong:"-"`
}

func (r *RunCmd) Run(ctx context.Context) error {
	sess, err := newSession(r.RunLog, r.Verbose, r.Password, r.SMTPPass)
	if err != nil {
		return err
	}
	defer sess.Close()

	return r.execute(ctx, sess)
}

func (r *RunCmd) execute(ctx context.Context, sess *session) error {
	logger := sess.Logger
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	startedAt := now()

	mailer, recipients, admins, err := r.prepareMail(logger)
	if err != nil {
		logger.Error().Err(err).Msg("Mail configuration is invalid")
		return err
	}

	results, err := r.runFlow(ctx, logger, sess, startedAt)
	if err != nil {
		return r.fail(ctx, sess, mailer, recipients, admins, results, err, now())
	}

	reportPath := r.Report
	if reportPath == "" {
		reportPath = fmt.Sprintf("%s_report.xlsx", r.ReportType)
	}
	wb, err := report.BuildWorkbook(results, reportPath)
	if err != nil {
		logger.Error().Err(err).Msg("Excel creation failed")
		results.Set("report", types.ErrorResult(err))
		return r.fail(ctx, sess, mailer, recipients, admins, results, err, now())
	}
	logger.Info().Str("path", wb.Path).Int("sheets", len(wb.Sheets)).Msg("Workbook written")

	if mailer != nil {
		finishedAt := now()
		counts := make([]notify.Count, 0, len(wb.Sheets))
		for _, s := range wb.Sheets {
			counts = append(counts, notify.Count{Name: s.Step, Records: s.Rows})
		}
		attachments := append([]string{wb.Path}, wb.Attachments...)

		var sendErrs []error
		if len(recipients) > 0 {
			sendErrs = append(sendErrs, mailer.Send(ctx, notify.Message{
				To:          recipients,
				Subject:     notify.Subject(r.ReportType, true),
				Body:        notify.SuccessBody(counts, finishedAt),
				Attachments: attachments,
			}))
		}
		if len(admins) > 0 {
			sendErrs = append(sendErrs, mailer.Send(ctx, notify.Message{
				To:          admins,
				Subject:     "[Admin] " + notify.Subject(r.ReportType, true),
				Body:        notify.AdminSuccessBody(finishedAt),
				Attachments: append(attachments, sess.RunLogPath),
			}))
		}
		if err := errors.Join(sendErrs...); err != nil {
			logger.Error().Err(err).Msg("Failed to send report email")
			return err
		}
	}

	logger.Info().Msgf("Run complete. Logs can be found at %q", sess.JSONLog)
	return nil
}

// runFlow covers everything up to and including the last step.
func (r *RunCmd) runFlow(ctx context.Context, logger types.Logger, sess *session, now time.Time) (*core.StepResults, error) {
	flow, err := core.LoadFlowFromFile(r.Flow)
	if err != nil {
		logger.Error().Err(err).Msgf("Failed to load flow file %s", r.Flow)
		return core.NewStepResults(), fmt.Errorf("loading flow file %q: %w", r.Flow, err)
	}
	logger.Info().Msgf("Successfully loaded flow: %q", flow.Name)

	start, end, err := core.ResolveDates(r.StartDate, r.EndDate, r.ReportType, now)
	if err != nil {
		logger.Error().Err(err).Msg("Could not determine report dates")
		return core.NewStepResults(), err
	}
	logger.Info().Str("start_date", start).Str("end_date", end).Msgf("Report period (%s)", r.ReportType)

	policy := r.policy()
	if err := policy.Validate(); err != nil {
		logger.Error().Err(err).Msg("Invalid retry settings")
		return core.NewStepResults(), &core.ConfigError{Field: "retry", Reason: err.Error()}
	}

	engine := core.NewFlowEngine(logger, httpcall.NewClient(logger, r.timeout()), policy)
	engine.ArtifactDir = r.ArtifactDir
	engine.OnToken = sess.Redactor.AddSecret
	engine.Redact = sess.Redactor.Redact

	shared := core.NewSharedContext(r.UserID, r.Password, start, end)
	logger.Info().Msgf("Executing flow: %q", flow.Name)
	return engine.Run(ctx, flow, r.BaseURL, shared)
}

func (r *RunCmd) prepareMail(logger types.Logger) (*notify.Mailer, []string, []string, error) {
	if !r.MailOptions.enabled() {
		logger.Warn().Msg("SMTP_HOST is not set, report will not be emailed")
		return nil, nil, nil, nil
	}
	recipients, admins, err := r.MailOptions.recipients()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(recipients) == 0 && len(admins) == 0 {
		return nil, nil, nil, &core.ConfigError{Field: "RECIPIENTS_JSON", Reason: "no recipients or admin addresses configured"}
	}

	var mailer *notify.Mailer
	if r.sender != nil {
		mailer = &notify.Mailer{From: r.SMTPUser, Sender: r.sender, Logger: logger}
		if r.MailFrom != "" {
			mailer.From = r.MailFrom
		}
	} else if mailer, err = notify.NewMailer(r.smtpConfig(), logger); err != nil {
		return nil, nil, nil, err
	}
	return mailer, recipients, admins, nil
}

// fail diagnoses runErr from the log text, mails the failure notices and
// returns runErr.
func (r *RunCmd) fail(ctx context.Context, sess *session, mailer *notify.Mailer, recipients, admins []string, results *core.StepResults, runErr error, at time.Time) error {
	logger := sess.Logger
	diagnosis := diagnose.Classify(sess.Buffer.String())
	logger.Error().Err(runErr).Str("diagnosis", diagnosis).Msg("Run failed")

	if mailer == nil {
		return runErr
	}

	failures := failuresOf(results, runErr)
	if len(recipients) > 0 {
		if err := mailer.Send(ctx, notify.Message{
			To:      recipients,
			Subject: notify.Subject(r.ReportType, false),
			Body:    notify.FailureBody(failures, diagnosis, at),
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to send failure email")
		}
	}
	if len(admins) > 0 {
		if err := mailer.Send(ctx, notify.Message{
			To:          admins,
			Subject:     "[Admin] " + notify.Subject(r.ReportType, false),
			Body:        notify.AdminFailureBody(failures, diagnosis, at),
			Attachments: []string{sess.RunLogPath},
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to send admin failure email")
		}
	}
	return runErr
}

// failuresOf lists the error results of a run, or the run error itself when
// the flow failed before any step recorded one.
func failuresOf(results *core.StepResults, runErr error) []notify.Failure {
	var failures []notify.Failure
	if results != nil {
		results.Each(func(name string, res types.StepResult) {
			if res.Kind == types.ResultError {
				failures = append(failures, notify.Failure{Step: name, Err: res.Err.Error()})
			}
		})
	}
	if len(failures) == 0 {
		name := "run"
		var persistErr *core.ArtifactPersistError
		if errors.As(runErr, &persistErr) {
			name = persistErr.Step
		}
		failures = append(failures, notify.Failure{Step: name, Err: runErr.Error()})
	}
	return failures
}
