// Package notify sends a digest of newly added notices.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/domain"
	"layoffs-engine/internal/logging"
	"layoffs-engine/internal/reconcile"
	"layoffs-engine/internal/secrets"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// DigestLimit caps how many rows one email lists.
const DigestLimit = 50

var tracer = otel.Tracer("layoffs-engine/internal/notify")

// Notifier is told about every pass that wrote new rows.
type Notifier interface {
	Notify(ctx context.Context, res reconcile.Result) error
}

type Mailer struct {
	cfg      config.EmailConfig
	password func() (string, error)
	send     func(e *email.Email, addr string, a smtp.Auth) error
}

func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{
		cfg: cfg,
		password: func() (string, error) {
			return secrets.GetSMTPPassword(secrets.SMTPKeyringAccount(cfg))
		},
		send: func(e *email.Email, addr string, a smtp.Auth) error { return e.Send(addr, a) },
	}
}

func (m *Mailer) Notify(ctx context.Context, res reconcile.Result) error {
	if !m.cfg.Enabled || res.NewCount == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "notify.Mailer.Notify")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("WARN Watch <%s>", m.cfg.From)
	mail.To = m.cfg.To
	mail.Subject = fmt.Sprintf("%s (%d)", m.cfg.Subject, res.NewCount)
	mail.Text = []byte(Digest(res, DigestLimit))

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if pw, err := m.password(); err == nil {
		user := m.cfg.Username
		if user == "" {
			user = m.cfg.From
		}
		auth = smtp.PlainAuth("", user, pw, m.cfg.SMTPHost)
	} else {
		logging.FromContext(ctx).Warn().Err(err).Str("component", "notify").Msg("sending without SMTP auth")
	}

	err := m.send(mail, addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = m.send(mail, addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("send digest: %w", err)
	}

	logging.FromContext(ctx).Info().
		Str("component", "notify").
		Int("added", res.NewCount).
		Strs("to", m.cfg.To).
		Msg("digest sent")
	return nil
}

// digestColumns are shown in the digest when the table has them.
var digestColumns = []string{
	domain.ColCompany,
	domain.ColState,
	domain.ColIndustry,
	domain.ColWorkers,
	domain.ColReceivedDate,
}

// Digest renders the added rows as a plain-text table.
func Digest(res reconcile.Result, limit int) string {
	t := domain.Table{Columns: res.Columns, Rows: res.Added}

	var cols []string
	for _, c := range digestColumns {
		if t.Index(c) >= 0 {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		cols = t.Columns
	}
	view := t.Project(cols)

	tw := table.NewWriter()
	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	tw.AppendHeader(header)

	shown := view.Rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, r := range shown {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		tw.AppendRow(row)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d new WARN notice(s) were added to the dataset.\n\n", res.NewCount)
	b.WriteString(tw.Render())
	b.WriteString("\n")
	if more := len(view.Rows) - len(shown); more > 0 {
		fmt.Fprintf(&b, "\n...and %d more.\n", more)
	}
	return b.String()
}

// Live builds a Mailer from the current email settings on every call, so a
// config edit applies to the next digest.
type Live func() config.EmailConfig

func (l Live) Notify(ctx context.Context, res reconcile.Result) error {
	return NewMailer(l()).Notify(ctx, res)
}
