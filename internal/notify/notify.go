package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/ppiankov/dailybrief/internal/config"
)

// Status describes the artifacts a run was expected to leave behind.
// Empty paths mean the artifact is missing.
type Status struct {
	Date            string
	BriefPath       string
	VaultBriefPath  string
	VaultConfigured bool
	LogPath         string
}

// BuildBody renders the plain-text notification body.
func BuildBody(st Status) string {
	lines := []string{
		"Date: " + st.Date,
		"",
		"Status:",
		"- Brief file (project output): " + presence(st.BriefPath != ""),
		"- Brief file (vault sync): " + vaultPresence(st),
	}
	if st.BriefPath != "" {
		lines = append(lines, "- Brief path: "+st.BriefPath)
	}
	if st.VaultBriefPath != "" {
		lines = append(lines, "- Vault brief path: "+st.VaultBriefPath)
	}
	if st.LogPath != "" {
		lines = append(lines, "", "If the brief is missing, check logs:", st.LogPath)
	}
	return strings.Join(lines, "\n")
}

func presence(ok bool) string {
	if ok {
		return "OK"
	}
	return "MISSING"
}

func vaultPresence(st Status) string {
	if !st.VaultConfigured {
		return "NOT CONFIGURED"
	}
	return presence(st.VaultBriefPath != "")
}

// Mailer sends run status notifications over SMTP with STARTTLS.
type Mailer struct {
	cfg    config.Email
	logger *slog.Logger
}

func NewMailer(cfg config.Email, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Send delivers the status email for one day's run.
func (m *Mailer) Send(st Status) error {
	if !m.cfg.Enabled {
		return errors.New("email notifications are disabled")
	}
	if strings.TrimSpace(m.cfg.To) == "" {
		return errors.New("email recipient is required")
	}
	if m.cfg.User == "" || m.cfg.Pass == "" {
		return fmt.Errorf("smtp credentials missing, set %s and %s", m.cfg.UserEnv, m.cfg.PassEnv)
	}

	addr := net.JoinHostPort(m.cfg.SMTPHost, strconv.Itoa(m.cfg.SMTPPort))
	subject := "Daily Brief Run - " + st.Date
	msg := buildMessage(m.cfg.User, m.cfg.To, subject, BuildBody(st))

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.SMTPHost)
	if err := smtp.SendMail(addr, auth, m.cfg.User, []string{m.cfg.To}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info("notification sent", "to", m.cfg.To)
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n")
	fmt.Fprintf(&b, "\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
