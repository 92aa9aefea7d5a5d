package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// InviteRecipient is one addressee of a team Telegram invitation
type InviteRecipient struct {
	Email    string
	Name     string
	TeamName string
}

// SendResult is the per-recipient outcome of a bulk send
type SendResult struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// Sender delivers a single message. Satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends competition emails over SMTP. With no credentials configured
// it reports every send as failed instead of erroring out the request.
type Mailer struct {
	sender Sender
	from   string
}

// New creates a mailer. user may be empty, which disables delivery.
func New(host string, port int, user, password, from string) *Mailer {
	m := &Mailer{from: from}
	if m.from == "" {
		m.from = user
	}
	if user != "" && password != "" {
		m.sender = gomail.NewDialer(host, port, user, password)
	}
	return m
}

// NewWithSender creates a mailer with a custom delivery backend
func NewWithSender(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

// Enabled reports whether outgoing mail is configured
func (m *Mailer) Enabled() bool {
	return m.sender != nil
}

// SendTelegramInvites emails the team's Telegram group link to each recipient
// and returns the per-recipient outcome. One failed address does not stop the
// rest of the batch.
func (m *Mailer) SendTelegramInvites(recipients []InviteRecipient, telegramLink string) []SendResult {
	results := make([]SendResult, 0, len(recipients))

	for _, r := range recipients {
		subject := fmt.Sprintf("Invitation to join team %s", r.TeamName)
		html := buildInviteHTML(r.Name, r.TeamName, telegramLink)

		if err := m.send(r.Email, subject, html); err != nil {
			results = append(results, SendResult{Email: r.Email, Sent: false, Error: err.Error()})
			continue
		}
		results = append(results, SendResult{Email: r.Email, Sent: true})
	}

	return results
}

// Send delivers a single HTML email
func (m *Mailer) Send(to, subject, htmlBody string) error {
	return m.send(to, subject, htmlBody)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.sender == nil {
		return fmt.Errorf("mail delivery is not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func buildInviteHTML(name, teamName, telegramLink string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; border-radius: 10px; padding: 30px;">
    <div style="text-align: center; border-bottom: 2px solid #667eea; padding-bottom: 20px; margin-bottom: 20px;">
      <h1 style="color: #667eea; margin: 0;">TechnoFest Competitions</h1>
    </div>
    <div style="line-height: 1.8; color: #333;">
      <p>Hello <strong>%s</strong>,</p>
      <p>You have been added to team <strong>"%s"</strong>!</p>
      <p>Please join the team's Telegram group to coordinate with the other members:</p>
      <p style="text-align: center;">
        <a href="%s" style="display: inline-block; background: #667eea; color: white; padding: 15px 30px; text-decoration: none; border-radius: 25px; font-weight: bold;">Join the Telegram group</a>
      </p>
      <p>Good luck!</p>
    </div>
    <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; color: #888; font-size: 12px;">
      <p>TechnoFest Competition Platform</p>
    </div>
  </div>
</body>
</html>`, name, teamName, telegramLink)
}
