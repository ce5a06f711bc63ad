package alert

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"time"

	"github.com/kathitsondhi/portfolio/internal/store"
)

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

type sendMailFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier emails the owner an HTML summary of the message.
type SMTPNotifier struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
}

// NewSMTPNotifier creates an email notifier. When To is empty, mail goes to
// the authenticated user.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.User == "" || cfg.Pass == "" {
		return nil, fmt.Errorf("SMTP credentials not configured")
	}
	if cfg.To == "" {
		cfg.To = cfg.User
	}
	return &SMTPNotifier{cfg: cfg, sendMail: sendMail}, nil
}

func (n *SMTPNotifier) Name() string { return "smtp" }

var emailTmpl = template.Must(template.New("email").Parse(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px;">
    <h2 style="color: #FF6B35; border-bottom: 2px solid #FF6B35; padding-bottom: 10px;">New Contact Form Submission</h2>
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
    <div style="background-color: #f9f9f9; padding: 15px; border-left: 4px solid #00D9FF;">
      <p><strong>Message:</strong></p>
      <p style="white-space: pre-wrap;">{{.Message}}</p>
    </div>
    <p style="color: #777; font-size: 12px;">Received at: {{.CreatedAt.UTC.Format "2006-01-02 15:04:05 UTC"}}</p>
  </div>
</body>
</html>`))

func (n *SMTPNotifier) compose(m store.ContactMessage) ([]byte, error) {
	var body bytes.Buffer
	if err := emailTmpl.Execute(&body, m); err != nil {
		return nil, fmt.Errorf("failed to render email: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", n.cfg.To)
	fmt.Fprintf(&msg, "From: Portfolio Contact <%s>\r\n", n.cfg.User)
	fmt.Fprintf(&msg, "Reply-To: %s\r\n", sanitizeHeader(m.Email))
	fmt.Fprintf(&msg, "Subject: New Contact Form Submission from %s\r\n", sanitizeHeader(m.Name))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.Write(body.Bytes())
	msg.WriteString("\r\n")
	return msg.Bytes(), nil
}

func (n *SMTPNotifier) Notify(ctx context.Context, m store.ContactMessage) error {
	msg, err := n.compose(m)
	if err != nil {
		return err
	}
	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)
	if err := n.sendMail(ctx, net.JoinHostPort(n.cfg.Host, n.cfg.Port), auth, n.cfg.User, []string{n.cfg.To}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// defaultSMTPTimeout bounds a send when ctx carries no deadline.
const defaultSMTPTimeout = time.Minute

// sendMail is smtp.SendMail with the whole exchange bounded by ctx.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSMTPTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		conn.Close()
		return err
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// sanitizeHeader strips CR and LF so visitor input cannot inject headers.
func sanitizeHeader(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\r' || r == '\n' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
