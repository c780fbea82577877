package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	gopkgmail "gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
	TMPLDir  string
}

type Notification struct {
	To       string
	Subject  string
	Template string         // имя шаблона, например "order_placed"
	Data     map[string]any // данные для шаблона
}

type Sender interface {
	Send(n Notification) error
}

type dialer interface {
	DialAndSend(m ...*gopkgmail.Message) error
}

type EmailSender struct {
	cfg    SMTPConfig
	dialer dialer
}

func NewEmailSender(cfg SMTPConfig) *EmailSender {
	d := gopkgmail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return &EmailSender{cfg: cfg, dialer: d}
}

func (s *EmailSender) Send(n Notification) error {
	m, err := s.Build(n)
	if err != nil {
		return err
	}
	return s.dialer.DialAndSend(m)
}

// Build собирает письмо из пары шаблонов <name>.html и <name>.txt.
func (s *EmailSender) Build(n Notification) (*gopkgmail.Message, error) {
	htmlBody, err := s.renderHTML(n.Template, n.Data)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	plainBody, err := s.renderPlain(n.Template, n.Data)
	if err != nil {
		return nil, fmt.Errorf("render plain: %w", err)
	}

	m := gopkgmail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if strings.Contains(htmlBody, "cid:logo") {
		iconPath := filepath.Join(s.cfg.TMPLDir, "icon.png")
		if _, errStat := os.Stat(iconPath); errStat == nil {
			m.Embed(iconPath, gopkgmail.SetHeader(map[string][]string{"Content-ID": {"<logo>"}}))
		}
	}
	return m, nil
}

func (s *EmailSender) renderHTML(name string, data map[string]any) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.cfg.TMPLDir, name+".html"))
	if err != nil {
		return "", err
	}
	tmpl, err := htmltemplate.New(name).Option("missingkey=zero").Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailSender) renderPlain(name string, data map[string]any) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.cfg.TMPLDir, name+".txt"))
	if err != nil {
		return "", err
	}
	tmpl, err := texttemplate.New(name).Option("missingkey=zero").Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
