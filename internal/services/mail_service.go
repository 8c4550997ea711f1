package services

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"

	"inkwell/internal/config"
	"inkwell/internal/logger"
	"inkwell/internal/models"
	"inkwell/web"

	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"
)

// mailSender is satisfied by *mail.Dialer.
type mailSender interface {
	DialAndSend(m ...*mail.Message) error
}

type MailService struct {
	from    string
	sender  mailSender
	Enabled bool

	wg sync.WaitGroup
}

func NewMailService(cfg config.SMTPConfig) *MailService {
	if !cfg.Enabled() {
		logger.S().Warn("MailService disabled: missing SMTP environment variables")
		return &MailService{}
	}

	return &MailService{
		from:    cfg.From,
		sender:  mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		Enabled: true,
	}
}

func (s *MailService) sendAsync(to, subject, htmlBody, textBody string) {
	if !s.Enabled {
		logger.S().Infow("Mail not sent, SMTP disabled", "to", to, "subject", subject)
		return
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.from, "Inkwell")
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sender.DialAndSend(m); err != nil {
			logger.L().Error("Failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
			return
		}
		logger.L().Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	}()
}

// Wait blocks until queued mail has been handed to the SMTP server.
func (s *MailService) Wait() {
	s.wg.Wait()
}

func (s *MailService) parseTemplate(name string, data interface{}) (string, error) {
	t, err := template.ParseFS(web.FS, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// SendPasswordReset mails user a link to the reset form.
func (s *MailService) SendPasswordReset(user *models.User, link string) error {
	body, err := s.parseTemplate("reset.html", map[string]string{
		"Username": user.Username,
		"Link":     link,
	})
	if err != nil {
		return err
	}

	text := fmt.Sprintf("To reset your password, visit the following link:\n%s\n\n"+
		"If you did not make this request then simply ignore this email and no changes will be made.\n", link)
	s.sendAsync(user.Email, "Password Reset Request", body, text)
	return nil
}
