package utils

import (
	"log"

	"velvet_back_end/internal/config"

	"github.com/wneessen/go-mail"
)

// Mailer envoie du texte brut via le relais SMTP configuré (STARTTLS).
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		to:       cfg.AlertRecipient,
	}
}

// Send transmet un mail texte au destinataire des alertes.
func (m *Mailer) Send(subject, body string) error {
	msg := mail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(m.to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", m.to)
	return client.DialAndSend(msg)
}
