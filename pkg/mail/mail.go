package mail

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"bookclub/pkg/circuitbreaker"
	"bookclub/pkg/config"
	"bookclub/pkg/models"
)

// Sender delivers one message. Delivery failure never mutates lending
// state; it only surfaces to the caller.
type Sender interface {
	Send(to, subject, text string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
	}
}

func (s *SMTPSender) Send(to, subject, text string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", wrapHTML(text))
	return s.dialer.DialAndSend(m)
}

func wrapHTML(text string) string {
	return fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; font-size: 15px; color: #222;">%s</div>`,
		strings.ReplaceAll(text, "\n", "<br>"))
}

// ComposeOverdueNotice builds the templated reminder for an overdue
// lending from its snapshot fields.
func ComposeOverdueNotice(lending *models.Lending) (subject, text string) {
	subject = fmt.Sprintf("Overdue Notice: Book %q", lending.BookTitle)
	text = fmt.Sprintf("Dear %s,\n\n"+
		"This is a reminder that the book %q,\n"+
		"you borrowed is overdue.\n"+
		"Due Date: %s\n\n"+
		"Please return the book as soon as possible.\n\n"+
		"Thank you,\nBook Club Library",
		lending.ReaderName, lending.BookTitle, lending.DueDate.Format("1/2/2006"))
	return subject, text
}

// Notifier guards a Sender with a circuit breaker so a dead SMTP host
// fails fast instead of stalling every notify request.
type Notifier struct {
	sender  Sender
	breaker *circuitbreaker.CircuitBreaker
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{
		sender:  sender,
		breaker: circuitbreaker.New(5, 30*time.Second),
	}
}

func (n *Notifier) Send(to, subject, text string) error {
	return n.breaker.Execute(func() error {
		return n.sender.Send(to, subject, text)
	})
}
