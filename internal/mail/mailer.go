// Package mail delivers verification messages over SMTP. Delivery is
// asynchronous and fire-and-forget: the HTTP path enqueues and returns,
// and SMTP failures are logged, never surfaced to the client.
package mail

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

const (
	codeSubject  = "Email Verification"
	codeBodyTmpl = "Your verification code is: %s"
)

// Sender performs one synchronous delivery. It is the seam tests replace.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends plain-text mail through a gomail dialer.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a sender for the given SMTP endpoint. from is used
// as the envelope and header From address.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send dials, delivers one message, and closes the connection.
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return s.dialer.DialAndSend(msg)
}

type job struct {
	to, subject, body string
}

// AsyncMailer runs a single background worker draining a bounded queue.
// When the queue is full the message is dropped with a log entry rather
// than blocking the request path.
type AsyncMailer struct {
	sender Sender
	queue  chan job
	wg     sync.WaitGroup
	once   sync.Once

	mu     sync.Mutex
	closed bool
}

// NewAsyncMailer starts the delivery worker. buffer bounds the queue; a
// non-positive value gets a small default.
func NewAsyncMailer(sender Sender, buffer int) *AsyncMailer {
	if buffer <= 0 {
		buffer = 64
	}
	m := &AsyncMailer{
		sender: sender,
		queue:  make(chan job, buffer),
	}
	m.wg.Add(1)
	go m.run()
	return m
}

func (m *AsyncMailer) run() {
	defer m.wg.Done()
	for j := range m.queue {
		if err := m.sender.Send(j.to, j.subject, j.body); err != nil {
			log.Error().Err(err).Str("to", j.to).Msg("mail delivery failed")
			continue
		}
		log.Debug().Str("to", j.to).Msg("mail delivered")
	}
}

// DeliverCodeAsync queues a verification-code message and returns
// immediately. Messages arriving after Close are dropped with a log entry.
func (m *AsyncMailer) DeliverCodeAsync(email, code string) {
	j := job{to: email, subject: codeSubject, body: fmt.Sprintf(codeBodyTmpl, code)}

	// The enqueue must happen under the same lock that Close takes before
	// closing the channel, or a late send could hit a closed channel.
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		log.Warn().Str("to", email).Msg("mailer closed, dropping message")
		return
	}
	select {
	case m.queue <- j:
	default:
		log.Warn().Str("to", email).Msg("mail queue full, dropping message")
	}
}

// Close stops accepting messages and waits for the queue to drain.
func (m *AsyncMailer) Close() {
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		close(m.queue)
		m.mu.Unlock()
	})
	m.wg.Wait()
}
