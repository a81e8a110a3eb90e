// Package mail renders appointment emails and hands them to a transport.
// Delivery itself happens downstream of the transport.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"clinic-scheduler/internal/metrics"
)

// Variable keys with meaning to the mailer itself.
const (
	VarTo          = "to"
	VarPatientName = "patient_name"
	VarPatientID   = "patient_id"
)

var (
	ErrUnknownTemplate = errors.New("unknown email template")
	ErrNoRecipient     = errors.New("email has no recipient")
)

type Message struct {
	ID       string            `json:"id"`
	From     string            `json:"from"`
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Body     string            `json:"body"`
	Template string            `json:"template"`
	Vars     map[string]string `json:"vars,omitempty"`
	QueuedAt time.Time         `json:"queued_at"`
}

type Receipt struct {
	MessageID string
}

// Transport accepts a rendered message for delivery.
type Transport interface {
	Deliver(ctx context.Context, m Message) error
}

type Options struct {
	From            string
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type Mailer struct {
	templates *TemplateEngine
	transport Transport
	breaker   *gobreaker.CircuitBreaker[struct{}]
	from      string
	log       *zap.Logger
}

func NewMailer(templates *TemplateEngine, transport Transport, opts Options, log *zap.Logger, m *metrics.Collector) *Mailer {
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	st := gobreaker.Settings{
		Name:        "mail",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("mail breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if m != nil {
				m.MailBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	}
	return &Mailer{
		templates: templates,
		transport: transport,
		breaker:   gobreaker.NewCircuitBreaker[struct{}](st),
		from:      opts.From,
		log:       log,
	}
}

// Send renders template with vars and queues it. vars[VarTo] is the recipient.
func (m *Mailer) Send(ctx context.Context, template string, vars map[string]string) (Receipt, error) {
	to := vars[VarTo]
	if to == "" {
		return Receipt{}, ErrNoRecipient
	}
	subject, body, err := m.templates.Render(template, vars)
	if err != nil {
		return Receipt{}, err
	}

	msg := Message{
		ID:       uuid.New().String(),
		From:     m.from,
		To:       to,
		Subject:  subject,
		Body:     body,
		Template: template,
		Vars:     vars,
		QueuedAt: time.Now().UTC(),
	}
	_, err = m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.transport.Deliver(ctx, msg)
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("deliver %s: %w", template, err)
	}

	m.log.Debug("email queued",
		zap.String("message_id", msg.ID),
		zap.String("template", template))
	return Receipt{MessageID: msg.ID}, nil
}
