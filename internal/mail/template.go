package mail

import (
	"fmt"
	"strings"
	"sync"
)

// Template names used by the scheduling flows.
const (
	TemplateBooked      = "appointment-booked"
	TemplateConfirmed   = "appointment-confirmed"
	TemplateCancelled   = "appointment-cancelled"
	TemplateRescheduled = "appointment-rescheduled"
	TemplateReminder    = "appointment-reminder"
	TemplateMissed      = "appointment-missed"
)

type Template struct {
	Name    string
	Subject string
	Body    string
}

// TemplateEngine renders {{key}} placeholders. Unknown keys stay as written.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]Template
}

func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]Template)}
	for _, t := range builtIn {
		e.templates[t.Name] = t
	}
	return e
}

var builtIn = []Template{
	{
		Name:    TemplateBooked,
		Subject: "Cita agendada: {{date}} {{time}}",
		Body:    "Hola {{patient_name}}, tu cita \"{{title}}\" con {{doctor_name}} quedó agendada para el {{date}} a las {{time}}.",
	},
	{
		Name:    TemplateConfirmed,
		Subject: "Cita confirmada: {{date}} {{time}}",
		Body:    "Hola {{patient_name}}, tu cita \"{{title}}\" del {{date}} a las {{time}} está confirmada.",
	},
	{
		Name:    TemplateCancelled,
		Subject: "Cita cancelada",
		Body:    "Hola {{patient_name}}, tu cita \"{{title}}\" del {{date}} a las {{time}} fue cancelada.",
	},
	{
		Name:    TemplateRescheduled,
		Subject: "Cita reprogramada: {{date}} {{time}}",
		Body:    "Hola {{patient_name}}, tu cita \"{{title}}\" fue movida al {{date}} a las {{time}}.",
	},
	{
		Name:    TemplateReminder,
		Subject: "Recordatorio de cita",
		Body:    "Hola {{patient_name}}, te recordamos tu cita \"{{title}}\" el {{date}} a las {{time}}.",
	},
	{
		Name:    TemplateMissed,
		Subject: "No asististe a tu cita",
		Body:    "Hola {{patient_name}}, registramos que no asististe a tu cita \"{{title}}\" del {{date}} a las {{time}}. Puedes agendar una nueva cuando quieras.",
	},
}

func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.Name] = t
}

func (e *TemplateEngine) Render(name string, vars map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	subject, body = t.Subject, t.Body
	for k, v := range vars {
		ph := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, ph, v)
		body = strings.ReplaceAll(body, ph, v)
	}
	return subject, body, nil
}
