package notify

import "context"

// Reminder es el contenido de un recordatorio de toma.
type Reminder struct {
	UserID string
	Title  string
	Body   string
}

// ReminderNotifier entrega recordatorios a un colaborador externo (push).
// La entrega es best-effort: el core no reintenta ni espera confirmación.
type ReminderNotifier interface {
	Send(ctx context.Context, r Reminder) error
}
