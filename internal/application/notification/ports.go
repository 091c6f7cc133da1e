package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/notification"
)

// Mail template names
const (
	TemplateWelcome             = "welcome"
	TemplateTicketConfirmation  = "ticket-confirmation"
	TemplatePaymentConfirmation = "payment-confirmation"
	TemplateNewAttendee         = "new-attendee"
	TemplateEventReminder       = "event-reminder"
	TemplateEventCancellation   = "event-cancellation"
	TemplateEventUpdate         = "event-update"
	TemplateCompanyInvitation   = "company-invitation"
	TemplateCompanyRoleUpdate   = "company-role-update"
	TemplatePasswordReset       = "password-reset"
)

// Attachment is a file sent along with a mail
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MailMessage is one templated mail to a single recipient
type MailMessage struct {
	To          string
	Template    string
	Data        map[string]any
	Attachments []Attachment
}

// Mailer renders and delivers mail
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// Pusher delivers freshly created notifications to connected clients
type Pusher interface {
	Push(userID uuid.UUID, n *notification.Notification)
}
