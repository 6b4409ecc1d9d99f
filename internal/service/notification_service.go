package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/config"
	"github.com/sanskruthi/fest-service/internal/events"
)

const webhookTimeout = 3 * time.Second

// Notification is one outbound message derived from a domain event.
type Notification struct {
	EventID   string           `json:"event_id"`
	EventType events.EventType `json:"event_type"`
	UserID    string           `json:"user_id"`
	To        string           `json:"to,omitempty"`
	Subject   string           `json:"subject"`
	Body      string           `json:"body"`
	At        time.Time        `json:"at"`
}

// NotificationService turns registration, booking and attendance events into
// attendee notifications. Mail is logged from the configured sender; the
// webhook, when set, receives every notification as JSON in the background.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	inflight   sync.WaitGroup
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, logger: logger, cfg: cfg}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, typ := range []events.EventType{
		events.EventRegistrationCreated,
		events.EventBookingCreated,
		events.EventAttendeeCheckedIn,
		events.EventAttendeeCheckedOut,
	} {
		n.dispatcher.Subscribe(typ, n.handle)
	}
}

// handle never fails or delays the publisher; delivery problems are logged.
func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	note, ok := Compose(event)
	if !ok {
		return nil
	}
	if note.To != "" && strings.TrimSpace(n.cfg.EmailFrom) != "" {
		n.logger.Info("email notification",
			zap.String("from", n.cfg.EmailFrom),
			zap.String("to", note.To),
			zap.String("subject", note.Subject),
			zap.String("user_id", note.UserID))
	}
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), webhookTimeout)
		defer cancel()
		if err := n.postWebhook(deliverCtx, note); err != nil {
			n.logger.Warn("webhook notification failed",
				zap.String("event_type", string(note.EventType)),
				zap.String("user_id", note.UserID),
				zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until background webhook deliveries have finished.
func (n *NotificationService) Wait() {
	n.inflight.Wait()
}

// postWebhook sends note within ctx's deadline, capped at webhookTimeout.
func (n *NotificationService) postWebhook(ctx context.Context, note Notification) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := webhookTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	agent := fiber.Post(url).JSON(note).Timeout(timeout)
	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return errs[0]
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("webhook responded %d", status)
	}
	return nil
}

// Compose renders the notification for event. Events without a known
// payload produce nothing.
func Compose(event events.Event) (Notification, bool) {
	note := Notification{
		EventID:   event.ID,
		EventType: event.Type,
		UserID:    event.UserID,
		At:        event.Timestamp,
	}
	switch p := event.Payload.(type) {
	case events.RegistrationCreatedPayload:
		note.To = p.Email
		note.Subject = "You're registered for Sanskruthi 2K25"
		note.Body = fmt.Sprintf("Hi %s, your registration is confirmed. Show the QR ticket from your profile at the entrance.", p.FullName)
	case events.BookingCreatedPayload:
		note.Subject = "Booking received"
		note.Body = fmt.Sprintf("%d x %s ticket(s), Rs. %d. Booking %s is pending payment.", p.Quantity, p.TicketType, p.Amount, p.BookingID)
	case events.AttendancePayload:
		verb := "checked in to"
		if event.Type == events.EventAttendeeCheckedOut {
			verb = "checked out of"
		}
		note.Subject = "Attendance updated"
		note.Body = fmt.Sprintf("%s %s Sanskruthi 2K25 at %s.", p.FullName, verb, p.At.Format(time.Kitchen))
	default:
		return Notification{}, false
	}
	return note, true
}
