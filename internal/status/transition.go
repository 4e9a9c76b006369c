// Package status implements the order / custom-request status transition
// flow: an optional operator-confirmed outbound message, a single-row status
// commit, a best-effort in-app notification, and a fire-and-forget WhatsApp
// deep link.
package status

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/ovenlight/bakery-api/internal/models"
	"github.com/ovenlight/bakery-api/internal/whatsapp"
)

// ErrUnknownStatus is returned when the target label is outside the
// entity's enum set. Nothing is written in that case.
var ErrUnknownStatus = errors.New("unknown status")

// Entity kinds the engine knows about.
const (
	KindOrder         = "order"
	KindCustomRequest = "custom_request"
)

// Entity is the snapshot of the record whose status is being changed.
type Entity struct {
	Kind          string
	ID            int64
	UserID        *int64 // nil for unclaimed guest records
	ReferenceCode string
	CustomerName  string
	CustomerPhone string
	CurrentStatus string
	QuotedPrice   *float64 // custom requests only
}

// Request is one invocation of the transition flow.
//
// The operator-facing modal becomes a two-step handshake over HTTP: a first
// call without Confirmed/SkipMessage returns a Draft and commits nothing;
// the follow-up call carries the (possibly edited) Message and Confirmed,
// or SkipMessage to commit without messaging.
type Request struct {
	Entity      Entity
	NewStatus   string
	Message     string
	SkipMessage bool
	Confirmed   bool
}

// Result reports what the engine did.
type Result struct {
	Committed        bool
	Draft            string // non-empty when the commit is waiting on confirmation
	NotificationSent bool
	WhatsAppLink     string
}

// Store persists the status change. For orders the implementation also
// refreshes the tracking step flags.
type Store interface {
	UpdateStatus(kind string, id int64, newStatus string, now time.Time) error
}

// Notifier writes the in-app notification record.
type Notifier interface {
	Notify(userID int64, notifType, title, message, link string) error
}

// Engine applies status transitions. All collaborators are injected; the
// engine holds no ambient state.
type Engine struct {
	store       Store
	notifier    Notifier
	logger      *log.Logger
	countryCode string
}

func NewEngine(store Store, notifier Notifier, logger *log.Logger, countryCode string) *Engine {
	return &Engine{store: store, notifier: notifier, logger: logger, countryCode: countryCode}
}

// Apply runs one transition request. The commit is gated: when the entity
// has a phone number and neither Confirmed nor SkipMessage is set, Apply
// returns a Draft message and writes nothing. A persistence failure is
// returned as-is with no side effects; a notification failure is logged
// and swallowed.
func (e *Engine) Apply(req Request) (Result, error) {
	ent := req.Entity

	statuses, err := statusesFor(ent.Kind)
	if err != nil {
		return Result{}, err
	}
	if !contains(statuses, req.NewStatus) {
		return Result{}, fmt.Errorf("%w: %q is not a valid %s status", ErrUnknownStatus, req.NewStatus, ent.Kind)
	}

	// Same label: direct write, no message step, no notification.
	if req.NewStatus == ent.CurrentStatus {
		if err := e.store.UpdateStatus(ent.Kind, ent.ID, req.NewStatus, time.Now()); err != nil {
			return Result{}, err
		}
		return Result{Committed: true}, nil
	}

	// Outbound channel exists and the operator has neither confirmed nor
	// skipped: hand back the draft and wait.
	if ent.CustomerPhone != "" && !req.Confirmed && !req.SkipMessage {
		return Result{Draft: DraftMessage(ent, req.NewStatus)}, nil
	}

	if err := e.store.UpdateStatus(ent.Kind, ent.ID, req.NewStatus, time.Now()); err != nil {
		return Result{}, err
	}
	res := Result{Committed: true}

	// Best-effort notification. Guests have no account to notify.
	if ent.UserID != nil {
		notifType, title, link := notificationMeta(ent)
		if err := e.notifier.Notify(*ent.UserID, notifType, title, Summary(ent, req.NewStatus), link); err != nil {
			e.logger.Printf("notification write failed for %s %d: %v", ent.Kind, ent.ID, err)
		} else {
			res.NotificationSent = true
		}
	}

	// Fire-and-forget: build the outbound link after the commit succeeded.
	if req.Message != "" && ent.CustomerPhone != "" {
		res.WhatsAppLink = whatsapp.Link(ent.CustomerPhone, e.countryCode, req.Message)
	}

	return res, nil
}

// Summary is the one-line change description used as the notification body.
func Summary(ent Entity, newStatus string) string {
	switch ent.Kind {
	case KindCustomRequest:
		msg := fmt.Sprintf("Your custom cake request %s is now %s.", ent.ReferenceCode, humanize(newStatus))
		if newStatus == "approved" && ent.QuotedPrice != nil {
			msg += fmt.Sprintf(" Quoted price: %s.", formatAmount(*ent.QuotedPrice))
		}
		return msg
	default:
		return fmt.Sprintf("Your order %s is now %s.", ent.ReferenceCode, humanize(newStatus))
	}
}

// DraftMessage is the prefilled multi-line WhatsApp message presented to the
// operator for editing before the commit.
func DraftMessage(ent Entity, newStatus string) string {
	name := ent.CustomerName
	if name == "" {
		name = "there"
	}

	switch ent.Kind {
	case KindCustomRequest:
		msg := fmt.Sprintf("Hi %s!\n\nAn update on your custom cake request %s: it is now %s.",
			name, ent.ReferenceCode, humanize(newStatus))
		if newStatus == "approved" && ent.QuotedPrice != nil {
			msg += fmt.Sprintf("\nQuoted price: %s.", formatAmount(*ent.QuotedPrice))
		}
		msg += "\n\nThank you for baking with us!"
		return msg
	default:
		return fmt.Sprintf("Hi %s!\n\nAn update on your order %s: it is now %s.\nTrack it any time with your reference code.\n\nThank you for baking with us!",
			name, ent.ReferenceCode, humanize(newStatus))
	}
}

func notificationMeta(ent Entity) (notifType, title, link string) {
	switch ent.Kind {
	case KindCustomRequest:
		return "request_status", "Custom request update", "/custom-requests/" + ent.ReferenceCode
	default:
		return "order_status", "Order update", "/orders/track/" + ent.ReferenceCode
	}
}

func statusesFor(kind string) ([]string, error) {
	switch kind {
	case KindOrder:
		return models.OrderStatuses, nil
	case KindCustomRequest:
		return models.RequestStatuses, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func humanize(status string) string {
	switch status {
	case "out_for_delivery":
		return "out for delivery"
	default:
		return status
	}
}

// formatAmount renders a price without trailing zeros, so 1500.0 prints
// as "1500" and 49.5 as "49.5".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
