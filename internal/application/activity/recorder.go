// Package activity keeps the tenant audit trail. Recorder turns domain
// events into log rows; Service lists them.
package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agency/backoffice/internal/domain/activity"
	"github.com/agency/backoffice/internal/domain/crm"
	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var actions = map[string]string{
	ledger.EventTypeTransactionCreated:       "ledger.transaction.created",
	ledger.EventTypeTransactionUpdated:       "ledger.transaction.updated",
	ledger.EventTypeTransactionStatusChanged: "ledger.transaction.status_changed",
	ledger.EventTypeTransactionDeleted:       "ledger.transaction.deleted",
	crm.EventTypeContactCreated:              "crm.contact.created",
	crm.EventTypeContactUpdated:              "crm.contact.updated",
	crm.EventTypeContactDeleted:              "crm.contact.deleted",
	crm.EventTypeReceivableOpened:            "crm.receivable.opened",
	crm.EventTypeReceivablePaymentApplied:    "crm.receivable.payment_applied",
	crm.EventTypeReceivableStatusChanged:     "crm.receivable.status_changed",
	crm.EventTypeReceivableRemoved:           "crm.receivable.removed",
}

// Recorder is an event handler that writes one activity log per event
type Recorder struct {
	repo   activity.Repository
	logger *zap.Logger
}

var _ shared.EventHandler = (*Recorder)(nil)

// NewRecorder creates a Recorder
func NewRecorder(repo activity.Repository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// EventTypes lists every ledger and contact event
func (r *Recorder) EventTypes() []string {
	types := make([]string, 0, len(actions))
	for t := range actions {
		types = append(types, t)
	}
	return types
}

// Handle persists the event. The acting user is taken from ctx.
func (r *Recorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	action, ok := actions[event.EventType()]
	if !ok {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event.EventType(), err)
	}

	log := &activity.Log{
		ID:         uuid.New(),
		TenantID:   event.TenantID(),
		Action:     action,
		EntityType: event.AggregateType(),
		EntityID:   event.AggregateID(),
		Summary:    summarize(event),
		Payload:    payload,
		OccurredAt: event.OccurredAt(),
	}
	if actor, ok := shared.ActorFromContext(ctx); ok {
		log.ActorID = &actor
	}

	if err := r.repo.Save(ctx, log); err != nil {
		return fmt.Errorf("save activity log: %w", err)
	}
	r.logger.Debug("Activity recorded",
		zap.String("action", action),
		zap.String("entity_id", log.EntityID.String()))
	return nil
}

func summarize(event shared.DomainEvent) string {
	switch e := event.(type) {
	case *ledger.TransactionCreatedEvent:
		return fmt.Sprintf("%s %s created for %s (%s, %s)", e.Type, e.InvoiceNumber, e.Amount.StringFixed(2), e.Status, e.PaymentMethod)
	case *ledger.TransactionUpdatedEvent:
		return fmt.Sprintf("%s updated, amount %s", e.InvoiceNumber, e.Amount.StringFixed(2))
	case *ledger.TransactionStatusChangedEvent:
		return fmt.Sprintf("%s marked %s", e.InvoiceNumber, e.NewStatus)
	case *ledger.TransactionDeletedEvent:
		return fmt.Sprintf("%s %s deleted (%s)", e.Type, e.InvoiceNumber, e.Amount.StringFixed(2))
	case *crm.ContactCreatedEvent:
		return fmt.Sprintf("%s %s created", e.Type, e.Name)
	case *crm.ContactUpdatedEvent:
		return fmt.Sprintf("Contact %s updated", e.Name)
	case *crm.ContactDeletedEvent:
		return fmt.Sprintf("Contact %s deleted", e.Name)
	case *crm.ReceivableEvent:
		switch e.EventType() {
		case crm.EventTypeReceivableOpened:
			return fmt.Sprintf("Receivable %s opened for %s: %s", e.QuotationRef, e.ContactName, e.Amount.StringFixed(2))
		case crm.EventTypeReceivablePaymentApplied:
			return fmt.Sprintf("%s paid %s against %s, %s remaining", e.ContactName, e.Amount.StringFixed(2), e.QuotationRef, e.Remaining.StringFixed(2))
		case crm.EventTypeReceivableStatusChanged:
			return fmt.Sprintf("Receivable %s of %s marked %s", e.QuotationRef, e.ContactName, e.Status)
		case crm.EventTypeReceivableRemoved:
			return fmt.Sprintf("Receivable %s of %s removed", e.QuotationRef, e.ContactName)
		}
	}
	return event.EventType()
}
