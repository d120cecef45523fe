package webhook

import (
	"context"
	"fmt"
	"log"

	"github.com/imrishuroy/go-checkout-reconciler/internal/aws"
	"github.com/imrishuroy/go-checkout-reconciler/internal/orders"
)

// Result is what the handler needs to answer the gateway.
type Result struct {
	Duplicate bool
	Status    string // processed | ignored
	Note      string
}

// Processor reconciles verified gateway deliveries against the order ledger.
type Processor struct {
	events    *Store
	orders    *orders.Store
	publisher *aws.Publisher
	metrics   *aws.Metrics
}

// NewProcessor wires the processor's stores and side-effect sinks.
// publisher and metrics may be nil in tests.
func NewProcessor(events *Store, orderStore *orders.Store, publisher *aws.Publisher, metrics *aws.Metrics) *Processor {
	return &Processor{
		events:    events,
		orders:    orderStore,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Process handles one verified delivery. A transport failure reaching the
// dedup store is returned as an error so the handler answers retryable;
// everything else resolves to a recorded row and an acknowledgement.
//
// Ordering: the outcome is decided from a fresh read, the event row is
// inserted with that outcome (the insert is the at-most-once gate), and only
// then is the ledger mutated. The ledger mutation is a compare-and-swap, so
// losing a race with the client-verification path converges to a no-op.
func (p *Processor) Process(ctx context.Context, d Delivery) (*Result, error) {
	key := DedupeKey(d)

	order, outcome, note, err := p.decide(ctx, d)
	if err != nil {
		return nil, err
	}

	created, err := p.events.Insert(ctx, Event{
		DedupeKey: key,
		EventType: d.EventType,
		PaymentID: d.PaymentID,
		IntentID:  d.IntentID,
		Status:    outcome,
		Note:      note,
	})
	if err != nil {
		return nil, fmt.Errorf("dedup insert: %w", err)
	}
	if !created {
		log.Printf("[webhook] duplicate delivery key=%s type=%s", key, d.EventType)
		p.metrics.Count(ctx, aws.MetricWebhookDuplicate)
		return &Result{Duplicate: true, Status: StatusIgnored, Note: "duplicate delivery"}, nil
	}

	if outcome != StatusProcessed {
		log.Printf("[webhook] ignored key=%s type=%s note=%q", key, d.EventType, note)
		p.metrics.Count(ctx, aws.MetricWebhookIgnored)
		if order == nil && note == noteNoOrder {
			p.metrics.Count(ctx, aws.MetricWebhookUnmatched)
		}
		return &Result{Status: StatusIgnored, Note: note}, nil
	}

	if err := p.apply(ctx, order, d); err != nil {
		return nil, err
	}
	p.metrics.Count(ctx, aws.MetricWebhookProcessed)
	return &Result{Status: StatusProcessed}, nil
}

const noteNoOrder = "no order recorded for intent"

// decide reads current state and picks the outcome to record. It mutates
// nothing.
func (p *Processor) decide(ctx context.Context, d Delivery) (*orders.Order, string, string, error) {
	if d.EventType != EventPaymentCaptured && d.EventType != EventPaymentFailed {
		return nil, StatusIgnored, fmt.Sprintf("unhandled event type %s", d.EventType), nil
	}

	order, err := p.orders.GetByIntentID(ctx, d.IntentID)
	if err != nil {
		return nil, "", "", fmt.Errorf("lookup order for intent %s: %w", d.IntentID, err)
	}
	if order == nil {
		// Cross-environment key reuse or a forged-but-signed event: record
		// and surface via metric, do not fail the delivery.
		return nil, StatusIgnored, noteNoOrder, nil
	}
	if order.PaymentStatus.Terminal() {
		return order, StatusIgnored, fmt.Sprintf("payment already %s", order.PaymentStatus), nil
	}
	return order, StatusProcessed, "", nil
}

// apply performs the ledger side effect for a freshly-claimed event.
func (p *Processor) apply(ctx context.Context, order *orders.Order, d Delivery) error {
	target := orders.PaymentPaid
	if d.EventType == EventPaymentFailed {
		target = orders.PaymentFailed
	}

	err := p.orders.MarkPaymentStatus(ctx, order.OrderID, orders.PaymentProcessing, target, d.PaymentID)
	if err == orders.ErrPaymentStateConflict {
		// The verify path (or a competing instance) got there first. Re-read
		// and treat an order already in the target state as converged.
		current, gerr := p.orders.Get(ctx, order.OrderID)
		if gerr != nil {
			return fmt.Errorf("re-read after payment conflict: %w", gerr)
		}
		if current != nil && current.PaymentStatus == target {
			log.Printf("[webhook] order=%s already %s, converged", order.OrderID, target)
			return nil
		}
		log.Printf("[webhook] order=%s in state %s, cannot apply %s", order.OrderID, current.PaymentStatus, d.EventType)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark payment %s: %w", target, err)
	}

	if target == orders.PaymentPaid && p.publisher != nil {
		ev := aws.OrderEvent{
			Type:       aws.EventOrderPaid,
			OrderID:    order.OrderID,
			UserID:     order.UserID,
			PaymentID:  d.PaymentID,
			TotalPrice: order.TotalPrice,
		}
		if perr := p.publisher.PublishOrderEvent(ctx, ev); perr != nil {
			// The ledger is already consistent; a retry from the gateway
			// would dedupe out, so log instead of failing the delivery.
			log.Printf("[webhook] publish paid event order=%s: %v", order.OrderID, perr)
		}
	}
	return nil
}
