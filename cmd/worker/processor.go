package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/imrishuroy/go-checkout-reconciler/internal/aws"
)

// Processor fans order lifecycle events out to the notifier.
type Processor struct {
	notifier Notifier
}

// NewProcessor returns a Processor using the given notifier.
func NewProcessor(n Notifier) *Processor {
	return &Processor{notifier: n}
}

// Handle receives an SQS batch event and processes each message. Returning
// an error makes the runtime redeliver the batch; notification sends must
// therefore tolerate repeats on the collaborator side.
func (p *Processor) Handle(ctx context.Context, ev lambdaevents.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Printf("worker error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec lambdaevents.SQSMessage) error {
	var ev aws.OrderEvent
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	log.Printf("[worker] received type=%s order=%s", ev.Type, ev.OrderID)

	switch ev.Type {
	case aws.EventOrderPaid:
		if err := p.notifier.OrderPaid(ctx, ev.OrderID, ev.UserID, ev.TotalPrice); err != nil {
			return fmt.Errorf("notify paid order=%s: %w", ev.OrderID, err)
		}
	case aws.EventOrderDelivered:
		if err := p.notifier.OrderDelivered(ctx, ev.OrderID, ev.UserID); err != nil {
			return fmt.Errorf("notify delivered order=%s: %w", ev.OrderID, err)
		}
	default:
		// unknown types are logged and dropped, not retried
		log.Printf("[worker] skipping unknown event type %q", ev.Type)
	}
	return nil
}

// logNotifier is the default Notifier: it records what would be sent. The
// real delivery integration replaces it at the composition root.
type logNotifier struct{}

func (logNotifier) OrderPaid(ctx context.Context, orderID, userID string, totalPrice int64) error {
	log.Printf("[notify] order %s paid by %s, total %d", orderID, userID, totalPrice)
	return nil
}

func (logNotifier) OrderDelivered(ctx context.Context, orderID, userID string) error {
	log.Printf("[notify] order %s delivered to %s", orderID, userID)
	return nil
}
