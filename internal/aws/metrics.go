package aws

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the reconciliation paths.
const (
	MetricWebhookProcessed   = "WebhookProcessed"
	MetricWebhookDuplicate   = "WebhookDuplicate"
	MetricWebhookIgnored     = "WebhookIgnored"
	MetricWebhookUnmatched   = "UnmatchedWebhook"
	MetricVerifyFailed       = "PaymentVerifyFailed"
	MetricGatewayUnavailable = "GatewayUnavailable"
)

// Metrics emits counters to CloudWatch. Emission is best-effort: a metrics
// failure must never fail the request that produced it.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
}

// NewMetrics returns a Metrics emitter for the given namespace.
func NewMetrics(client CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{client: client, namespace: namespace}
}

// Count increments a counter metric by 1.
func (m *Metrics) Count(ctx context.Context, name string) {
	if m == nil || m.client == nil {
		return
	}
	value := 1.0
	now := time.Now().UTC()
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      &value,
			},
		},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		log.Printf("[metrics] put %s: %v", name, err)
	}
}
