package main

import (
	"strconv"
	"time"

	"github.com/angelmondragon/oms-backend/pkg/db/models"
	"github.com/angelmondragon/oms-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/oms-backend/pkg/outbox/registry"
)

// orderingKey keeps every event of one order on the same Pub/Sub ordering
// key so subscribers see create, replace, status and delete in commit order.
func orderingKey(event models.OutboxEvent) string {
	return "order:" + strconv.FormatInt(event.AggregateID, 10)
}

// messageAttributes are the Pub/Sub attributes subscriptions filter on.
// customer_id and order_status come from the decoded payload when present.
func messageAttributes(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]string {
	attrs := map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   strconv.FormatInt(event.AggregateID, 10),
		"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
	}
	if resolved.Envelope.RequestID != "" {
		attrs["request_id"] = resolved.Envelope.RequestID
	}

	var customerID int64
	switch p := resolved.Payload.(type) {
	case *payloads.OrderCreatedEvent:
		customerID = p.CustomerID
		attrs["order_status"] = string(p.Status)
		attrs["total_cents"] = strconv.FormatInt(p.TotalCents, 10)
	case *payloads.OrderItemsReplacedEvent:
		customerID = p.CustomerID
		attrs["total_cents"] = strconv.FormatInt(p.TotalCents, 10)
	case *payloads.OrderStatusChangedEvent:
		customerID = p.CustomerID
		attrs["order_status"] = string(p.To)
		attrs["previous_status"] = string(p.From)
	case *payloads.OrderDeletedEvent:
		customerID = p.CustomerID
		attrs["order_status"] = string(p.Status)
	}
	if customerID > 0 {
		attrs["customer_id"] = strconv.FormatInt(customerID, 10)
	}
	for key, value := range attrs {
		if value == "" {
			delete(attrs, key)
		}
	}
	return attrs
}
