package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dhis2-sre/im-atlas/internal/middleware"
	"github.com/dhis2-sre/im-atlas/pkg/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventStatusChangedQueue receives a message whenever the status of an event changes.
const EventStatusChangedQueue = "event-status-changed"

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type statusChangeHandler interface {
	HandleEventStatusChange(ctx context.Context, eventID string, previous, current model.EventStatus) bool
}

func NewConsumer(logger *slog.Logger, channel channel, handler statusChangeHandler) *Consumer {
	return &Consumer{
		logger:  logger,
		channel: channel,
		handler: handler,
	}
}

type Consumer struct {
	logger  *slog.Logger
	channel channel
	handler statusChangeHandler
}

// EventStatusChanged is the payload of messages on the event-status-changed queue.
type EventStatusChanged struct {
	EventID        string            `json:"eventId"`
	PreviousStatus model.EventStatus `json:"previousStatus"`
	Status         model.EventStatus `json:"status"`
}

// Consume handles messages until ctx is done or the channel is closed.
func (c *Consumer) Consume(ctx context.Context) error {
	_, err := c.channel.QueueDeclare(EventStatusChangedQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %q: %v", EventStatusChangedQueue, err)
	}

	deliveries, err := c.channel.ConsumeWithContext(ctx, EventStatusChangedQueue, "im-atlas", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %q: %v", EventStatusChangedQueue, err)
	}

	c.logger.InfoContext(ctx, "Consuming event status changes", "queue", EventStatusChangedQueue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("event status delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	if d.CorrelationId != "" {
		ctx = middleware.NewContextWithCorrelationID(ctx, d.CorrelationId)
	}

	var payload EventStatusChanged
	err := json.Unmarshal(d.Body, &payload)
	if err == nil && payload.EventID == "" {
		err = errors.New("event id is missing")
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "Error unmarshalling event status message", "queue", EventStatusChangedQueue, "error", err)
		err := d.Nack(false, false)
		if err != nil {
			c.logger.ErrorContext(ctx, "Error negatively acknowledging event status message", "error", err)
		}
		return
	}

	started := c.handler.HandleEventStatusChange(ctx, payload.EventID, payload.PreviousStatus, payload.Status)
	c.logger.InfoContext(ctx, "Handled event status change",
		"eventId", payload.EventID,
		"previousStatus", payload.PreviousStatus,
		"status", payload.Status,
		"cleanupStarted", started,
	)

	err = d.Ack(false)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error acknowledging event status message", "eventId", payload.EventID, "error", err)
	}
}
