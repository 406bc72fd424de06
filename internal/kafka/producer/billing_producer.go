package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
)

// Topics for subscription lifecycle and billing events. The external
// billing collaborator consumes billing.due and creates the invoice.
const (
	TopicSubscriptionCreated   = "subscription.created"
	TopicSubscriptionRenewed   = "subscription.renewed"
	TopicSubscriptionPaused    = "subscription.paused"
	TopicSubscriptionResumed   = "subscription.resumed"
	TopicSubscriptionCancelled = "subscription.cancelled"
	TopicSubscriptionExpired   = "subscription.expired"
	TopicBillingDue            = "billing.due"
)

// SubscriptionEvent is the wire form of a lifecycle event
type SubscriptionEvent struct {
	SubscriptionID string                    `json:"subscription_id"`
	CustomerID     string                    `json:"customer_id"`
	MerchantID     string                    `json:"merchant_id"`
	Status         domain.SubscriptionStatus `json:"status"`
	Amount         float64                   `json:"amount"`
	Currency       string                    `json:"currency"`
	BillingCycle   domain.BillingCycle       `json:"billing_cycle"`
	NextBilling    time.Time                 `json:"next_billing_date"`
	Timestamp      time.Time                 `json:"timestamp"`
}

// BillingProducer publishes subscription lifecycle and billing events
type BillingProducer interface {
	PublishSubscriptionCreated(ctx context.Context, sub domain.Subscription) error
	PublishSubscriptionRenewed(ctx context.Context, sub domain.Subscription) error
	PublishSubscriptionPaused(ctx context.Context, sub domain.Subscription) error
	PublishSubscriptionResumed(ctx context.Context, sub domain.Subscription) error
	PublishSubscriptionCancelled(ctx context.Context, sub domain.Subscription) error
	PublishSubscriptionExpired(ctx context.Context, sub domain.Subscription) error
	PublishBillingDue(ctx context.Context, sub domain.Subscription) error
	Close() error
}

type kafkaBillingProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaBillingProducer creates a Kafka-backed billing event producer
func NewKafkaBillingProducer(producer sarama.SyncProducer, log *logger.Logger) BillingProducer {
	return &kafkaBillingProducer{
		producer: producer,
		log:      log,
	}
}

// PublishSubscriptionCreated publishes a creation event
func (p *kafkaBillingProducer) PublishSubscriptionCreated(ctx context.Context, sub domain.Subscription) error {
	return p.publishEvent(ctx, TopicSubscriptionCreated, sub)
}

// PublishSubscriptionRenewed publishes a renewal event
func (p *kafkaBillingProducer) PublishSubscriptionRenewed(ctx context.Context, sub domain.Subscription) error {
	return p.publishEvent(ctx, TopicSubscriptionRenewed, sub)
}

// PublishSubscriptionPaused publishes a pause event
func (p *kafkaBillingProducer) PublishSubscriptionPaused(ctx context.Context, sub domain.Subscription) error {
	return p.publishEvent(ctx, TopicSubscriptionPaused, sub)
}

// PublishSubscriptionResumed publishes a resume event
func (p *kafkaBillingProducer) PublishSubscriptionResumed(ctx context.Context, sub domain.Subscription) error {
	return p.publishEvent(ctx, TopicSubscriptionResumed, sub)
}

// PublishSubscriptionCancelled publishes a cancellation event
func (p *kafkaBillingProducer) PublishSubscriptionCancelled(ctx context.Context, sub domain.Subscription) error {
	return p.publishEvent(ctx, TopicSubscriptionCancelled, sub)
}

// PublishSubscriptionExpired publishes an expiry event
func (p *kafkaBillingProducer) PublishSubscriptionExpired(ctx context.Context, sub domain.Subscription) error {
	return p.publishEvent(ctx, TopicSubscriptionExpired, sub)
}

// PublishBillingDue tells the billing collaborator a cycle fired and an
// invoice is owed
func (p *kafkaBillingProducer) PublishBillingDue(ctx context.Context, sub domain.Subscription) error {
	return p.publishEvent(ctx, TopicBillingDue, sub)
}

// Close shuts down the underlying producer
func (p *kafkaBillingProducer) Close() error {
	return p.producer.Close()
}

func (p *kafkaBillingProducer) publishEvent(ctx context.Context, topic string, sub domain.Subscription) error {
	event := SubscriptionEvent{
		SubscriptionID: sub.ID.String(),
		CustomerID:     sub.CustomerID.String(),
		MerchantID:     sub.MerchantID.String(),
		Status:         sub.Status,
		Amount:         sub.Amount,
		Currency:       sub.Currency,
		BillingCycle:   sub.BillingCycle,
		NextBilling:    sub.NextBillingDate,
		Timestamp:      time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.SubscriptionID),
		Value: sarama.ByteEncoder(data),
	}

	// Transient broker errors are retried briefly; persistent failure
	// is surfaced to the caller who logs and moves on
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	err = backoff.Retry(func() error {
		_, _, sendErr := p.producer.SendMessage(msg)
		return sendErr
	}, policy)
	if err != nil {
		p.log.Errorw("Failed to publish event", "error", err, "topic", topic, "subscriptionID", event.SubscriptionID)
		return fmt.Errorf("failed to publish %s event: %w", topic, err)
	}

	p.log.Debugw("Published event", "topic", topic, "subscriptionID", event.SubscriptionID)
	return nil
}

type noopBillingProducer struct {
	log *logger.Logger
}

// NewNoopBillingProducer creates a producer that drops every event.
// Used when the broker is disabled, mainly in development and tests.
func NewNoopBillingProducer(log *logger.Logger) BillingProducer {
	return &noopBillingProducer{log: log}
}

func (p *noopBillingProducer) publish(topic string, sub domain.Subscription) error {
	p.log.Debugw("Event dropped, broker disabled", "topic", topic, "subscriptionID", sub.ID)
	return nil
}

func (p *noopBillingProducer) PublishSubscriptionCreated(ctx context.Context, sub domain.Subscription) error {
	return p.publish(TopicSubscriptionCreated, sub)
}

func (p *noopBillingProducer) PublishSubscriptionRenewed(ctx context.Context, sub domain.Subscription) error {
	return p.publish(TopicSubscriptionRenewed, sub)
}

func (p *noopBillingProducer) PublishSubscriptionPaused(ctx context.Context, sub domain.Subscription) error {
	return p.publish(TopicSubscriptionPaused, sub)
}

func (p *noopBillingProducer) PublishSubscriptionResumed(ctx context.Context, sub domain.Subscription) error {
	return p.publish(TopicSubscriptionResumed, sub)
}

func (p *noopBillingProducer) PublishSubscriptionCancelled(ctx context.Context, sub domain.Subscription) error {
	return p.publish(TopicSubscriptionCancelled, sub)
}

func (p *noopBillingProducer) PublishSubscriptionExpired(ctx context.Context, sub domain.Subscription) error {
	return p.publish(TopicSubscriptionExpired, sub)
}

func (p *noopBillingProducer) PublishBillingDue(ctx context.Context, sub domain.Subscription) error {
	return p.publish(TopicBillingDue, sub)
}

func (p *noopBillingProducer) Close() error {
	return nil
}
