// Package audit records product creation events, either straight to the
// audit log or through a RabbitMQ queue drained by Consumer.
package audit

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"

	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/pkg/rabbitmq"
)

// LoggerName tags every audit line.
const LoggerName = "AUDIT_LOGGER"

// Line renders the audit line for e.
func Line(e models.ProductCreatedEvent) string {
	return fmt.Sprintf("Product added: id=%d, name='%s', by user='%s'", e.ProductID, e.Name, e.Username)
}

// LogPublisher writes events to the audit logger.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher returns a LogPublisher writing through l, or the package
// logger when l is nil.
func NewLogPublisher(l *logger.Logger) *LogPublisher {
	if l == nil {
		l = logger.Std()
	}
	return &LogPublisher{log: l.Named(LoggerName)}
}

func (p *LogPublisher) PublishProductCreated(e models.ProductCreatedEvent) error {
	p.log.Info(Line(e), logger.Fields{
		"product_id":  e.ProductID,
		"username":    e.Username,
		"occurred_at": e.OccurredAt,
	})
	return nil
}

// JSONPublisher is the part of rabbitmq.Client used for publishing.
type JSONPublisher interface {
	PublishJSON(messageID string, v interface{}) error
}

// AMQPPublisher sends events to the audit queue.
type AMQPPublisher struct {
	client JSONPublisher
}

func NewAMQPPublisher(client JSONPublisher) *AMQPPublisher {
	return &AMQPPublisher{client: client}
}

func (p *AMQPPublisher) PublishProductCreated(e models.ProductCreatedEvent) error {
	return p.client.PublishJSON(uuid.NewString(), e)
}

// Consumer drains the audit queue into a LogPublisher.
type Consumer struct {
	sink *LogPublisher
}

func NewConsumer(sink *LogPublisher) *Consumer {
	return &Consumer{sink: sink}
}

// Handle writes the event carried by msg. Undecodable bodies wrap
// rabbitmq.ErrReject so they are dropped.
func (c *Consumer) Handle(msg amqp.Delivery) error {
	var e models.ProductCreatedEvent
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		return fmt.Errorf("decode audit message %s: %v: %w", msg.MessageId, err, rabbitmq.ErrReject)
	}
	if e.ProductID == 0 {
		return fmt.Errorf("audit message %s has no product id: %w", msg.MessageId, rabbitmq.ErrReject)
	}
	return c.sink.PublishProductCreated(e)
}
