package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is pushed to the operations exchange when a retried operation exhausts
// its budget or the health monitor detects degradation.
type Alert struct {
	ID        uuid.UUID              `json:"id"`
	Source    string                 `json:"source"`
	Severity  Severity               `json:"severity"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

type Publisher struct {
	client *RabbitMQClient
}

func NewPublisher(client *RabbitMQClient) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishAlert(alert Alert) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("no connection to RabbitMQ")
	}

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("alert serialization error: %w", err)
	}

	routingKey := fmt.Sprintf("alerts.%s.%s", alert.Source, alert.Severity)

	err = p.client.Channel().Publish(
		p.client.config.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    alert.ID.String(),
			Timestamp:    alert.Timestamp,
			Headers: amqp.Table{
				"source":   alert.Source,
				"severity": string(alert.Severity),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("alert publish error: %w", err)
	}

	return nil
}
