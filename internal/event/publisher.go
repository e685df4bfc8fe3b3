package event

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"mentorship-service/internal/models"

	"github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	PublishConnectionEvent(event *models.ConnectionEvent) error
	PublishMessageEvent(event *models.MessageSentEvent) error
	Close() error
}

type EventPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
}

func NewEventPublisher(rabbitURI string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{
			exchange: "mentorship.events",
			enabled:  false,
		}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	exchange := "mentorship.events"
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Printf("Event publisher initialized with exchange: %s", exchange)

	return &EventPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
	}, nil
}

func (p *EventPublisher) publish(eventType models.EventType, headers amqp091.Table, payload any) error {
	if !p.enabled {
		log.Printf("Event publishing disabled, skipping event: %s", eventType)
		return nil
	}

	eventData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.Publish(
		p.exchange,        // exchange
		string(eventType), // routing key
		false,             // mandatory
		false,             // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         eventData,
			Headers:      headers,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event: %s", eventType)
	return nil
}

func (p *EventPublisher) PublishConnectionEvent(event *models.ConnectionEvent) error {
	return p.publish(event.Type, amqp091.Table{
		"event_type":    string(event.Type),
		"connection_id": event.ConnectionID,
	}, event)
}

func (p *EventPublisher) PublishMessageEvent(event *models.MessageSentEvent) error {
	return p.publish(event.Type, amqp091.Table{
		"event_type":    string(event.Type),
		"connection_id": event.ConnectionID,
		"room_id":       event.RoomID,
	}, event)
}

func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}

	return nil
}

type MockPublisher struct {
	ConnectionEvents []models.ConnectionEvent
	MessageEvents    []models.MessageSentEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishConnectionEvent(event *models.ConnectionEvent) error {
	m.ConnectionEvents = append(m.ConnectionEvents, *event)
	return nil
}

func (m *MockPublisher) PublishMessageEvent(event *models.MessageSentEvent) error {
	m.MessageEvents = append(m.MessageEvents, *event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}
