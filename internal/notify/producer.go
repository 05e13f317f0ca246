package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-reservation/internal/config"
	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
)

// Dispatcher is the fire-and-forget notification boundary. Delivery
// failure never rolls back the inventory transaction that triggered
// it, so every method returns nothing and logs its own errors.
type Dispatcher interface {
	TicketIssued(ticket models.Ticket)
	TicketCancelled(ticket models.Ticket, refund float64)
	SeatFreed(tripID, seatNumber string, fromPos, toPos int)
}

type seatFreedEvent struct {
	TripID       string `json:"trip_id"`
	SeatNumber   string `json:"seat_number"`
	FromPosition int    `json:"from_position"`
	ToPosition   int    `json:"to_position"`
}

type ticketCancelledEvent struct {
	Ticket models.Ticket `json:"ticket"`
	Refund float64       `json:"refund"`
}

type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
	Logger *logger.Logger
}

func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

func (p *Producer) publish(topic, key string, payload interface{}) {
	go func() {
		value, err := json.Marshal(payload)
		if err != nil {
			p.Logger.Error("NOTIFY", fmt.Sprintf("Failed to marshal %s payload: %v", topic, err))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err = p.Writer.WriteMessages(ctx, kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		})
		if err != nil {
			p.Logger.Error("NOTIFY", fmt.Sprintf("Failed to publish to %s: %v", topic, err))
			return
		}
		p.Logger.Info("NOTIFY", fmt.Sprintf("Published %s for %s", topic, key))
	}()
}

func (p *Producer) TicketIssued(ticket models.Ticket) {
	p.publish(p.Topics.TicketIssued, ticket.ID, ticket)
}

func (p *Producer) TicketCancelled(ticket models.Ticket, refund float64) {
	p.publish(p.Topics.TicketCancelled, ticket.ID, ticketCancelledEvent{Ticket: ticket, Refund: refund})
}

func (p *Producer) SeatFreed(tripID, seatNumber string, fromPos, toPos int) {
	p.publish(p.Topics.SeatFreed, tripID+":"+seatNumber, seatFreedEvent{
		TripID:       tripID,
		SeatNumber:   seatNumber,
		FromPosition: fromPos,
		ToPosition:   toPos,
	})
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// Noop is used when kafka is disabled.
type Noop struct{}

func (Noop) TicketIssued(models.Ticket)             {}
func (Noop) TicketCancelled(models.Ticket, float64) {}
func (Noop) SeatFreed(string, string, int, int)     {}
