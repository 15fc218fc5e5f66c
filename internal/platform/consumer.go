package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"meetup-service/internal/actions"
	"meetup-service/internal/models"
	"meetup-service/internal/repositories"
)

// Update is the envelope the transport worker forwards for every inbound
// platform update the service cares about.
type Update struct {
	Type      string          `json:"type"`
	ChatID    int64           `json:"chat_id,omitempty"`
	UserID    int64           `json:"user_id,omitempty"`
	PollID    string          `json:"poll_id,omitempty"`
	OptionIDs []int           `json:"option_ids,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Consumer feeds inbound platform updates into the vote ledger and the
// action dispatcher.
type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	queue      string
	events     repositories.EventRepository
	votes      repositories.VoteRepository
	dispatcher *actions.Dispatcher
	now        func() time.Time
}

// NewConsumer connects to the broker and declares the updates queue.
func NewConsumer(amqpURL, queue string, events repositories.EventRepository, votes repositories.VoteRepository, dispatcher *actions.Dispatcher) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Consumer{
		conn:       conn,
		ch:         ch,
		queue:      queue,
		events:     events,
		votes:      votes,
		dispatcher: dispatcher,
		now:        time.Now,
	}, nil
}

// Run consumes updates until the context is cancelled. A bad update is
// logged and acknowledged; it never wedges the queue.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	log.Printf("platform consumer started queue=%s", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("updates channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				log.Printf("platform update failed: %v", err)
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}

	switch update.Type {
	case "poll_answer":
		return c.handlePollAnswer(ctx, update)
	case "form_submission":
		action, err := actions.Decode(update.Data)
		if err != nil {
			return err
		}
		return c.dispatcher.Execute(ctx, update.ChatID, update.UserID, action)
	default:
		return fmt.Errorf("unknown update type %q", update.Type)
	}
}

func (c *Consumer) handlePollAnswer(ctx context.Context, update Update) error {
	// Answers for polls we did not create are not ours to record.
	if _, err := c.events.GetEventByPoll(ctx, update.PollID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil
		}
		return err
	}

	// An empty option list is a retracted answer.
	var optionID *int
	if len(update.OptionIDs) > 0 {
		idx := update.OptionIDs[0]
		if idx < 0 || idx >= len(models.PollOptions) {
			return fmt.Errorf("option index %d outside the poll's %d options", idx, len(models.PollOptions))
		}
		optionID = &idx
	}
	return c.votes.RecordVote(ctx, update.PollID, update.UserID, optionID, c.now())
}

// Close releases the broker connection.
func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
