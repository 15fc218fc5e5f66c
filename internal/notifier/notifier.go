package notifier

import (
	"context"

	"meetup-service/internal/rabbitmq"
)

// Notifier is the outbound half of the chat transport. The core hands it
// rendered content; platform formatting, rate limits and retries belong
// to the transport worker consuming these commands. Posting the event
// card and poll is the transport's own job: it forwards their message
// references inside the create submission, so no command here creates
// them.
type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string) error
	EditText(ctx context.Context, chatID, messageID int64, text string) error
	Pin(ctx context.Context, chatID, messageID int64) error
	Delete(ctx context.Context, chatID, messageID int64) error
	SendDocument(ctx context.Context, chatID int64, filename, caption string, content []byte) error
}

// Command is the envelope published for every notifier call.
type Command struct {
	Type      string `json:"type"`
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Content   []byte `json:"content,omitempty"`
}

// BrokerNotifier publishes notifier commands to the broker.
type BrokerNotifier struct {
	publisher rabbitmq.Publisher
}

// New wraps a publisher into a Notifier.
func New(publisher rabbitmq.Publisher) *BrokerNotifier {
	return &BrokerNotifier{publisher: publisher}
}

func (n *BrokerNotifier) publish(ctx context.Context, cmd Command) error {
	return n.publisher.Publish(ctx, "notify."+cmd.Type, cmd)
}

func (n *BrokerNotifier) SendText(ctx context.Context, chatID int64, text string) error {
	return n.publish(ctx, Command{Type: "send_text", ChatID: chatID, Text: text})
}

func (n *BrokerNotifier) EditText(ctx context.Context, chatID, messageID int64, text string) error {
	return n.publish(ctx, Command{Type: "edit_text", ChatID: chatID, MessageID: messageID, Text: text})
}

func (n *BrokerNotifier) Pin(ctx context.Context, chatID, messageID int64) error {
	return n.publish(ctx, Command{Type: "pin", ChatID: chatID, MessageID: messageID})
}

func (n *BrokerNotifier) Delete(ctx context.Context, chatID, messageID int64) error {
	return n.publish(ctx, Command{Type: "delete", ChatID: chatID, MessageID: messageID})
}

func (n *BrokerNotifier) SendDocument(ctx context.Context, chatID int64, filename, caption string, content []byte) error {
	return n.publish(ctx, Command{Type: "send_document", ChatID: chatID, Filename: filename, Caption: caption, Content: content})
}
