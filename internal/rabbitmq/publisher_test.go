package rabbitmq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisherWithoutURLFallsBackToNoop(t *testing.T) {
	p := NewPublisher("", "meetup.notify")

	assert.Equal(t, "noop", PublisherMode(p))
	assert.Equal(t, "empty amqp url", PublisherNoopReason(p))
}

func TestNoopPublisherSwallowsMessages(t *testing.T) {
	p := NewPublisher("", "meetup.notify")

	require.NoError(t, p.Publish(context.Background(), "notify.send_text", map[string]string{"text": "hi"}))
	require.NoError(t, p.Close())
}
