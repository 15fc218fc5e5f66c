package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCreate(t *testing.T) {
	payload := `{"action":"create","date":"2026-03-01","time":"19:00","title":"Dinner","cost":"20eur","location":"Old Town","poll_id":"p1","poll_message_id":5,"card_message_id":4}`

	action, err := Decode([]byte(payload))
	require.NoError(t, err)

	create, ok := action.(Create)
	require.True(t, ok)
	assert.Equal(t, "2026-03-01", create.Date)
	assert.Equal(t, "19:00", create.Time)
	assert.Equal(t, "p1", create.PollID)
	assert.Equal(t, int64(5), create.PollMessageID)
}

func TestDecodeEditDeleteExport(t *testing.T) {
	action, err := Decode([]byte(`{"action":"edit","event_id":3}`))
	require.NoError(t, err)
	assert.Equal(t, Edit{EventID: 3}, action)

	action, err = Decode([]byte(`{"action":"delete","event_id":4}`))
	require.NoError(t, err)
	assert.Equal(t, Delete{EventID: 4}, action)

	action, err = Decode([]byte(`{"action":"export","event_id":5}`))
	require.NoError(t, err)
	assert.Equal(t, ExportRequest{EventID: 5}, action)
}

func TestDecodeRejectsUnknownAction(t *testing.T) {
	_, err := Decode([]byte(`{"action":"adopt","event_id":3}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"action":`))
	require.Error(t, err)
}
