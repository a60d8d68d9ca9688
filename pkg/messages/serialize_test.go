package messages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeMessage(t *testing.T) {
	payload, err := json.Marshal(&ClientSetBet{Amount: 25})
	require.NoError(t, err)

	msg := &Message{
		ClientID: 7,
		Type:     MessageTypeClientSetBet,
		Payload:  payload,
	}

	b, err := SerializeMessage(msg)
	require.NoError(t, err)

	got, err := DeserializeMessage(b)
	require.NoError(t, err)

	assert.Equal(t, msg.ClientID, got.ClientID)
	assert.Equal(t, msg.Type, got.Type)

	bet := &ClientSetBet{}
	require.NoError(t, json.Unmarshal(got.Payload, bet))
	assert.Equal(t, int64(25), bet.Amount)
}

func TestDeserializeMessageRejectsGarbage(t *testing.T) {
	_, err := DeserializeMessage([]byte("not a compressed message"))
	assert.Error(t, err)
}
