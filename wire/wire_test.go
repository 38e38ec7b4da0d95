package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventRoundTrip(t *testing.T) {
	e, err := UnmarshalEvent([]byte(`{"event":"message","data":{"message":"hello","reply_to":7}}`))
	require.NoError(t, err)
	require.Equal(t, EventMessage, e.Event)

	var params MessageParams
	require.NoError(t, DecodeParams(e.Data, &params))
	require.Equal(t, "hello", params.Message)
	require.NotNil(t, params.ReplyTo)
	require.EqualValues(t, 7, *params.ReplyTo)
}

func TestDecodeMessageParamsWithoutReply(t *testing.T) {
	e, err := UnmarshalEvent([]byte(`{"event":"message","data":{"message":"hello"}}`))
	require.NoError(t, err)

	var params MessageParams
	require.NoError(t, DecodeParams(e.Data, &params))
	require.Nil(t, params.ReplyTo)
}

func TestDecodeAuthParams(t *testing.T) {
	e, err := UnmarshalEvent([]byte(`{"event":"auth","data":{"token":"abc123"}}`))
	require.NoError(t, err)
	require.Equal(t, EventAuth, e.Event)

	var params AuthParams
	require.NoError(t, DecodeParams(e.Data, &params))
	require.Equal(t, "abc123", params.Token)
}

func TestMarshalErrorEvent(t *testing.T) {
	b := MarshalEvent(Event{Event: EventError, Data: ErrorParams{Message: "User not logged in"}})
	require.JSONEq(t, `{"event":"error","data":{"message":"User not logged in"}}`, string(b))
}
