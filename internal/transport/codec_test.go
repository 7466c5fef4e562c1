package transport

import (
	"encoding/json"
	"testing"

	"github.com/liveforeverx/locker/internal/replica"
	"github.com/stretchr/testify/require"
)

func TestStatusTravelsAsString(t *testing.T) {
	raw, err := json.Marshal(&StatusReply{Status: replica.StatusAlreadyLocked})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"already_locked"}`, string(raw))

	var reply StatusReply
	require.NoError(t, json.Unmarshal(raw, &reply))
	require.Equal(t, replica.StatusAlreadyLocked, reply.Status)
}

func TestStatusRejectsUnknownName(t *testing.T) {
	var reply StatusReply
	require.Error(t, json.Unmarshal([]byte(`{"status":"bogus"}`), &reply))
}
