package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pompamc/vampire-village/internal/game"
	"github.com/pompamc/vampire-village/internal/room"
	"github.com/pompamc/vampire-village/internal/types"
)

func createRoom(t *testing.T, h *Hub, hostID, hostName string) CreateResult {
	t.Helper()
	reply := make(chan CreateResult, 1)
	h.Inbox() <- CreateRoom{
		HostID:   hostID,
		HostName: hostName,
		Config:   game.Config{RoomName: "Test Room"},
		Outbox:   make(chan types.ServerMessage, 64),
		Reply:    reply,
	}
	res := <-reply
	require.NoError(t, res.Err)
	require.NotNil(t, res.Room)
	return res
}

func TestCreateAndGetRoom(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())
	defer func() { h.Inbox() <- ShutdownHub{} }()

	res := createRoom(t, h, "host", "Host")
	assert.Len(t, res.Code, codeLength)
	for _, c := range res.Code {
		assert.Contains(t, codeCharset, string(c))
	}

	got := h.Get(res.Code)
	assert.Same(t, res.Room, got)
	assert.Nil(t, h.Get("NOSUCH"))
}

func TestRoomCodesAreUnique(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())
	defer func() { h.Inbox() <- ShutdownHub{} }()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		res := createRoom(t, h, "host", "Host")
		require.False(t, seen[res.Code], "duplicate code %s", res.Code)
		seen[res.Code] = true
	}
}

func TestListOpenRooms(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())
	defer func() { h.Inbox() <- ShutdownHub{} }()

	res := createRoom(t, h, "host", "Host")

	open := h.OpenRooms()
	require.Len(t, open, 1)
	assert.Equal(t, res.Code, open[0].Code)
	assert.Equal(t, "Test Room", open[0].RoomName)
	assert.Equal(t, "Host", open[0].HostName)
	assert.Equal(t, 1, open[0].PlayerCount)
}

func TestEmptyRoomIsRemoved(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())
	defer func() { h.Inbox() <- ShutdownHub{} }()

	res := createRoom(t, h, "host", "Host")
	res.Room.Do(room.Leave{ID: "host"})

	require.Eventually(t, func() bool {
		return h.Get(res.Code) == nil
	}, 3*time.Second, 10*time.Millisecond, "room never removed from registry")
}
