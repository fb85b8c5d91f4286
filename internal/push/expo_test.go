package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpoPushToken(t *testing.T) {
	assert.True(t, IsExpoPushToken("ExponentPushToken[abc123]"))
	assert.True(t, IsExpoPushToken("ExpoPushToken[abc123]"))
	assert.False(t, IsExpoPushToken("abc123"))
	assert.False(t, IsExpoPushToken("ExponentPushToken[abc123"))
	assert.False(t, IsExpoPushToken("FCMToken[abc123]"))
	assert.False(t, IsExpoPushToken(""))
}

func TestChunk(t *testing.T) {
	messages := make([]Message, 250)

	chunks := Chunk(messages, 100)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)

	assert.Nil(t, Chunk(nil, 100))
}

func TestSendChunkPostsMessages(t *testing.T) {
	var received []Message
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"status":"ok"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token-xyz")
	err := client.SendChunk(context.Background(), []Message{{To: "ExponentPushToken[a]", Body: "oi"}})
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, "ExponentPushToken[a]", received[0].To)
	assert.Equal(t, "Bearer token-xyz", gotAuth)
}

func TestSendChunkSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"code":"PUSH_TOO_MANY_EXPERIENCE_IDS","message":"mixed tokens"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.SendChunk(context.Background(), []Message{{To: "ExponentPushToken[a]", Body: "oi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUSH_TOO_MANY_EXPERIENCE_IDS")
}

func TestSendChunkSurfacesRejectedTickets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"status":"error","message":"DeviceNotRegistered"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.SendChunk(context.Background(), []Message{{To: "ExponentPushToken[a]", Body: "oi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeviceNotRegistered")
}

func TestSendChunkNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.SendChunk(context.Background(), []Message{{To: "ExponentPushToken[a]", Body: "oi"}})
	require.Error(t, err)
}

func TestSendChunkEmptyIsNoop(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "")
	assert.NoError(t, client.SendChunk(context.Background(), nil))
}
