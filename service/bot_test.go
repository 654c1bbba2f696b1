package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"barberbot/service"
)

func TestBotReplyReadsOutputField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Hi", req["message"])
		require.Equal(t, "user", req["sender"])
		require.Equal(t, "chat-interface", req["source"])
		require.NotEmpty(t, req["timestamp"])

		json.NewEncoder(w).Encode(map[string]string{"output": "We open at 9am."})
	}))
	defer srv.Close()

	client := service.NewBotClient(srv.URL)
	require.Equal(t, "We open at 9am.", client.Reply(context.Background(), "Hi"))
}

func TestBotReplyFallsBackToMessageField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "Sure thing."})
	}))
	defer srv.Close()

	client := service.NewBotClient(srv.URL)
	require.Equal(t, "Sure thing.", client.Reply(context.Background(), "Hi"))
}

func TestBotReplyDefaultWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := service.NewBotClient(srv.URL)
	require.Equal(t, service.DefaultBotReply, client.Reply(context.Background(), "Hi"))
}

func TestBotReplyFallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := service.NewBotClient(srv.URL)
	require.Equal(t, service.FallbackBotReply, client.Reply(context.Background(), "Hi"))
}

func TestBotReplyFallbackOnUnreachableEndpoint(t *testing.T) {
	client := service.NewBotClient("http://127.0.0.1:1/webhook")
	require.Equal(t, service.FallbackBotReply, client.Reply(context.Background(), "Hi"))
}
