package lobby

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mayurg/scribblearena/internal/logger"
	"github.com/mayurg/scribblearena/internal/message"
)

func newLobbyServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, logger.Nop())
}

func TestClient_CreateRoom(t *testing.T) {
	client := newLobbyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/createRoom", r.URL.Path)

		var body struct {
			Name       string `json:"name"`
			MaxPlayers int    `json:"maxPlayers"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sunday-doodles", body.Name)
		assert.Equal(t, 8, body.MaxPlayers)

		json.NewEncoder(w).Encode(map[string]any{"successful": true})
	})

	assert.NoError(t, client.CreateRoom(context.Background(), "sunday-doodles", 8))
}

func TestClient_CreateRoomRejected(t *testing.T) {
	client := newLobbyServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"successful": false,
			"message":    "Room already exists",
		})
	})

	err := client.CreateRoom(context.Background(), "sunday-doodles", 8)
	assert.EqualError(t, err, "Room already exists")
}

func TestClient_GetRooms(t *testing.T) {
	client := newLobbyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/getRooms", r.URL.Path)
		assert.Equal(t, "sun", r.URL.Query().Get("searchQuery"))
		json.NewEncoder(w).Encode([]message.Room{
			{Name: "sunday-doodles", MaxPlayers: 8, PlayerCount: 3},
		})
	})

	rooms, err := client.GetRooms(context.Background(), "sun")
	assert.NoError(t, err)
	assert.Equal(t, []message.Room{{Name: "sunday-doodles", MaxPlayers: 8, PlayerCount: 3}}, rooms)
}

func TestClient_JoinRoom(t *testing.T) {
	client := newLobbyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/joinRoom", r.URL.Path)
		assert.Equal(t, "mia", r.URL.Query().Get("username"))
		assert.Equal(t, "sunday-doodles", r.URL.Query().Get("roomName"))
		json.NewEncoder(w).Encode(map[string]any{"successful": true})
	})

	assert.NoError(t, client.JoinRoom(context.Background(), "mia", "sunday-doodles"))
}

func TestClient_ValidatesNameLengths(t *testing.T) {
	client := NewClient("http://example.invalid", logger.Nop())

	assert.ErrorIs(t, client.JoinRoom(context.Background(), "mi", "sunday-doodles"), ErrUsernameLength)
	assert.ErrorIs(t, client.JoinRoom(context.Background(), "mia-the-very-longest", "sunday-doodles"), ErrUsernameLength)
	assert.ErrorIs(t, client.JoinRoom(context.Background(), "mia1", "abc"), ErrRoomNameLength)
	assert.ErrorIs(t, client.CreateRoom(context.Background(), "ab", 8), ErrRoomNameLength)
}

func TestClient_TransportErrorsAreTranslated(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", logger.Nop())

	err := client.JoinRoom(context.Background(), "mia1", "sunday-doodles")
	assert.EqualError(t, err, "could not reach the server, check your internet connection")
}

func TestClient_ServerErrorsAreTranslated(t *testing.T) {
	client := newLobbyServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := client.JoinRoom(context.Background(), "mia1", "sunday-doodles")
	assert.EqualError(t, err, "server error (500), please try again")
}
