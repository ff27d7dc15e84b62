// Package lobby is the REST client for room setup: creating, listing and
// joining rooms. Its only coupling to the session engine is producing the
// username/room pair the websocket handshake is seeded with.
package lobby

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mayurg/scribblearena/internal/logger"
	"github.com/mayurg/scribblearena/internal/message"
)

// Name length bounds enforced before hitting the API.
const (
	MinUsernameLength = 4
	MaxUsernameLength = 12
	MinRoomNameLength = 4
	MaxRoomNameLength = 16
)

var (
	ErrUsernameLength = fmt.Errorf("username must be %d-%d characters", MinUsernameLength, MaxUsernameLength)
	ErrRoomNameLength = fmt.Errorf("room name must be %d-%d characters", MinRoomNameLength, MaxRoomNameLength)
)

// apiResponse is the server's generic success envelope.
type apiResponse struct {
	Successful bool   `json:"successful"`
	Message    string `json:"message"`
}

// Client talks to the lobby API. Transport failures are translated into
// plain errors with readable messages; callers never see raw HTTP details.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

func NewClient(baseURL string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// CreateRoom creates a room for maxPlayers. A nil error means the room
// exists and can be joined.
func (c *Client) CreateRoom(ctx context.Context, name string, maxPlayers int) error {
	if len(name) < MinRoomNameLength || len(name) > MaxRoomNameLength {
		return ErrRoomNameLength
	}

	body, err := json.Marshal(map[string]any{
		"name":       name,
		"maxPlayers": maxPlayers,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/createRoom", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return err
	}
	if !resp.Successful {
		return errors.New(resp.Message)
	}
	return nil
}

// GetRooms lists rooms whose names match searchQuery; an empty query lists
// everything.
func (c *Client) GetRooms(ctx context.Context, searchQuery string) ([]message.Room, error) {
	endpoint := c.baseURL + "/api/getRooms?searchQuery=" + url.QueryEscape(searchQuery)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var rooms []message.Room
	if err := c.do(req, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// JoinRoom reserves a seat for username in roomName. On success the caller
// proceeds to the websocket handshake with the same pair.
func (c *Client) JoinRoom(ctx context.Context, username, roomName string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return ErrUsernameLength
	}
	if len(roomName) < MinRoomNameLength || len(roomName) > MaxRoomNameLength {
		return ErrRoomNameLength
	}

	endpoint := fmt.Sprintf("%s/api/joinRoom?username=%s&roomName=%s",
		c.baseURL, url.QueryEscape(username), url.QueryEscape(roomName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return err
	}
	if !resp.Successful {
		return errors.New(resp.Message)
	}
	return nil
}

// do executes the request and decodes the JSON body into out, collapsing
// transport and status failures into readable errors.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnf("lobby request %s failed: %v", req.URL.Path, err)
		return errors.New("could not reach the server, check your internet connection")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warnf("lobby request %s returned %d", req.URL.Path, resp.StatusCode)
		return fmt.Errorf("server error (%d), please try again", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New("unexpected response from the server")
	}
	return nil
}
