package utility

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 4096
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The page and the socket are served by the same host; any origin is accepted.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SocketClient wraps a connection so that several goroutines can push
// messages to the same browser.
type SocketClient struct {
	// ClientID is the browser's session client id; every tab shares it.
	ClientID string
	// ID identifies this connection, i.e. one tab.
	ID string

	conn *websocket.Conn
	mu   sync.Mutex
}

// Upgrade switches the request to the websocket protocol.
func Upgrade(w http.ResponseWriter, r *http.Request, clientID string) (*SocketClient, error) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(wsMaxMessageSize)
	return &SocketClient{
		ClientID: clientID,
		ID:       clientID + ":" + uuid.NewString(),
		conn:     conn,
	}, nil
}

// ReadJSON blocks until the next message arrives. Only one goroutine may read.
func (s *SocketClient) ReadJSON(v any) error {
	return s.conn.ReadJSON(v)
}

// Send writes one JSON message.
func (s *SocketClient) Send(v any) error {
	_, err := s.SendFunc(func() (any, bool) { return v, true })
	return err
}

// SendFunc calls build under the write lock and writes its message unless
// build declines. No other message is written between build and the write.
func (s *SocketClient) SendFunc(build func() (any, bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := build()
	if !ok {
		return false, nil
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return false, err
	}
	return true, s.conn.WriteJSON(v)
}

func (s *SocketClient) Close() error {
	return s.conn.Close()
}
