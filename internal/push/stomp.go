package push

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-stomp/stomp/v3"
	"nhooyr.io/websocket"
)

// endpointPath is the raw WebSocket transport of the server's SockJS mount.
const endpointPath = "/ws/websocket"

// StompTransport speaks STOMP over a WebSocket, presenting the API session
// cookie in the handshake.
type StompTransport struct {
	url       *url.URL
	origin    *url.URL
	jar       http.CookieJar
	transport http.RoundTripper
}

// NewStompTransport derives the socket URL from the API base URL.
func NewStompTransport(base *url.URL, jar http.CookieJar, rt http.RoundTripper) *StompTransport {
	return &StompTransport{
		url:       SocketURL(base),
		origin:    base,
		jar:       jar,
		transport: rt,
	}
}

// SocketURL maps http(s)://host to ws(s)://host/ws/websocket.
func SocketURL(base *url.URL) *url.URL {
	u := *base
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = endpointPath
	u.RawQuery = ""
	u.Fragment = ""
	return &u
}

// Connect dials the socket and completes the STOMP handshake.
func (t *StompTransport) Connect(ctx context.Context) (Session, error) {
	header := http.Header{}
	if t.jar != nil {
		for _, c := range t.jar.Cookies(t.origin) {
			header.Add("Cookie", c.String())
		}
	}
	// websocket.Dial rejects clients with a Timeout; ctx bounds the handshake.
	ws, _, err := websocket.Dial(ctx, t.url.String(), &websocket.DialOptions{
		HTTPClient:   &http.Client{Transport: t.transport},
		HTTPHeader:   header,
		Subprotocols: []string{"v12.stomp", "v11.stomp", "v10.stomp"},
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", t.url.Redacted(), err)
	}

	netConn := websocket.NetConn(ctx, ws, websocket.MessageText)
	conn, err := stomp.Connect(netConn, stomp.ConnOpt.Host(t.url.Hostname()))
	if err != nil {
		_ = ws.Close(websocket.StatusProtocolError, "stomp handshake failed")
		return nil, fmt.Errorf("stomp connect: %w", err)
	}
	return &stompSession{conn: conn, ws: ws, done: make(chan struct{})}, nil
}

type stompSession struct {
	conn *stomp.Conn
	ws   *websocket.Conn
	done chan struct{}
	once sync.Once
}

func (s *stompSession) Subscribe(destination string) (<-chan Frame, error) {
	sub, err := s.conn.Subscribe(destination, stomp.AckAuto)
	if err != nil {
		return nil, err
	}
	out := make(chan Frame)
	go func() {
		defer close(out)
		for msg := range sub.C {
			f := Frame{Err: msg.Err}
			if msg.Err == nil {
				f.Destination = msg.Destination
				f.Body = msg.Body
			}
			select {
			case out <- f:
			case <-s.done:
				return
			}
			if msg.Err != nil {
				return
			}
		}
	}()
	return out, nil
}

// Close disconnects without waiting for a receipt; the peer may already be gone.
func (s *stompSession) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.conn.MustDisconnect()
		_ = s.ws.Close(websocket.StatusNormalClosure, "")
	})
	return err
}
