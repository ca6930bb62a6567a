package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/noteduco342/lanchat-backend/internal/dispatch"
	"golang.org/x/time/rate"
)

const (
	writeWait        = 10 * time.Second
	maxFrameSize     = 1 << 20
	sendBufferSize   = 256
	compressMinBytes = 512
)

var (
	ErrClientClosed   = errors.New("client connection closed")
	ErrSendBufferFull = errors.New("client send buffer full")
)

// FrameConn is the subset of *websocket.Conn a Client drives.
type FrameConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// ClientOptions tune one connection.
type ClientOptions struct {
	SupportsGzip    bool
	EventsPerSecond float64
	EventBurst      int
	PingInterval    time.Duration
	PongTimeout     time.Duration
	Logger          *slog.Logger
}

// Client owns one websocket connection. Sends never block the caller:
// frames are queued and written by WritePump, the only writer of conn.
type Client struct {
	id     string
	userID uint
	conn   FrameConn
	send   chan []byte
	done   chan struct{}
	once   sync.Once

	supportsGzip bool
	limiter      *rate.Limiter
	pingInterval time.Duration
	pongTimeout  time.Duration
	log          *slog.Logger
}

func NewClient(conn FrameConn, userID uint, opts ClientOptions) *Client {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.PongTimeout <= 0 {
		opts.PongTimeout = 90 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	limit := rate.Inf
	if opts.EventsPerSecond > 0 {
		limit = rate.Limit(opts.EventsPerSecond)
	}
	burst := opts.EventBurst
	if burst <= 0 {
		burst = 1
	}

	id := uuid.NewString()
	return &Client{
		id:           id,
		userID:       userID,
		conn:         conn,
		send:         make(chan []byte, sendBufferSize),
		done:         make(chan struct{}),
		supportsGzip: opts.SupportsGzip,
		limiter:      rate.NewLimiter(limit, burst),
		pingInterval: opts.PingInterval,
		pongTimeout:  opts.PongTimeout,
		log:          opts.Logger.With("user_id", userID, "conn", id),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues an outbound event frame.
func (c *Client) Send(event string, payload interface{}) error {
	data, err := json.Marshal(OutboundFrame{Type: event, Payload: payload})
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

// SendAck queues the acknowledgement of the inbound event tagged id.
func (c *Client) SendAck(id json.RawMessage, payload AckPayload) error {
	data, err := json.Marshal(OutboundFrame{Type: AckType, Ack: id, Payload: payload})
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *Client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		c.log.Warn("send buffer full, closing slow client")
		c.Close()
		return ErrSendBufferFull
	}
}

// Close stops WritePump, which then closes the underlying connection.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

// WritePump writes queued frames and keepalive pings until the client is
// closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case data := <-c.send:
			frameType, body := c.encode(data)
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(frameType, body); err != nil {
				c.log.Info("write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.log.Info("ping failed", "error", err)
				return
			}
		}
	}
}

// encode compresses large frames for clients that asked for it, when that
// actually saves space.
func (c *Client) encode(data []byte) (int, []byte) {
	if !c.supportsGzip || len(data) <= compressMinBytes {
		return websocket.TextMessage, data
	}
	compressed, err := CompressMessage(data)
	if err != nil || len(compressed) >= len(data) {
		return websocket.TextMessage, data
	}
	return websocket.BinaryMessage, compressed
}

// ReadPump reads frames until the connection fails or the peer stops
// answering pings, passing each decoded frame to handle. Frames over the
// per-connection rate are answered with chat:error and dropped.
func (c *Client) ReadPump(handle func(raw []byte)) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	})

	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Info("read failed", "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))

		if frameType == websocket.BinaryMessage {
			data, err = DecompressMessage(data)
			if errors.Is(err, ErrFrameTooLarge) {
				c.log.Debug("oversized frame", "error", err)
				_ = c.Send(dispatch.EventChatError, dispatch.ErrorEvent{Error: "frame too large", Code: "frame_too_large"})
				continue
			}
			if err != nil {
				c.log.Debug("undecodable frame", "error", err)
				_ = c.Send(dispatch.EventChatError, dispatch.ErrorEvent{Error: "failed to decompress frame", Code: "decompression_failed"})
				continue
			}
		}

		if !c.limiter.Allow() {
			c.log.Debug("rate limit exceeded, dropping frame")
			_ = c.Send(dispatch.EventChatError, dispatch.ErrorEvent{Error: "too many events, slow down", Code: "rate_limited"})
			continue
		}

		handle(data)
	}
}
