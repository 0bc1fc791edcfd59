package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/outlet-dev/outlet/pkg/auth"
	"github.com/outlet-dev/outlet/pkg/navigation"
)

// conn is one navigation WebSocket. Committed results and failures are
// queued on out in order; writeLoop is the only writer of data frames.
type conn struct {
	id     string
	server *Server
	ws     *websocket.Conn
	nav    *navigation.Navigator
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	out       outbox
	closeOnce sync.Once
	done      chan struct{}

	// In-flight navigations, the writer and the ping loop.
	wg sync.WaitGroup
}

// HandleWebSocket upgrades the request and serves navigations until the
// client disconnects or the server shuts down.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err, "origin", r.Header.Get("Origin"))
		if s.metrics != nil {
			s.metrics.WebSocketError("upgrade")
		}
		return
	}

	// The connection outlives the request; keep its values, not its deadline.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &conn{
		id:     uuid.NewString(),
		server: s,
		ws:     ws,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		out:    outbox{wake: make(chan struct{}, 1)},
	}
	c.logger = s.logger.With("conn", c.id, "request_id", requestID(r.Context()))
	if p, ok := auth.UserFrom(r.Context()); ok {
		c.logger = c.logger.With("user_id", p.ID)
	}
	c.nav = s.navigator(navigation.CommitFunc(c.commit), c.logger)

	s.wg.Add(1)
	defer s.wg.Done()
	s.track(c)
	defer s.untrack(c)

	c.logger.Debug("connection opened")
	c.wg.Add(2)
	go c.writeLoop()
	go c.pingLoop()

	c.readLoop()

	c.close(websocket.CloseNormalClosure, "")
	c.nav.Close()
	c.wg.Wait()
	c.logger.Debug("connection closed")
}

// readLoop reads client messages until the connection fails.
func (c *conn) readLoop() {
	cfg := c.server.config
	deadline := func() time.Time { return time.Now().Add(2 * cfg.PingInterval) }

	c.ws.SetReadLimit(cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(deadline())
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(deadline())
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure) {
					c.logger.Warn("read error", "error", err)
					c.recordError("read")
				}
			}
			return
		}
		_ = c.ws.SetReadDeadline(deadline())

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.recordError("decode")
			c.send(Frame{Type: FrameError, Code: ErrorCodeInvalid, Message: "malformed message"})
			continue
		}

		switch msg.Type {
		case MessageNavigate:
			if !strings.HasPrefix(msg.Path, "/") {
				c.send(Frame{Type: FrameError, Path: msg.Path, Code: ErrorCodeInvalid, Message: "path must start with /"})
				continue
			}
			c.navigate(msg.Path)
		default:
			c.send(Frame{Type: FrameError, Code: ErrorCodeInvalid, Message: "unknown message type " + msg.Type})
		}
	}
}

// navigate starts a navigation. It is numbered before navigate returns, so
// a later message always supersedes an earlier one. Successful navigations
// are answered by commit; overtaken ones are not answered at all.
func (c *conn) navigate(path string) {
	c.wg.Add(1)
	c.nav.Go(c.ctx, path, func(_ *navigation.Result, err error) {
		defer c.wg.Done()
		switch {
		case err == nil:
		case errors.Is(err, navigation.ErrSuperseded),
			errors.Is(err, navigation.ErrClosed),
			errors.Is(err, context.Canceled):
		case errors.Is(err, navigation.ErrForbidden):
			c.send(Frame{Type: FrameError, Path: path, Code: ErrorCodeForbidden, Message: "access denied"})
		default:
			c.logger.Error("navigation failed", "path", path, "error", err)
			c.send(Frame{Type: FrameError, Path: path, Code: ErrorCodeInternal, Message: "navigation failed"})
		}
	})
}

// commit queues a committed result. It runs under the navigator's lock,
// so results are queued in commit order; rendering and writing happen in
// writeLoop.
func (c *conn) commit(res *navigation.Result) {
	c.out.push(outbound{result: res})
}

// send queues a frame.
func (c *conn) send(f Frame) {
	c.out.push(outbound{frame: f})
}

// writeLoop writes queued frames until the connection closes.
func (c *conn) writeLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case <-c.out.wake:
		}
		for _, item := range c.out.drain() {
			if !c.write(c.frame(item)) {
				return
			}
		}
	}
}

// frame turns a queued item into the frame sent to the client.
func (c *conn) frame(item outbound) Frame {
	res := item.result
	if res == nil {
		return item.frame
	}

	f := Frame{Seq: res.Seq, Path: res.Path}
	switch {
	case res.Redirect != "":
		f.Type = FrameRedirect
		f.To = res.Redirect
	case res.NotFound:
		f.Type = FrameNotFound
	default:
		f.Type = FrameRender
	}

	if f.Type != FrameRedirect && res.Output != nil {
		html, err := c.server.renderer.RenderToString(res.Output)
		if err != nil {
			c.logger.Error("html render failed", "path", res.Path, "error", err)
			return Frame{Type: FrameError, Seq: res.Seq, Path: res.Path, Code: ErrorCodeInternal, Message: "render failed"}
		}
		f.HTML = html
	}
	return f
}

// write sends one frame and reports whether the connection is still usable.
func (c *conn) write(f Frame) bool {
	data, err := json.Marshal(f)
	if err != nil {
		c.logger.Error("frame encode failed", "error", err)
		return true
	}

	_ = c.ws.SetWriteDeadline(time.Now().Add(c.server.config.WriteTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		select {
		case <-c.done:
		default:
			c.logger.Debug("write failed", "error", err)
			c.recordError("write")
		}
		return false
	}
	return true
}

// outbound is a queued committed result or a ready frame.
type outbound struct {
	result *navigation.Result
	frame  Frame
}

// outbox is an unbounded FIFO between navigations and writeLoop. push never
// blocks, so committing does not wait on the network.
type outbox struct {
	mu    sync.Mutex
	items []outbound
	wake  chan struct{}
}

func (o *outbox) push(item outbound) {
	o.mu.Lock()
	o.items = append(o.items, item)
	o.mu.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *outbox) drain() []outbound {
	o.mu.Lock()
	defer o.mu.Unlock()
	items := o.items
	o.items = nil
	return items
}

// pingLoop keeps idle connections alive and detects dead peers.
func (c *conn) pingLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.server.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.server.config.WriteTimeout)
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// close sends a close frame and releases the socket. Safe to call more
// than once.
func (c *conn) close(code int, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second),
		)
		_ = c.ws.Close()
	})
}

func (c *conn) recordError(kind string) {
	if c.server.metrics != nil {
		c.server.metrics.WebSocketError(kind)
	}
}
