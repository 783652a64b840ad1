package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tidepool-arcade/sharkdash/internal/arena"
	"github.com/tidepool-arcade/sharkdash/internal/game"
)

const (
	readLimit     = 1 << 20
	readWait      = 60 * time.Second
	writeWait     = 10 * time.Second
	pingInterval  = 25 * time.Second
	outboundDepth = 16
)

// Config holds configuration for the WebSocket server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address string

	// Host handles room commands and fans out snapshots.
	Host *arena.Host

	// Logger receives connection lifecycle events. Required.
	Logger *log.Logger
}

// DefaultConfig returns a config with sensible defaults. Host and Logger
// must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{Address: ":8080"}
}

// Server accepts WebSocket clients and bridges them onto an arena host.
type Server struct {
	config   Config
	httpSrv  *http.Server
	upgrader websocket.Upgrader
}

// New creates a WebSocket server with the given configuration.
func New(cfg Config) *Server {
	srv := &Server{
		config: cfg,
		upgrader: websocket.Upgrader{
			// For dev, allow all origins. Lock this down in prod.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWS)
	mux.HandleFunc("/skins", handleSkins)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv.httpSrv = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return srv
}

// ListenAndServe starts the server and blocks until an interrupt or
// termination signal arrives, then shuts down gracefully.
func (s *Server) ListenAndServe() error {
	s.config.Logger.Info("starting server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.config.Logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.config.Logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}

// handleSkins serves the selectable skin catalog so clients can build the
// picker without baking the list in.
func handleSkins(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(game.Skins()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleWS upgrades a connection and runs its read loop. Query parameters:
// room (required) names the room to attach to; player optionally fixes the
// participant ID, otherwise one is generated.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "missing room parameter", http.StatusBadRequest)
		return
	}
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		playerID = uuid.NewString()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.config.Logger.Warn("upgrade failed", "error", err)
		return
	}

	logger := s.config.Logger.With("room", roomID, "player", playerID)
	logger.Info("client connected", "remote", conn.RemoteAddr().String())

	c := &client{
		conn:   conn,
		roomID: roomID,
		player: playerID,
		host:   s.config.Host,
		logger: logger,
		sub:    arena.NewChannelSubscriber(outboundDepth),
		out:    make(chan ServerMessage, outboundDepth),
		done:   make(chan struct{}),
	}
	c.run()
	logger.Info("client disconnected")
}

// client is one WebSocket connection attached to a room.
type client struct {
	conn   *websocket.Conn
	roomID string
	player string
	host   *arena.Host
	logger *log.Logger

	sub  *arena.ChannelSubscriber
	out  chan ServerMessage
	done chan struct{}

	// instanceID of the game the client has joined, "" when not seated.
	// Owned by the read loop.
	instanceID string
}

func (c *client) run() {
	defer c.conn.Close()

	unsubscribe := c.host.Subscribe(c.roomID, c.sub)
	defer unsubscribe()
	defer c.sub.Close()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	go c.writePump()
	defer close(c.done)

	c.readLoop()

	// A dropped connection is an implicit departure: seated players must
	// not occupy a slot their peer can never fill.
	if c.instanceID != "" {
		if _, err := c.host.Handle(c.roomID, c.player, arena.LeaveGame{InstanceID: c.instanceID}); err != nil {
			c.logger.Warn("implicit leave failed", "error", err)
		}
	}
}

func (c *client) readLoop() {
	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("read failed", "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readWait))

		cmd, err := decodeCommand(msg)
		if err != nil {
			c.reply(ServerMessage{Type: MsgError, For: msg.Type, Error: err.Error()})
			continue
		}

		result, err := c.host.Handle(c.roomID, c.player, cmd)
		if err != nil {
			c.reply(ServerMessage{Type: MsgError, For: msg.Type, Error: err.Error()})
			continue
		}

		switch cmd.(type) {
		case arena.JoinGame:
			c.instanceID = result.InstanceID
			c.reply(ServerMessage{Type: MsgJoined, For: msg.Type, InstanceID: result.InstanceID})
		case arena.LeaveGame:
			c.instanceID = ""
			c.reply(ServerMessage{Type: MsgAck, For: msg.Type, InstanceID: result.InstanceID})
		default:
			c.reply(ServerMessage{Type: MsgAck, For: msg.Type, InstanceID: result.InstanceID})
		}
	}
}

// reply queues a frame for the write pump, dropping it if the client has
// stopped draining. Commands stay fail-fast either way.
func (c *client) reply(msg ServerMessage) {
	select {
	case c.out <- msg:
	default:
		c.logger.Warn("reply dropped", "type", msg.Type)
	}
}

// writePump owns all writes to the connection: snapshot broadcasts, command
// replies and keepalive pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case snap := <-c.sub.Snapshots():
			if !c.write(ServerMessage{Type: MsgSnapshot, InstanceID: snap.InstanceID, Snapshot: encodeSnapshot(snap)}) {
				return
			}
		case msg := <-c.out:
			if !c.write(msg) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) write(msg ServerMessage) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Warn("write failed", "error", err)
		return false
	}
	return true
}
