package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/errors"
	battleorch "github.com/superpet/superpet-api/internal/orchestrators/battle"
	"github.com/superpet/superpet-api/internal/services/battle"
)

// PlayerIDHeader identifies the player on the upgrade request. The player
// query parameter is accepted too since browsers cannot set headers on
// websocket requests.
const PlayerIDHeader = "X-Player-Id"

// Command types sent by clients.
const (
	CommandStart  = "start"
	CommandResume = "resume"
	CommandExit   = "exit"
)

// Frame types sent to clients.
const (
	FrameSnapshot  = "snapshot"
	FrameStarted   = "started"
	FrameTick      = "tick"
	FrameFinished  = "finished"
	FrameExited    = "exited"
	FrameTypeError = "error"
)

// Command is a client request.
type Command struct {
	Type      string `json:"type"`
	DungeonID int    `json:"dungeonId,omitempty"`
}

// FrameError describes a failed command.
type FrameError struct {
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// Frame is a server message.
type Frame struct {
	Type        string            `json:"type"`
	Battle      *engine.Battle    `json:"battle,omitempty"`
	Entries     []engine.LogEntry `json:"entries,omitempty"`
	PersistedHP *int              `json:"persistedHp,omitempty"`
	Error       *FrameError       `json:"error,omitempty"`
}

// Config holds dependencies for the battle feed
type Config struct {
	BattleService battle.Service
	Hub           *Hub
	// Interval between automatic ticks, defaults to one second
	Interval time.Duration
	// CheckOrigin overrides the upgrader's same-origin check (optional)
	CheckOrigin func(r *http.Request) bool
}

// Validate ensures all required dependencies are present
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()
	if c.BattleService == nil {
		vb.RequiredField("BattleService")
	}
	if c.Hub == nil {
		vb.RequiredField("Hub")
	}
	if c.Interval < 0 {
		vb.InvalidField("Interval", "must not be negative")
	}
	return vb.Build()
}

// Handler upgrades connections and runs battles for their players. Each
// player has at most one running battle loop no matter how many
// connections they hold.
type Handler struct {
	service  battle.Service
	hub      *Hub
	runner   *battleorch.Runner
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running map[string]*loop
	wg      sync.WaitGroup
}

type loop struct {
	cancel context.CancelFunc
}

// NewHandler creates a new battle feed handler
func NewHandler(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Handler{
		service: cfg.BattleService,
		hub:     cfg.Hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		running: make(map[string]*loop),
	}
	runner, err := battleorch.NewRunner(&battleorch.RunnerConfig{
		Service:  cfg.BattleService,
		Interval: cfg.Interval,
		OnTick: func(playerID string, out *battle.TickOutput) {
			h.hub.Send(playerID, &Frame{Type: FrameTick, Battle: out.Battle, Entries: out.Entries})
		},
	})
	if err != nil {
		return nil, err
	}
	h.runner = runner
	h.ctx, h.cancel = context.WithCancel(context.Background())
	return h, nil
}

// Close stops every running battle loop and waits for them to return.
func (h *Handler) Close() {
	h.cancel()
	h.wg.Wait()
}

func playerIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(PlayerIDHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("player"))
}

// ServeHTTP upgrades the request and sends the player's current battle.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	playerID := playerIDFromRequest(r)
	if playerID == "" {
		err := errors.Unauthenticated("player id is required")
		http.Error(w, err.Message, err.Code.HTTPStatus())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		slog.Warn("websocket upgrade failed", "player_id", playerID, "error", err)
		return
	}

	c := newClient(h.hub, conn, playerID)
	if !h.hub.add(c) {
		_ = conn.Close()
		return
	}
	go c.writePump()

	// the snapshot goes out before any command is read
	h.resume(r.Context(), playerID)
	go c.readPump(h.dispatch, h.stop)
}

func (h *Handler) resume(ctx context.Context, playerID string) {
	current, err := h.service.GetBattle(ctx, &battle.GetBattleInput{PlayerID: playerID})
	if err != nil {
		if !errors.IsNotFound(err) {
			h.sendError(playerID, err)
		}
		return
	}
	h.hub.Send(playerID, &Frame{Type: FrameSnapshot, Battle: current.Battle})
	if current.Battle.State == engine.BattleFighting {
		h.run(playerID)
	}
}

func (h *Handler) dispatch(c *Client, cmd *Command) {
	switch cmd.Type {
	case CommandStart:
		out, err := h.service.StartBattle(h.ctx, &battle.StartBattleInput{
			PlayerID:  c.playerID,
			DungeonID: cmd.DungeonID,
		})
		if err != nil {
			h.sendError(c.playerID, err)
			return
		}
		h.hub.Send(c.playerID, &Frame{Type: FrameStarted, Battle: out.Battle})
		h.run(c.playerID)
	case CommandResume:
		h.run(c.playerID)
	case CommandExit:
		h.stop(c.playerID)
		out, err := h.service.ExitBattle(h.ctx, &battle.ExitBattleInput{PlayerID: c.playerID})
		if err != nil {
			h.sendError(c.playerID, err)
			return
		}
		hp := out.PersistedHP
		h.hub.Send(c.playerID, &Frame{Type: FrameExited, PersistedHP: &hp})
	default:
		h.sendError(c.playerID, errors.InvalidArgumentf("unknown command %q", cmd.Type))
	}
}

// run starts the player's battle loop unless one is already going.
func (h *Handler) run(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.running[playerID]; ok {
		return
	}
	if h.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(h.ctx)
	l := &loop{cancel: cancel}
	h.running[playerID] = l
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.finish(playerID, l)

		b, err := h.runner.Run(ctx, playerID)
		if err != nil {
			if ctx.Err() == nil {
				h.sendError(playerID, err)
			}
			return
		}
		if b != nil && b.State != engine.BattleFighting {
			h.hub.Send(playerID, &Frame{Type: FrameFinished, Battle: b})
		}
	}()
}

func (h *Handler) finish(playerID string, l *loop) {
	l.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running[playerID] == l {
		delete(h.running, playerID)
	}
}

func (h *Handler) stop(playerID string) {
	h.mu.Lock()
	l, ok := h.running[playerID]
	delete(h.running, playerID)
	h.mu.Unlock()
	if ok {
		l.cancel()
	}
}

func (h *Handler) sendError(playerID string, err error) {
	h.hub.Send(playerID, &Frame{
		Type:  FrameTypeError,
		Error: &FrameError{
			Code:    errors.GetCode(err).String(),
			Reason:  string(errors.GetReason(err)),
			Message: errors.GetMessage(err),
		},
	})
}
