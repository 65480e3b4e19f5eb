// Package cloudsync is the client for the hosted save, gem and ranking API.
// Every call is best effort from the game's point of view: callers log and
// carry on when the service is unreachable.
package cloudsync

//go:generate mockgen -destination=mock/mock_client.go -package=cloudsyncmock github.com/superpet/superpet-api/internal/clients/cloudsync Client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/superpet/superpet-api/internal/errors"
)

// SessionHeader carries the session token on every authenticated request.
const SessionHeader = "X-Game-Session"

const (
	sessionPath    = "/api/superpet/session"
	savePath       = "/api/superpet/save"
	gemPath        = "/api/superpet/gem"
	gemIssuePath   = "/api/superpet/gem/issue"
	gemUsePath     = "/api/superpet/gem/use"
	rankingPath    = "/api/superpet/ranking"
	defaultTimeout = 10 * time.Second
)

// Client defines the interface for the cloud API
type Client interface {
	// StartSession obtains a session token for playerID and remembers it
	StartSession(ctx context.Context, playerID string) (string, error)

	// Save uploads the player's save keys. Nil values are sent as null.
	Save(ctx context.Context, input *SaveInput) error

	// Load downloads the player's save keys. Keys stored as null are omitted.
	Load(ctx context.Context, input *LoadInput) (*LoadOutput, error)

	// GemBalance returns the player's gem balance
	GemBalance(ctx context.Context, playerID string) (int, error)

	// IssueGem credits gems from an issue source
	IssueGem(ctx context.Context, input *IssueGemInput) (*GemOutput, error)

	// UseGem debits gems for a use source
	UseGem(ctx context.Context, input *UseGemInput) (*GemOutput, error)

	// Ranking returns the published leaderboard
	Ranking(ctx context.Context) (*RankingOutput, error)
}

// SaveInput defines the request for uploading a save
type SaveInput struct {
	PlayerID string
	Data     map[string]*string
}

// LoadInput defines the request for downloading a save
type LoadInput struct {
	PlayerID string
}

// LoadOutput defines the response for downloading a save
type LoadOutput struct {
	Data map[string]string
}

// IssueGemInput defines the request for crediting gems
type IssueGemInput struct {
	PlayerID string
	Amount   int
	Source   IssueSource
	Memo     string
}

// UseGemInput defines the request for debiting gems
type UseGemInput struct {
	PlayerID string
	Amount   int
	Source   UseSource
	Memo     string
}

// GemOutput is the balance after a gem operation
type GemOutput struct {
	Balance int
}

// RankingEntry is one leaderboard row
type RankingEntry struct {
	RankScore   float64      `json:"rankScore"`
	CharacterID string       `json:"characterId"`
	Name        string       `json:"name"`
	Image       *string      `json:"image"`
	Stats       RankingStats `json:"stats"`
	Level       *int         `json:"level"`
	ClassName   *string      `json:"className"`
	Element     *string      `json:"element"`
}

// RankingStats are the combat totals shown on the leaderboard
type RankingStats struct {
	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// RankingOutput is the leaderboard and when it was computed
type RankingOutput struct {
	Entries   []RankingEntry
	UpdatedAt *time.Time
}

// Config contains configuration for the cloud client
type Config struct {
	// BaseURL of the hosted API, e.g. https://zroom.io
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 10 seconds)
	HTTPTimeout time.Duration
	// HTTPClient overrides the transport (optional)
	HTTPClient *http.Client
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("base_url", cfg.BaseURL, vb)
	if err := vb.Build(); err != nil {
		return err
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultTimeout
	}
	return nil
}

type client struct {
	baseURL    string
	httpClient *http.Client

	mu       sync.RWMutex
	sessions map[string]string
}

// New creates a cloud API client
func New(cfg *Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		sessions:   make(map[string]string),
	}, nil
}

type apiError struct {
	Error string `json:"error"`
}

// codeForStatus maps an HTTP status to the closest error code.
func codeForStatus(status int) errors.Code {
	switch status {
	case http.StatusBadRequest:
		return errors.CodeInvalidArgument
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.CodeUnauthenticated
	case http.StatusNotFound:
		return errors.CodeNotFound
	case http.StatusPaymentRequired, http.StatusConflict:
		return errors.CodeFailedPrecondition
	case http.StatusTooManyRequests:
		return errors.CodeResourceExhausted
	default:
		return errors.CodeUnavailable
	}
}

func (c *client) session(ctx context.Context, playerID string) (string, error) {
	c.mu.RLock()
	token, ok := c.sessions[playerID]
	c.mu.RUnlock()
	if ok {
		return token, nil
	}
	return c.StartSession(ctx, playerID)
}

// do sends a JSON request and decodes a JSON response into out. Non-2xx
// responses become coded errors carrying the server's message.
func (c *client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(SessionHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, fmt.Sprintf("%s %s failed", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return errors.Newf(codeForStatus(resp.StatusCode), "%s %s: %s", method, path, msg).
			WithMeta("status", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func (c *client) StartSession(ctx context.Context, playerID string) (string, error) {
	if playerID == "" {
		return "", errors.InvalidArgument("player ID is required")
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, sessionPath, "", map[string]string{"playerId": playerID}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.Unavailable("session endpoint returned no token")
	}

	c.mu.Lock()
	c.sessions[playerID] = resp.Token
	c.mu.Unlock()

	slog.Debug("cloud session started", "player_id", playerID)
	return resp.Token, nil
}

func (c *client) Save(ctx context.Context, input *SaveInput) error {
	if input == nil || input.PlayerID == "" {
		return errors.InvalidArgument("player ID is required")
	}
	token, err := c.session(ctx, input.PlayerID)
	if err != nil {
		return err
	}
	body := map[string]interface{}{"data": input.Data}
	return c.do(ctx, http.MethodPost, savePath, token, body, nil)
}

func (c *client) Load(ctx context.Context, input *LoadInput) (*LoadOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}
	token, err := c.session(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Data map[string]*string `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, savePath, token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errors.NotFound("no cloud save")
	}
	out := &LoadOutput{Data: make(map[string]string, len(resp.Data))}
	for k, v := range resp.Data {
		if v != nil {
			out.Data[k] = *v
		}
	}
	return out, nil
}

func (c *client) GemBalance(ctx context.Context, playerID string) (int, error) {
	token, err := c.session(ctx, playerID)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Balance int `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, gemPath, token, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

type gemRequest struct {
	Amount int    `json:"amount"`
	Source string `json:"source"`
	Memo   string `json:"memo,omitempty"`
}

func validateGem(playerID string, amount int, source string, valid bool) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", playerID, vb)
	errors.ValidatePositive("amount", amount, vb)
	if !valid {
		vb.InvalidField("source", "unknown gem source "+source)
	}
	return vb.Build()
}

func (c *client) gem(ctx context.Context, path, playerID string, req gemRequest) (*GemOutput, error) {
	token, err := c.session(ctx, playerID)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Balance int `json:"balance"`
	}
	if err := c.do(ctx, http.MethodPost, path, token, req, &resp); err != nil {
		return nil, err
	}
	return &GemOutput{Balance: resp.Balance}, nil
}

func (c *client) IssueGem(ctx context.Context, input *IssueGemInput) (*GemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateGem(input.PlayerID, input.Amount, string(input.Source), input.Source.Valid()); err != nil {
		return nil, err
	}
	return c.gem(ctx, gemIssuePath, input.PlayerID, gemRequest{Amount: input.Amount, Source: string(input.Source), Memo: input.Memo})
}

func (c *client) UseGem(ctx context.Context, input *UseGemInput) (*GemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateGem(input.PlayerID, input.Amount, string(input.Source), input.Source.Valid()); err != nil {
		return nil, err
	}
	out, err := c.gem(ctx, gemUsePath, input.PlayerID, gemRequest{Amount: input.Amount, Source: string(input.Source), Memo: input.Memo})
	if err != nil && errors.GetCode(err) == errors.CodeFailedPrecondition {
		var coded *errors.Error
		if errors.As(err, &coded) {
			return nil, coded.WithReason(errors.ReasonInsufficientGem)
		}
	}
	return out, err
}

func (c *client) Ranking(ctx context.Context) (*RankingOutput, error) {
	var resp struct {
		Data      []RankingEntry `json:"data"`
		UpdatedAt *time.Time     `json:"updatedAt"`
	}
	if err := c.do(ctx, http.MethodGet, rankingPath, "", nil, &resp); err != nil {
		return nil, err
	}
	entries := resp.Data
	if entries == nil {
		entries = []RankingEntry{}
	}
	return &RankingOutput{Entries: entries, UpdatedAt: resp.UpdatedAt}, nil
}
