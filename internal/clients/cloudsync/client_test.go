package cloudsync_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/errors"
)

// fakeCloud is an in-process stand-in for the hosted API.
type fakeCloud struct {
	mu       sync.Mutex
	saves    map[string]map[string]*string
	sessions map[string]string
	gems     map[string]int
	calls    map[string]int
	failSave bool
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{
		saves:    make(map[string]map[string]*string),
		sessions: make(map[string]string),
		gems:     make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (f *fakeCloud) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeCloud) saved(playerID string) map[string]*string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[playerID]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeCloud) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[r.URL.Path]++

	if r.URL.Path == "/api/superpet/session" {
		var body struct {
			PlayerID string `json:"playerId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		token := "token-" + body.PlayerID
		f.sessions[token] = body.PlayerID
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
		return
	}
	if r.URL.Path == "/api/superpet/ranking" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": []map[string]interface{}{{
				"rankScore": 812.5, "characterId": "c1", "name": "Mochi", "image": nil,
				"stats": map[string]int{"hp": 300, "attack": 40, "defense": 20, "speed": 15},
				"level": 12, "className": "Warrior", "element": "Fire",
			}},
			"updatedAt": "2025-03-01T00:00:00Z",
		})
		return
	}

	player, ok := f.sessions[r.Header.Get(cloudsync.SessionHeader)]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
		return
	}

	switch r.URL.Path {
	case "/api/superpet/save":
		if r.Method == http.MethodGet {
			data, ok := f.saves[player]
			if !ok {
				writeJSON(w, http.StatusOK, map[string]interface{}{"data": nil})
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
			return
		}
		if f.failSave {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			return
		}
		var body struct {
			Data map[string]*string `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.saves[player] = body.Data
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case "/api/superpet/gem":
		writeJSON(w, http.StatusOK, map[string]int{"balance": f.gems[player]})
	case "/api/superpet/gem/issue", "/api/superpet/gem/use":
		var body struct {
			Amount int    `json:"amount"`
			Source string `json:"source"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.URL.Path == "/api/superpet/gem/use" {
			if f.gems[player] < body.Amount {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "not enough gems"})
				return
			}
			f.gems[player] -= body.Amount
		} else {
			f.gems[player] += body.Amount
		}
		writeJSON(w, http.StatusOK, map[string]int{"balance": f.gems[player]})
	default:
		http.NotFound(w, r)
	}
}

type ClientTestSuite struct {
	suite.Suite
	cloud  *fakeCloud
	server *httptest.Server
	client cloudsync.Client
	ctx    context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.cloud = newFakeCloud()
	s.server = httptest.NewServer(s.cloud)
	client, err := cloudsync.New(&cloudsync.Config{BaseURL: s.server.URL + "/", HTTPTimeout: 2 * time.Second})
	s.Require().NoError(err)
	s.client = client
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func strPtr(v string) *string { return &v }

func (s *ClientTestSuite) TestSaveAndLoad() {
	err := s.client.Save(s.ctx, &cloudsync.SaveInput{
		PlayerID: "p1",
		Data: map[string]*string{
			"characters":       strPtr(`[{"id":"c1"}]`),
			"active-character": strPtr("c1"),
			"inventory":        nil,
		},
	})
	s.Require().NoError(err)
	s.Equal(1, s.cloud.count("/api/superpet/session"))

	out, err := s.client.Load(s.ctx, &cloudsync.LoadInput{PlayerID: "p1"})
	s.Require().NoError(err)
	s.Equal(`[{"id":"c1"}]`, out.Data["characters"])
	s.Equal("c1", out.Data["active-character"])
	_, hasInventory := out.Data["inventory"]
	s.False(hasInventory, "null keys are omitted")

	// the session token is reused
	s.Equal(1, s.cloud.count("/api/superpet/session"))
}

func (s *ClientTestSuite) TestLoadWithoutSave() {
	_, err := s.client.Load(s.ctx, &cloudsync.LoadInput{PlayerID: "nobody"})
	s.True(errors.IsNotFound(err))
}

func (s *ClientTestSuite) TestServerErrorsAreCoded() {
	s.cloud.failSave = true
	err := s.client.Save(s.ctx, &cloudsync.SaveInput{PlayerID: "p1", Data: map[string]*string{}})
	s.True(errors.IsUnavailable(err))
	s.Contains(err.Error(), "boom")
}

func (s *ClientTestSuite) TestUnreachableServer() {
	s.server.Close()
	_, err := s.client.StartSession(s.ctx, "p1")
	s.True(errors.IsUnavailable(err))
}

func (s *ClientTestSuite) TestGems() {
	out, err := s.client.IssueGem(s.ctx, &cloudsync.IssueGemInput{PlayerID: "p1", Amount: 100, Source: cloudsync.IssueReward})
	s.Require().NoError(err)
	s.Equal(100, out.Balance)

	out, err = s.client.UseGem(s.ctx, &cloudsync.UseGemInput{PlayerID: "p1", Amount: 30, Source: cloudsync.UseShopItem, Memo: "gold_pack"})
	s.Require().NoError(err)
	s.Equal(70, out.Balance)

	balance, err := s.client.GemBalance(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(70, balance)

	_, err = s.client.UseGem(s.ctx, &cloudsync.UseGemInput{PlayerID: "p1", Amount: 500, Source: cloudsync.UseGacha})
	s.True(errors.HasReason(err, errors.ReasonInsufficientGem))
}

func (s *ClientTestSuite) TestGemSourceValidation() {
	_, err := s.client.IssueGem(s.ctx, &cloudsync.IssueGemInput{PlayerID: "p1", Amount: 1, Source: "lottery"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.client.UseGem(s.ctx, &cloudsync.UseGemInput{PlayerID: "p1", Amount: 0, Source: cloudsync.UseRevive})
	s.True(errors.IsInvalidArgument(err))

	s.Equal(0, s.cloud.count("/api/superpet/gem/issue"))
	s.Equal(0, s.cloud.count("/api/superpet/gem/use"))
}

func (s *ClientTestSuite) TestRanking() {
	out, err := s.client.Ranking(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 1)
	s.Equal("Mochi", out.Entries[0].Name)
	s.Equal(40, out.Entries[0].Stats.Attack)
	s.Nil(out.Entries[0].Image)
	s.Require().NotNil(out.UpdatedAt)
	s.Equal(2025, out.UpdatedAt.Year())
}

func (s *ClientTestSuite) TestConfigValidation() {
	_, err := cloudsync.New(nil)
	s.Error(err)
	_, err = cloudsync.New(&cloudsync.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
