package webui

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Operatorliquid/hyper-bot/internal/bot"
	"github.com/Operatorliquid/hyper-bot/internal/infra"
)

// Controller is what the HTTP layer needs from the bot session.
type Controller interface {
	Start(p bot.Params) error
	Stop()
	Running() bool
	Status() bot.SessionStatus
}

// BalanceFunc fetches the account's spot balances. Optional; the
// status endpoint omits balances when unset.
type BalanceFunc func(ctx context.Context) (map[string]float64, error)

// Server exposes start/stop/status/logs over HTTP. The bot runs in the
// same process; the server only flips the session on and off.
type Server struct {
	cfg      *infra.Config
	session  Controller
	logs     *LogBuffer
	logger   *slog.Logger
	balances BalanceFunc
}

func NewServer(cfg *infra.Config, session Controller, logs *LogBuffer, logger *slog.Logger) *Server {
	return &Server{cfg: cfg, session: session, logs: logs, logger: logger}
}

// WithBalances attaches a balance source for /status.
func (s *Server) WithBalances(fn BalanceFunc) *Server {
	s.balances = fn
	return s
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/logs", s.handleLogs).Methods(http.MethodGet)
	r.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/stop", s.handleStop).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: orDefault(s.cfg.WebUI.AllowOrigins, []string{"*"}),
		AllowedHeaders: orDefault(s.cfg.WebUI.AllowHeaders, []string{"Authorization", "Content-Type", "X-Auth-Token"}),
		AllowedMethods: orDefault(s.cfg.WebUI.AllowMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	})
	return c.Handler(s.withAuth(r))
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// withAuth gates every non-preflight request on the shared token. An
// unset token means the UI is locked out entirely rather than open.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		token := s.cfg.WebUI.AuthToken
		if token == "" || requestToken(r) != token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.Header.Get("X-Auth-Token")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		bot.SessionStatus
		Balances map[string]float64 `json:"balances,omitempty"`
	}{SessionStatus: s.session.Status()}

	if s.balances != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		bal, err := s.balances(ctx)
		if err != nil {
			s.logger.Warn("balance fetch failed", "err", err)
		} else {
			resp.Balances = bal
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// startRequest carries per-run overrides; absent fields fall back to
// the server's configured defaults.
type startRequest struct {
	Ticker          *string  `json:"ticker"`
	AmountPerLevel  *float64 `json:"amount_per_level"`
	MinSpread       *float64 `json:"min_spread"`
	TTL             *int     `json:"ttl"`
	MakerOnly       *bool    `json:"maker_only"`
	Testnet         *bool    `json:"testnet"`
	AgentPrivateKey *string  `json:"agent_private_key"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
			return
		}
	}

	p := s.baseParams()
	if req.Ticker != nil && *req.Ticker != "" {
		p.Ticker = *req.Ticker
	}
	if req.AmountPerLevel != nil && *req.AmountPerLevel > 0 {
		p.AmountPerLevel = *req.AmountPerLevel
	}
	if req.MinSpread != nil && *req.MinSpread >= 0 {
		p.MinSpreadPct = *req.MinSpread
	}
	if req.TTL != nil && *req.TTL > 0 {
		p.TTL = time.Duration(*req.TTL) * time.Second
	}
	if req.MakerOnly != nil {
		p.MakerOnly = *req.MakerOnly
	}
	if req.Testnet != nil {
		p.UseTestnet = *req.Testnet
	}
	if req.AgentPrivateKey != nil && *req.AgentPrivateKey != "" {
		key := strings.TrimSpace(*req.AgentPrivateKey)
		if !strings.HasPrefix(key, "0x") || len(key) != 66 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agent_private_key must be 0x-prefixed, 66 chars"})
			return
		}
		p.AgentPrivateKey = key
		p.UseAgent = true
	}

	if err := s.session.Start(p); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	s.logger.Info("session started via api", "ticker", p.Ticker, "maker_only", p.MakerOnly, "testnet", p.UseTestnet)
	writeJSON(w, http.StatusOK, map[string]any{"started": true, "ticker": p.Ticker})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	wasRunning := s.session.Running()
	s.session.Stop()
	if wasRunning {
		s.logger.Info("session stopped via api")
	}
	writeJSON(w, http.StatusOK, map[string]any{"stopped": true, "was_running": wasRunning})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be a non-negative integer"})
			return
		}
		since = n
	}
	lines, next := s.logs.Since(since)
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines, "next": next})
}

func (s *Server) baseParams() bot.Params {
	b := s.cfg.Bot
	return bot.Params{
		Ticker:          b.Ticker,
		AmountPerLevel:  b.AmountPerLevel,
		MinSpreadPct:    b.MinSpreadPct,
		MakerOnly:       b.MakerOnly,
		TTL:             time.Duration(b.TTLSeconds * float64(time.Second)),
		UseTestnet:      b.UseTestnet,
		UseAgent:        b.UseAgent,
		PrivateKey:      b.PrivateKey,
		AgentPrivateKey: b.AgentPrivateKey,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "err", err)
	}
}
