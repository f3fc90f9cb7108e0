package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Operatorliquid/hyper-bot/internal/domain"
)

const (
	MainnetAPIURL = "https://api.hyperliquid.xyz"
	TestnetAPIURL = "https://api.hyperliquid-testnet.xyz"

	MainnetWSURL = "wss://api.hyperliquid.xyz/ws"
	TestnetWSURL = "wss://api.hyperliquid-testnet.xyz/ws"
)

// Based builder fee configuration, carried on every order.
// Fee is in tenths of a basis point: 100 = 10 bps = 0.1%.
var basedBuilder = map[string]any{
	"b": "0x1924b8561eeF20e70Ede628A296175D358BE80e5",
	"f": 100,
}

// basedCloid is the fixed client order id tagging every placement.
// It doubles as the idempotency tag the API expects.
const basedCloid = "0xba5ed11067f2cc08ba5ed10000ba5ed1"

// HLOptions configures the Hyperliquid client.
type HLOptions struct {
	UseTestnet      bool
	PrivateKey      string
	UseAgent        bool
	AgentPrivateKey string
}

// HLClient is the concrete Gateway over Hyperliquid's REST API.
// The info endpoint is unauthenticated; the exchange endpoint takes
// signed actions.
type HLClient struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	account    common.Address // address the orders act on
}

// NewHLClient builds the client. In agent mode the agent key signs on
// behalf of the main wallet's address.
func NewHLClient(opts HLOptions) (*HLClient, error) {
	baseURL := MainnetAPIURL
	if opts.UseTestnet {
		baseURL = TestnetAPIURL
	}

	main, err := NewSigner(opts.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("main wallet: %w", err)
	}

	signer := main
	if opts.UseAgent && opts.AgentPrivateKey != "" {
		agent, err := NewSigner(opts.AgentPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("agent wallet: %w", err)
		}
		signer = agent
		slog.Info("agent mode", "account", main.Address().Hex(), "agent", agent.Address().Hex())
	} else {
		slog.Info("main wallet mode", "account", main.Address().Hex())
	}

	return &HLClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		signer:     signer,
		account:    main.Address(),
	}, nil
}

// PlaceLimit submits a GTC limit order with the builder fee attached.
func (c *HLClient) PlaceLimit(ctx context.Context, coin string, side domain.Side, size, price float64) (map[string]any, error) {
	action := map[string]any{
		"type":     "order",
		"grouping": "na",
		"orders": []map[string]any{{
			"coin":     coin,
			"is_buy":   side == domain.Buy,
			"sz":       trimFloat(size),
			"limit_px": trimFloat(price),
			"order_type": map[string]any{
				"limit": map[string]any{"tif": "Gtc"},
			},
			"cloid": basedCloid,
		}},
		"builder": basedBuilder,
	}

	return c.postExchange(ctx, action)
}

// Cancel cancels one order by id.
func (c *HLClient) Cancel(ctx context.Context, coin string, oid any) (map[string]any, error) {
	action := map[string]any{
		"type": "cancel",
		"cancels": []map[string]any{{
			"coin": coin,
			"oid":  oid,
		}},
	}

	return c.postExchange(ctx, action)
}

// SpotMeta fetches the token list and market universe.
func (c *HLClient) SpotMeta(ctx context.Context) (*SpotMeta, error) {
	body, err := c.postInfo(ctx, map[string]any{"type": "spotMeta"})
	if err != nil {
		return nil, err
	}

	var sm SpotMeta
	if err := json.Unmarshal(body, &sm); err != nil {
		return nil, fmt.Errorf("decode spot meta: %w", err)
	}
	return &sm, nil
}

// SpotBalances returns total balances per coin for the account.
func (c *HLClient) SpotBalances(ctx context.Context) (map[string]float64, error) {
	body, err := c.postInfo(ctx, map[string]any{
		"type": "spotClearinghouseState",
		"user": c.account.Hex(),
	})
	if err != nil {
		return nil, err
	}

	var state struct {
		Balances []struct {
			Coin  string `json:"coin"`
			Total string `json:"total"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}

	out := make(map[string]float64, len(state.Balances))
	for _, b := range state.Balances {
		total, err := strconv.ParseFloat(b.Total, 64)
		if err != nil {
			continue
		}
		out[b.Coin] = total
	}
	return out, nil
}

func (c *HLClient) postExchange(ctx context.Context, action map[string]any) (map[string]any, error) {
	nonce := time.Now().UnixMilli()

	sig, err := c.signer.SignAction(action, nonce)
	if err != nil {
		return nil, err
	}

	req := map[string]any{
		"action":    action,
		"nonce":     nonce,
		"signature": sig,
	}
	body, err := c.post(ctx, "/exchange", req)
	if err != nil {
		return nil, err
	}

	var res map[string]any
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode exchange response: %w", err)
	}
	return res, nil
}

func (c *HLClient) postInfo(ctx context.Context, payload map[string]any) ([]byte, error) {
	return c.post(ctx, "/info", payload)
}

func (c *HLClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: http %d: %s", path, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// trimFloat renders a float the way the API wants: no exponent, no
// trailing zeros.
func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
