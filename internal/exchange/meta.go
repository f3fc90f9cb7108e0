package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// DefaultSizeDecimals is the fallback size precision when metadata is
// unavailable or the market cannot be located. This is a deliberate
// degrade-gracefully policy: the bot keeps quoting on the most common
// spot precision rather than dying on a metadata hiccup. Operators on
// non-default markets must verify metadata availability.
const DefaultSizeDecimals = 6

// Token is one entry of the spot token list.
type Token struct {
	Name       string `json:"name"`
	Index      int    `json:"index"`
	SzDecimals int    `json:"szDecimals"`
}

// UniverseEntry is one spot market: a name like "@142" or "UBTC/USDC"
// and the token indices it trades (base first).
type UniverseEntry struct {
	Name   string `json:"name"`
	Index  int    `json:"index"`
	Tokens []int  `json:"tokens"`
}

// SpotMeta is the exchange's spot market universe.
type SpotMeta struct {
	Tokens   []Token         `json:"tokens"`
	Universe []UniverseEntry `json:"universe"`
}

// MetaSource is the slice of Gateway the resolver needs.
type MetaSource interface {
	SpotMeta(ctx context.Context) (*SpotMeta, error)
}

// Resolver maps human tickers to canonical market ids and looks up
// per-market quantization parameters.
type Resolver struct {
	src MetaSource
}

func NewResolver(src MetaSource) *Resolver {
	return &Resolver{src: src}
}

// ResolveCoin returns the identifier the exchange expects for a spot
// market:
//   - "@123" style input is already canonical and passes through
//   - otherwise the token list is matched by exact name after stripping
//     quote-currency suffixes, then by the left side of "BASE/QUOTE"
//   - as a last resort the ticker is returned verbatim; the exchange
//     accepts "NAME/USDC" in several cases
//
// Metadata failures log and fall through to the verbatim ticker; this
// never returns an error.
func (r *Resolver) ResolveCoin(ctx context.Context, ticker string) string {
	if strings.HasPrefix(ticker, "@") {
		return ticker
	}

	target := strings.ToUpper(ticker)
	target = strings.ReplaceAll(target, "/USDC", "")
	target = strings.ReplaceAll(target, "/USD", "")

	sm, err := r.src.SpotMeta(ctx)
	if err != nil {
		slog.Warn("spot meta unavailable, using ticker verbatim", "ticker", ticker, "err", err)
		return ticker
	}

	if coin, ok := coinForToken(sm, target); ok {
		return coin
	}

	if base, _, found := strings.Cut(ticker, "/"); found {
		if coin, ok := coinForToken(sm, strings.ToUpper(base)); ok {
			return coin
		}
	}

	return ticker
}

// coinForToken finds the market name for a token by exact name match.
func coinForToken(sm *SpotMeta, name string) (string, bool) {
	for _, t := range sm.Tokens {
		if t.Name != name {
			continue
		}
		for _, u := range sm.Universe {
			for _, idx := range u.Tokens {
				if idx == t.Index {
					if u.Name != "" {
						return u.Name, true
					}
					return fmt.Sprintf("@%d", u.Index), true
				}
			}
		}
		return fmt.Sprintf("@%d", t.Index), true
	}
	return "", false
}

// SizeDecimals returns the base token's size decimals for the given
// market, or DefaultSizeDecimals when metadata is unavailable or the
// market cannot be located.
func (r *Resolver) SizeDecimals(ctx context.Context, coin string) int {
	sm, err := r.src.SpotMeta(ctx)
	if err != nil {
		slog.Warn("spot meta unavailable, using default size decimals",
			"coin", coin, "default", DefaultSizeDecimals, "err", err)
		return DefaultSizeDecimals
	}

	mkt := locateMarket(sm, coin)
	if mkt == nil || len(mkt.Tokens) == 0 {
		return DefaultSizeDecimals
	}

	baseIdx := mkt.Tokens[0]
	for _, t := range sm.Tokens {
		if t.Index == baseIdx {
			return t.SzDecimals
		}
	}
	return DefaultSizeDecimals
}

// locateMarket finds the universe entry for a coin given in canonical
// indexed form, by market name, or by the base token of "BASE/QUOTE".
func locateMarket(sm *SpotMeta, coin string) *UniverseEntry {
	if idx, ok := canonicalIndex(coin); ok {
		for i := range sm.Universe {
			u := &sm.Universe[i]
			if u.Index == idx || u.Name == coin {
				return u
			}
		}
	}

	for i := range sm.Universe {
		if sm.Universe[i].Name == coin {
			return &sm.Universe[i]
		}
	}

	if base, _, found := strings.Cut(coin, "/"); found {
		baseName := strings.ToUpper(base)
		for _, t := range sm.Tokens {
			if t.Name != baseName {
				continue
			}
			for i := range sm.Universe {
				u := &sm.Universe[i]
				if len(u.Tokens) > 0 && u.Tokens[0] == t.Index {
					return u
				}
			}
			break
		}
	}

	return nil
}

func canonicalIndex(coin string) (int, bool) {
	if !strings.HasPrefix(coin, "@") {
		return 0, false
	}
	n, err := strconv.Atoi(coin[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
