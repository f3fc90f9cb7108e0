package exchange

import (
	"math"
	"strconv"
	"strings"

	"github.com/Operatorliquid/hyper-bot/internal/domain"
)

// openMarkers are the naming variants the exchange uses for the same
// concept: order accepted and now open on the book.
var openMarkers = []string{"resting", "open", "opened", "placed", "working", "live", "accepted"}

// AckResult is the total classification of one placement
// acknowledgement. OrderID is nil unless Status is Filled or Resting,
// and for Resting it is always a valid, trackable id.
type AckResult struct {
	Status  domain.OrderStatus
	OrderID any // int64 or string when present
}

// ClassifyAck reduces a raw placement acknowledgement to the closed
// {Filled, Resting, Error} taxonomy, extracting the order id when one
// is present. The decision table, in order:
//
//  1. outer status not "ok"            -> Error
//  2. no status entries                -> Error
//  3. first entry carries "error"      -> Error, even if an id exists
//  4. first entry carries "filled"     -> Filled + best-effort id
//  5. first entry carries an open
//     marker with an extractable id    -> Resting + id
//  6. bare top-level "oid"             -> Resting (assume accepted)
//  7. anything else                    -> Error
//
// A resting order without an id cannot be tracked or cancelled, so it
// downgrades to Error.
func ClassifyAck(res map[string]any) AckResult {
	if res == nil {
		return AckResult{Status: domain.StatusError}
	}
	if s, _ := res["status"].(string); s != "ok" {
		return AckResult{Status: domain.StatusError}
	}

	statuses := digSlice(res, "response", "data", "statuses")
	if len(statuses) == 0 {
		return AckResult{Status: domain.StatusError}
	}
	st0, ok := statuses[0].(map[string]any)
	if !ok {
		return AckResult{Status: domain.StatusError}
	}

	if _, hasErr := st0["error"]; hasErr {
		return AckResult{Status: domain.StatusError}
	}

	if payload, hasFilled := st0["filled"]; hasFilled {
		return AckResult{Status: domain.StatusFilled, OrderID: extractOrderID(payload, st0["oid"])}
	}

	for _, marker := range openMarkers {
		payload, has := st0[marker]
		if !has {
			continue
		}
		if oid := extractOrderID(payload, st0["oid"]); oid != nil {
			return AckResult{Status: domain.StatusResting, OrderID: oid}
		}
	}

	// Unrecognized shape but a bare id present: conservatively treat
	// the order as accepted-and-open.
	if oid := extractOrderID(st0["oid"], nil); oid != nil {
		return AckResult{Status: domain.StatusResting, OrderID: oid}
	}

	return AckResult{Status: domain.StatusError}
}

// extractOrderID pulls an order id from the shapes the exchange uses: a
// nested {"oid": ...} object, a bare scalar, or a sibling fallback.
// Numeric ids normalize to int64.
func extractOrderID(container, fallback any) any {
	switch v := container.(type) {
	case map[string]any:
		if oid, ok := v["oid"]; ok {
			return normalizeID(oid)
		}
	case string, int, int64, float64:
		return normalizeID(v)
	}
	return normalizeID(fallback)
}

func normalizeID(id any) any {
	switch v := id.(type) {
	case nil:
		return nil
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		// JSON numbers decode as float64; real oids are integers.
		if v == math.Trunc(v) {
			return int64(v)
		}
		return v
	default:
		return id
	}
}

// ValidOrderID reports whether an extracted id can actually be used to
// track and cancel an order: a positive integer, or a non-empty string
// that is not the status keyword "filled" (which the exchange sometimes
// leaks where an id belongs).
func ValidOrderID(id any) bool {
	switch v := id.(type) {
	case int64:
		return v > 0
	case int:
		return v > 0
	case float64:
		return v > 0 && v == math.Trunc(v)
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s != "" && s != "filled"
	default:
		return false
	}
}

// CoerceOrderID converts numeric-looking string ids to integers for
// cancellation; everything else passes through unchanged. The cancel
// call's id type must match what the exchange originally issued.
func CoerceOrderID(id any) any {
	if s, ok := id.(string); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && isDigits(s) {
			return n
		}
	}
	return id
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// digSlice walks nested objects by key and returns the slice at the
// end of the path, or nil if any step is missing or mistyped.
func digSlice(m map[string]any, path ...string) []any {
	cur := m
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return nil
		}
		if i == len(path)-1 {
			s, _ := v.([]any)
			return s
		}
		cur, ok = v.(map[string]any)
		if !ok {
			return nil
		}
	}
	return nil
}
