package exchange

import (
	"encoding/json"
	"testing"

	"github.com/Operatorliquid/hyper-bot/internal/domain"
)

func mustDecode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad test json: %v", err)
	}
	return m
}

func TestClassifyAck_DecisionTable(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantStatus domain.OrderStatus
		wantID     any
	}{
		{
			"Resting With Nested Oid",
			`{"status":"ok","response":{"data":{"statuses":[{"resting":{"oid":55}}]}}}`,
			domain.StatusResting, int64(55),
		},
		{
			"Filled With Nested Oid",
			`{"status":"ok","response":{"data":{"statuses":[{"filled":{"oid":9}}]}}}`,
			domain.StatusFilled, int64(9),
		},
		{
			"Outer Err",
			`{"status":"err"}`,
			domain.StatusError, nil,
		},
		{
			"Explicit Error Entry",
			`{"status":"ok","response":{"data":{"statuses":[{"error":"bad"}]}}}`,
			domain.StatusError, nil,
		},
		{
			"Error Wins Over Id",
			`{"status":"ok","response":{"data":{"statuses":[{"error":"bad","oid":7}]}}}`,
			domain.StatusError, nil,
		},
		{
			"No Statuses",
			`{"status":"ok","response":{"data":{"statuses":[]}}}`,
			domain.StatusError, nil,
		},
		{
			"Missing Response",
			`{"status":"ok"}`,
			domain.StatusError, nil,
		},
		{
			"Open Variant Placed",
			`{"status":"ok","response":{"data":{"statuses":[{"placed":{"oid":"88"}}]}}}`,
			domain.StatusResting, "88",
		},
		{
			"Open Variant Accepted Bare Scalar",
			`{"status":"ok","response":{"data":{"statuses":[{"accepted":123}]}}}`,
			domain.StatusResting, int64(123),
		},
		{
			"Open Marker Without Id Falls To Sibling",
			`{"status":"ok","response":{"data":{"statuses":[{"working":{},"oid":42}]}}}`,
			domain.StatusResting, int64(42),
		},
		{
			"Open Marker Without Any Id Is Error",
			`{"status":"ok","response":{"data":{"statuses":[{"live":{}}]}}}`,
			domain.StatusError, nil,
		},
		{
			"Bare Toplevel Oid Assumed Resting",
			`{"status":"ok","response":{"data":{"statuses":[{"oid":314}]}}}`,
			domain.StatusResting, int64(314),
		},
		{
			"Unknown Shape",
			`{"status":"ok","response":{"data":{"statuses":[{"mystery":1}]}}}`,
			domain.StatusError, nil,
		},
		{
			"Filled Without Id Still Filled",
			`{"status":"ok","response":{"data":{"statuses":[{"filled":{}}]}}}`,
			domain.StatusFilled, nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAck(mustDecode(t, tt.raw))
			if got.Status != tt.wantStatus {
				t.Errorf("status = %v; want %v", got.Status, tt.wantStatus)
			}
			if got.OrderID != tt.wantID {
				t.Errorf("oid = %#v; want %#v", got.OrderID, tt.wantID)
			}
		})
	}

	t.Run("Nil Map", func(t *testing.T) {
		if got := ClassifyAck(nil); got.Status != domain.StatusError {
			t.Errorf("status = %v; want error", got.Status)
		}
	})
}

func TestValidOrderID(t *testing.T) {
	tests := []struct {
		id   any
		want bool
	}{
		{int64(55), true},
		{int64(0), false},
		{int64(-1), false},
		{"12345", true},
		{"abc", true},
		{"", false},
		{"  ", false},
		{"filled", false},
		{"FILLED", false},
		{nil, false},
		{3.5, false},
		{float64(7), true},
	}

	for _, tt := range tests {
		if got := ValidOrderID(tt.id); got != tt.want {
			t.Errorf("ValidOrderID(%#v) = %v; want %v", tt.id, got, tt.want)
		}
	}
}

func TestCoerceOrderID(t *testing.T) {
	tests := []struct {
		id   any
		want any
	}{
		{"12345", int64(12345)},
		{"abc", "abc"},
		{"12a45", "12a45"},
		{int64(42), int64(42)},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CoerceOrderID(tt.id); got != tt.want {
			t.Errorf("CoerceOrderID(%#v) = %#v; want %#v", tt.id, got, tt.want)
		}
	}
}
