package domain

// Side of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Quote is one side's desired order for a single loop iteration.
// Ephemeral: produced, quantized, submitted, discarded.
type Quote struct {
	Side  Side
	Price float64
	Size  float64
}

// OrderStatus is the closed classification of a placement
// acknowledgement. Every call site switches over all three cases.
type OrderStatus int

const (
	// StatusError covers rejections, malformed acks, and resting
	// acks whose order id could not be extracted.
	StatusError OrderStatus = iota
	// StatusFilled means the order matched immediately.
	StatusFilled
	// StatusResting means the order was accepted and is open.
	StatusResting
)

func (s OrderStatus) String() string {
	switch s {
	case StatusFilled:
		return "filled"
	case StatusResting:
		return "resting"
	default:
		return "error"
	}
}
