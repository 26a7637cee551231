package models

import "time"

// SignalAction is a discrete trading signal delivered over the webhook.
type SignalAction string

const (
	ActionBuy      SignalAction = "Buy"
	ActionSell     SignalAction = "Sell"
	ActionBuyZone  SignalAction = "BuyZone"
	ActionSellZone SignalAction = "SellZone"
)

// SignalClass partitions actions into one-shot orders and state-like zones.
type SignalClass string

const (
	ClassOrder SignalClass = "order"
	ClassZone  SignalClass = "zone"
)

// Class returns the signal class for an action. Zones persist conceptually
// until superseded; orders fire once.
func (a SignalAction) Class() SignalClass {
	switch a {
	case ActionBuyZone, ActionSellZone:
		return ClassZone
	default:
		return ClassOrder
	}
}

// ParseSignalAction maps a webhook verb to an action. The second return is
// false for verbs the webhook should ignore.
func ParseSignalAction(verb string) (SignalAction, bool) {
	switch verb {
	case "buy":
		return ActionBuy, true
	case "sell":
		return ActionSell, true
	case "buyzone":
		return ActionBuyZone, true
	case "sellzone":
		return ActionSellZone, true
	default:
		return "", false
	}
}

// SignalEvent is an append-only timestamped signal for a symbol.
type SignalEvent struct {
	Symbol    string
	Action    SignalAction
	Class     SignalClass
	EventTime time.Time // UTC, truncated to the minute
}

// BarSignal is the correlator's verdict for one bar window. Primary is the
// label a consumer renders on the bar; Secondary is the zone classification
// tag when both classes fall in the same window. Empty strings mean no signal.
type BarSignal struct {
	Primary   SignalAction
	Secondary SignalAction
}

// IsZero reports whether the window had no signals at all.
func (s BarSignal) IsZero() bool { return s.Primary == "" && s.Secondary == "" }
