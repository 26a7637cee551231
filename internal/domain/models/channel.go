package models

import "time"

// ChannelDirection classifies the slope of a regression channel.
type ChannelDirection string

const (
	DirectionUp   ChannelDirection = "up"
	DirectionDown ChannelDirection = "down"
	DirectionFlat ChannelDirection = "flat"
)

// Channel is a least-squares regression channel over a window of closes.
// Derived, never persisted, recomputed per request or per closed bar.
type Channel struct {
	Symbol       string
	Granularity  string
	ComputedAt   time.Time
	Length       int
	DevMult      float64
	Slope        float64
	Intercept    float64
	Center       float64
	Upper        float64
	Lower        float64
	StdDev       float64
	WidthPercent float64
	AngleDegrees float64
	Direction    ChannelDirection
	Live         bool // true when the last point is the live tick
}
