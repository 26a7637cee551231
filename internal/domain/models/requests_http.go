package models

// Requests for the HTTP query surface. Defined in domain for consistency and reuse.

type BarsRequest struct {
	Symbol      string `query:"symbol" json:"symbol" validate:"required"`
	Granularity string `query:"granularity" json:"granularity" default:"1m" validate:"oneof=1m 5m"`
	Limit       int    `query:"limit" json:"limit" default:"30" validate:"gte=1,lte=1000"`
}

type ChannelRequest struct {
	Symbol      string  `query:"symbol" json:"symbol" validate:"required"`
	Granularity string  `query:"granularity" json:"granularity" default:"1m" validate:"oneof=1m 5m"`
	Length      int     `query:"length" json:"length" default:"50" validate:"gte=2,lte=500"`
	Dev         float64 `query:"dev" json:"dev" default:"2.0" validate:"gt=0,lte=10"`
}

type LiveChannelRequest struct {
	Symbol string  `query:"symbol" json:"symbol" validate:"required"`
	Length int     `query:"length" json:"length" default:"50" validate:"gte=2,lte=500"`
	Dev    float64 `query:"dev" json:"dev" default:"2.0" validate:"gt=0,lte=10"`
}

type AddSymbolRequest struct {
	Symbol string `json:"symbol" validate:"required,alphanum,min=2,max=20"`
}

// WebhookRequest carries the raw alert text, e.g. "buy BTCUSDT".
type WebhookRequest struct {
	Message string `json:"message" validate:"required"`
}
