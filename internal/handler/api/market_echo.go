package api

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"TrendPull/internal/domain/models"
	domrepo "TrendPull/internal/domain/repository"
	"TrendPull/internal/services/channel"
	"TrendPull/internal/usecase"
	xhttp "TrendPull/pkg/http"
	xlogger "TrendPull/pkg/logger"
)

// HealthCheck pings one infrastructure dependency.
type HealthCheck func(ctx context.Context) error

// MarketEchoHandler exposes the query surface, webhook ingestion, and the
// symbol registry CRUD over Echo.
type MarketEchoHandler struct {
	logger   *xlogger.Logger
	query    *usecase.MarketQuery
	ingest   *usecase.SignalIngest
	registry domrepo.SymbolRegistry
	health   map[string]HealthCheck
}

func NewMarketEchoHandler(
	logger *xlogger.Logger,
	query *usecase.MarketQuery,
	ingest *usecase.SignalIngest,
	registry domrepo.SymbolRegistry,
	health map[string]HealthCheck,
) *MarketEchoHandler {
	return &MarketEchoHandler{
		logger:   logger,
		query:    query,
		ingest:   ingest,
		registry: registry,
		health:   health,
	}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/symbols", h.ListSymbols)
	g.POST("/symbols", h.AddSymbol)
	g.DELETE("/symbols/:symbol", h.RemoveSymbol)
	g.GET("/bars", h.Bars)
	g.GET("/channel", h.ClosedChannel)
	g.GET("/channel/live", h.LiveChannel)

	e.POST("/webhook", h.Webhook)
	e.GET("/healthz", h.Healthz)
}

// --- symbols ---

func (h *MarketEchoHandler) ListSymbols(c echo.Context) error {
	symbols, err := h.registry.List(c.Request().Context())
	if err != nil {
		h.logger.Error("list symbols error", xlogger.Error(err))
		return xhttp.InternalErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, symbols)
}

func (h *MarketEchoHandler) AddSymbol(c echo.Context) error {
	req := &models.AddSymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.registry.Add(c.Request().Context(), req.Symbol); err != nil {
		h.logger.Error("add symbol error", xlogger.Error(err))
		return xhttp.InternalErrorResponse(c)
	}
	// takes effect on the next reconnect cycle
	return xhttp.CreatedResponse(c, map[string]string{"symbol": req.Symbol})
}

func (h *MarketEchoHandler) RemoveSymbol(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}
	if err := h.registry.Remove(c.Request().Context(), symbol); err != nil {
		h.logger.Error("remove symbol error", xlogger.Error(err))
		return xhttp.InternalErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, map[string]string{"symbol": symbol})
}

// --- webhook ---

func (h *MarketEchoHandler) Webhook(c echo.Context) error {
	req := &models.WebhookRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, map[string]string{"status": "ignored"})
	}

	ev, err := h.ingest.Ingest(c.Request().Context(), req.Message)
	if err != nil {
		if errors.Is(err, usecase.ErrIgnoredMessage) {
			return xhttp.BadRequestResponse(c, map[string]string{"status": "ignored"})
		}
		h.logger.Error("webhook ingest error", xlogger.Error(err))
		return xhttp.InternalErrorResponse(c)
	}

	return xhttp.SuccessResponse(c, map[string]string{
		"status": "success",
		"symbol": ev.Symbol,
		"action": string(ev.Action),
	})
}

// --- bars & channels ---

type barJSON struct {
	Time      string  `json:"time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Signal    string  `json:"signal,omitempty"`
	ZoneState string  `json:"zone,omitempty"`
}

func (h *MarketEchoHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	gran := domrepo.NormalizeGranularity(req.Granularity)

	views, err := h.query.RecentBars(c.Request().Context(), req.Symbol, gran, req.Limit)
	if err != nil {
		h.logger.Error("bars query error", xlogger.Error(err))
		return xhttp.InternalErrorResponse(c)
	}

	out := make([]barJSON, 0, len(views))
	for _, v := range views {
		b := barJSON{
			Time:  v.Bar.OpenTime.Format("2006-01-02 15:04"),
			Open:  v.Bar.Open,
			High:  v.Bar.High,
			Low:   v.Bar.Low,
			Close: v.Bar.Close,
		}
		if !v.Signal.IsZero() {
			b.Signal = string(v.Signal.Primary)
			b.ZoneState = string(v.Signal.Secondary)
		}
		out = append(out, b)
	}
	return xhttp.SuccessResponse(c, out)
}

type channelJSON struct {
	Symbol       string  `json:"symbol"`
	Granularity  string  `json:"granularity"`
	ComputedAt   string  `json:"computed_at"`
	Length       int     `json:"length"`
	DevMult      float64 `json:"dev_mult"`
	Slope        float64 `json:"slope"`
	Intercept    float64 `json:"intercept"`
	Center       float64 `json:"center"`
	Upper        float64 `json:"upper"`
	Lower        float64 `json:"lower"`
	StdDev       float64 `json:"std_dev"`
	WidthPercent float64 `json:"width_percent"`
	AngleDegrees float64 `json:"angle_degrees"`
	Direction    string  `json:"direction"`
	Live         bool    `json:"live"`
}

func channelToJSON(ch models.Channel) channelJSON {
	return channelJSON{
		Symbol:       ch.Symbol,
		Granularity:  ch.Granularity,
		ComputedAt:   ch.ComputedAt.Format(time.RFC3339),
		Length:       ch.Length,
		DevMult:      ch.DevMult,
		Slope:        ch.Slope,
		Intercept:    ch.Intercept,
		Center:       ch.Center,
		Upper:        ch.Upper,
		Lower:        ch.Lower,
		StdDev:       ch.StdDev,
		WidthPercent: ch.WidthPercent,
		AngleDegrees: ch.AngleDegrees,
		Direction:    string(ch.Direction),
		Live:         ch.Live,
	}
}

func (h *MarketEchoHandler) ClosedChannel(c echo.Context) error {
	req := &models.ChannelRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	gran := domrepo.NormalizeGranularity(req.Granularity)

	ch, err := h.query.ClosedChannel(c.Request().Context(), req.Symbol, gran,
		channel.Params{Length: req.Length, DevMult: req.Dev})
	if err != nil {
		return h.channelError(c, err)
	}
	return xhttp.SuccessResponse(c, channelToJSON(ch))
}

func (h *MarketEchoHandler) LiveChannel(c echo.Context) error {
	req := &models.LiveChannelRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ch, err := h.query.LiveChannel(c.Request().Context(), req.Symbol,
		channel.Params{Length: req.Length, DevMult: req.Dev})
	if err != nil {
		return h.channelError(c, err)
	}
	return xhttp.SuccessResponse(c, channelToJSON(ch))
}

func (h *MarketEchoHandler) channelError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, channel.ErrInsufficientData):
		return xhttp.UnprocessableResponse(c, map[string]string{"error": "insufficient data"})
	case errors.Is(err, channel.ErrZeroVariance):
		return xhttp.UnprocessableResponse(c, map[string]string{"error": "zero variance in window"})
	default:
		h.logger.Error("channel query error", xlogger.Error(err))
		return xhttp.InternalErrorResponse(c)
	}
}

// --- health ---

func (h *MarketEchoHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.health))
	healthy := true
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		return xhttp.DataResponse(c, 503, status)
	}
	return xhttp.SuccessResponse(c, status)
}
