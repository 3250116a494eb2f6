// Package server exposes the webhook receiver and its debug endpoints over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"webhook-trader-go/internal/execution"
	"webhook-trader-go/internal/metrics"
	"webhook-trader-go/internal/paper"
	"webhook-trader-go/internal/pipeline"
	"webhook-trader-go/internal/signal"
)

// Version is reported by the banner and health endpoints.
const Version = "0.1.0"

const defaultSignalLimit = 50

var (
	errPaperDisabled = errors.New("paper trading disabled")
	errBadLimit      = errors.New("limit must be an integer")
	errTradeNotFound = errors.New("trade not found")
)

// Status reports which backend the engine is routing to.
type Status interface {
	Mode() execution.Mode
	Exchange() string
	IsConnected() bool
}

// Deps wires the handler. Paper may be nil in live mode; an empty Secret disables webhook auth.
type Deps struct {
	Pipeline *pipeline.Pipeline
	History  *signal.History
	Engine   Status
	Paper    *paper.Account
	Secret   string
	Log      zerolog.Logger
}

type Handler struct {
	router   *gin.Engine
	pipeline *pipeline.Pipeline
	history  *signal.History
	engine   Status
	paper    *paper.Account
	secret   string
	log      zerolog.Logger
	started  time.Time
}

func NewHandler(d Deps) *Handler {
	router := gin.New()
	_ = router.SetTrustedProxies(nil)
	router.Use(gin.Recovery(), requestID(), accessLog(d.Log), cors())

	h := &Handler{
		router:   router,
		pipeline: d.Pipeline,
		history:  d.History,
		engine:   d.Engine,
		paper:    d.Paper,
		secret:   d.Secret,
		log:      d.Log,
		started:  time.Now(),
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/", h.root)
	h.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := h.router.Group("/api")
	{
		api.GET("/health", h.health)

		hooks := api.Group("/webhook", h.requireSecret())
		{
			hooks.POST("/tv", h.receiveAlert)
			hooks.POST("/raw", h.receiveRaw)
		}

		api.GET("/signals", h.listSignals)
		api.DELETE("/signals", h.clearSignals)

		api.GET("/paper/balance", h.paperBalance)
		api.GET("/paper/trades", h.paperTrades)
		api.GET("/paper/trades/:id", h.paperTrade)
	}
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "WebhookTrader",
		"status":  "running",
		"version": Version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"mode":               h.engine.Mode(),
		"exchange":           h.engine.Exchange(),
		"exchange_connected": h.engine.IsConnected(),
		"signals_processed":  h.history.Len(),
		"uptime":             time.Since(h.started).Round(time.Second).String(),
	})
}

// alertRequest is the bound form of signal.Alert. Price is a pointer so that an explicit 0 is
// accepted and left to the engine, while a missing price is a 422.
type alertRequest struct {
	Strategy  string   `json:"strategy" binding:"required"`
	Action    string   `json:"action" binding:"required"`
	Ticker    string   `json:"ticker" binding:"required"`
	Price     *float64 `json:"price" binding:"required"`
	Qty       float64  `json:"qty"`
	Timestamp *string  `json:"timestamp"`
}

func (r alertRequest) alert() signal.Alert {
	return signal.Alert{
		Strategy:  r.Strategy,
		Action:    r.Action,
		Ticker:    r.Ticker,
		Price:     *r.Price,
		Qty:       r.Qty,
		Timestamp: r.Timestamp,
	}
}

// receiveAlert is the TradingView endpoint. Malformed payloads are 422, unknown actions 400;
// execution failures are recorded and still answered with 200.
func (h *Handler) receiveAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, err)
		return
	}
	resp, err := h.pipeline.Process(c.Request.Context(), req.alert(), c.ClientIP())
	if errors.Is(err, signal.ErrInvalidAction) {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// receiveRaw accepts any body. Non-JSON bodies are kept as a JSON string.
func (h *Handler) receiveRaw(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	body := json.RawMessage(data)
	if !json.Valid(data) {
		body, _ = json.Marshal(string(data))
	}
	id := h.pipeline.RecordRaw(body, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"status": "received", "signal_id": id, "body": body})
}

func (h *Handler) listSignals(c *gin.Context) {
	limit := defaultSignalLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, errBadLimit)
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   h.history.Len(),
		"signals": h.history.Recent(limit),
	})
}

func (h *Handler) clearSignals(c *gin.Context) {
	h.history.Clear()
	h.log.Warn().Str("client_ip", c.ClientIP()).Msg("signal history cleared")
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *Handler) paperBalance(c *gin.Context) {
	if h.paper == nil {
		writeError(c, http.StatusNotFound, errPaperDisabled)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balances": h.paper.Balances(),
		"trades":   h.paper.TradeCount(),
	})
}

func (h *Handler) paperTrades(c *gin.Context) {
	if h.paper == nil {
		writeError(c, http.StatusNotFound, errPaperDisabled)
		return
	}
	trades := h.paper.Trades()
	c.JSON(http.StatusOK, gin.H{"total": len(trades), "trades": trades})
}

func (h *Handler) paperTrade(c *gin.Context) {
	if h.paper == nil {
		writeError(c, http.StatusNotFound, errPaperDisabled)
		return
	}
	trade, ok := h.paper.Trade(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, errTradeNotFound)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
