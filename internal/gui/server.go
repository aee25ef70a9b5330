// Package gui serves a local browser page for placing testnet orders.
package gui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"futures-testnet-bot/internal/api"
	"futures-testnet-bot/internal/logger"
	"futures-testnet-bot/internal/metrics"
	"futures-testnet-bot/internal/model"
	"futures-testnet-bot/internal/order"
	"futures-testnet-bot/internal/repository"
	"futures-testnet-bot/internal/validator"
)

//go:embed static/index.html
var staticFS embed.FS

const (
	DefaultPingInterval = 30 * time.Second
	DefaultSymbol       = "BTCUSDT"
	defaultLogLimit     = 50
	maxLogLimit         = 500
	maxBodyBytes        = 1 << 16
)

// KindBusy is reported when a submission is already in flight.
const KindBusy model.ErrorKind = "busy"

type Exchange interface {
	Ping(ctx context.Context) error
	PlaceOrder(ctx context.Context, params api.Params) (*model.OrderResponse, error)
}

// TickerFeed is satisfied by *market.TickerService.
type TickerFeed interface {
	Watch(symbol string)
	Last(symbol string) (model.Ticker, bool)
	Updates() <-chan model.Ticker
	Stop()
}

type Options struct {
	Exchange Exchange
	// Journal and Ticker are optional.
	Journal        *repository.Journal
	Ticker         TickerFeed
	Metrics        *metrics.Tracker
	RecvWindow     time.Duration
	PingInterval   time.Duration
	AllowedOrigins []string
}

// Connectivity is the state behind the page's indicator.
type Connectivity struct {
	Online    bool            `json:"online"`
	Checked   bool            `json:"checked"`
	CheckedAt time.Time       `json:"checkedAt,omitempty"`
	LatencyMs float64         `json:"latencyMs"`
	Kind      model.ErrorKind `json:"kind,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type Server struct {
	router   *mux.Router
	hub      *Hub
	upgrader websocket.Upgrader

	exchange Exchange
	service  *order.Service
	journal  *repository.Journal
	ticker   TickerFeed
	metrics  *metrics.Tracker

	pingInterval   time.Duration
	allowedOrigins []string

	// submitMu allows one outstanding submission.
	submitMu sync.Mutex

	connMu sync.RWMutex
	conn   Connectivity

	symbolMu sync.Mutex
	symbol   string
}

func NewServer(opts Options) *Server {
	tracker := opts.Metrics
	if tracker == nil {
		tracker = metrics.NewTracker()
	}
	interval := opts.PingInterval
	if interval <= 0 {
		interval = DefaultPingInterval
	}

	s := &Server{
		router:         mux.NewRouter(),
		hub:            NewHub(),
		exchange:       opts.Exchange,
		journal:        opts.Journal,
		ticker:         opts.Ticker,
		metrics:        tracker,
		pingInterval:   interval,
		allowedOrigins: opts.AllowedOrigins,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	timed := &timedExchange{Exchange: opts.Exchange, metrics: tracker}
	recorder := &pageRecorder{journal: opts.Journal, hub: s.hub}
	s.service = order.NewService(timed, order.NewBuilder(opts.RecvWindow), recorder)

	if s.ticker != nil {
		s.hub.onWatch = s.watch
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")

	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/ping", s.handlePing).Methods("GET")
	apiRouter.HandleFunc("/orders/preview", s.handlePreview).Methods("POST")
	apiRouter.HandleFunc("/orders", s.handleSubmitOrder).Methods("POST")
	apiRouter.HandleFunc("/log", s.handleLog).Methods("GET")
	apiRouter.HandleFunc("/stats", s.handleStats).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Handler returns the router, wrapped with CORS when origins are configured.
func (s *Server) Handler() http.Handler {
	if len(s.allowedOrigins) == 0 {
		return s.router
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Start launches the hub, the connectivity pinger and the ticker forwarder.
// They stop when ctx is done.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
	go s.pingLoop(ctx)
	if s.ticker != nil {
		go s.forwardTicker(ctx)
		s.watch(DefaultSymbol)
	}
}

// ListenAndServe runs Start and serves addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("GUI server shutdown", "error", err)
		}
	}()

	logger.Info("GUI listening", "url", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		s.checkConnectivity(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// checkConnectivity pings the exchange, stores the result and pushes it to the page.
func (s *Server) checkConnectivity(ctx context.Context) (Connectivity, error) {
	start := time.Now()
	err := s.metrics.Time("ping", func() error { return s.exchange.Ping(ctx) })
	elapsed := time.Since(start)

	state := Connectivity{
		Online:    err == nil,
		Checked:   true,
		CheckedAt: time.Now().UTC(),
		LatencyMs: float64(elapsed.Microseconds()) / 1000.0,
	}
	if err != nil {
		state.Kind = model.KindOf(err)
		state.Error = err.Error()
	}

	s.connMu.Lock()
	changed := s.conn.Online != state.Online || !s.conn.Checked
	s.conn = state
	s.connMu.Unlock()

	if changed {
		if err != nil {
			logger.Warn("Exchange unreachable", "kind", state.Kind, "error", err)
		} else {
			logger.Info("Exchange reachable", "latency_ms", state.LatencyMs)
		}
	}
	s.hub.Broadcast(EventConnectivity, state)
	return state, err
}

func (s *Server) connectivity() Connectivity {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conn
}

func (s *Server) forwardTicker(ctx context.Context) {
	updates := s.ticker.Updates()
	for {
		select {
		case <-ctx.Done():
			s.ticker.Stop()
			return
		case t, ok := <-updates:
			if !ok {
				return
			}
			s.hub.Broadcast(EventTicker, t)
		}
	}
}

func (s *Server) watch(raw string) {
	symbol, err := validator.Symbol(raw)
	if err != nil {
		logger.Debug("ignoring watch for invalid symbol", "symbol", raw)
		return
	}
	s.symbolMu.Lock()
	s.symbol = symbol
	s.symbolMu.Unlock()
	s.ticker.Watch(symbol)
}

// lastTicker is the latest quote for the watched symbol, if any arrived yet.
func (s *Server) lastTicker() (model.Ticker, bool) {
	if s.ticker == nil {
		return model.Ticker{}, false
	}
	s.symbolMu.Lock()
	symbol := s.symbol
	s.symbolMu.Unlock()
	if symbol == "" {
		return model.Ticker{}, false
	}
	return s.ticker.Last(symbol)
}

// checkOrigin accepts same-host pages and configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// ==============================
// REST Handlers
// ==============================

// orderRequest is the form payload. All fields stay strings until validated.
type orderRequest struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

type orderView struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Quantity string `json:"quantity"`
	Price    string `json:"price,omitempty"`
}

type previewResponse struct {
	Order          orderView `json:"order"`
	PriceDiscarded bool      `json:"priceDiscarded"`
}

type submitResponse struct {
	Order *model.OrderResponse `json:"order"`
	Live  bool                 `json:"live"`
}

type errorResponse struct {
	Kind    model.ErrorKind `json:"kind"`
	Message string          `json:"message"`
	Field   string          `json:"field,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "page missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	state, err := s.checkConnectivity(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	params, err := decodeOrder(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, previewResponse{
		Order:          viewOf(params),
		PriceDiscarded: params.PriceDiscarded,
	})
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	if !s.submitMu.TryLock() {
		respondJSON(w, http.StatusConflict, errorResponse{
			Kind:    KindBusy,
			Message: "another order is still being submitted",
		})
		return
	}
	defer s.submitMu.Unlock()

	params, err := decodeOrder(w, r)
	if err != nil {
		respondError(w, err)
		return
	}

	// a closed tab must not abandon an order already on the wire
	ctx := context.WithoutCancel(r.Context())
	resp, err := s.service.Submit(ctx, params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, submitResponse{Order: resp, Live: resp.IsLive()})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondJSON(w, http.StatusBadRequest, errorResponse{Kind: model.KindValidation, Message: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLogLimit)
	}

	entries := []repository.Entry{}
	if s.journal != nil {
		recent, err := s.journal.Recent(limit)
		if err != nil {
			logger.Error("Failed to read order journal", "error", err)
			respondJSON(w, http.StatusInternalServerError, errorResponse{Kind: model.KindUnknown, Message: "order journal unreadable"})
			return
		}
		if recent != nil {
			entries = recent
		}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// ==============================
// Helper Functions
// ==============================

func decodeOrder(w http.ResponseWriter, r *http.Request) (model.OrderParams, error) {
	var req orderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return model.OrderParams{}, &validator.ValidationError{Field: "request", Msg: "body must be a JSON order"}
	}
	return validator.ValidateOrder(validator.OrderInput{
		Symbol:   req.Symbol,
		Side:     req.Side,
		Type:     req.Type,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
}

func viewOf(p model.OrderParams) orderView {
	v := orderView{
		Symbol:   p.Symbol,
		Side:     string(p.Side),
		Type:     string(p.Type),
		Quantity: p.Quantity.String(),
	}
	if p.Price != nil {
		v.Price = p.Price.String()
	}
	return v
}

func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusUnprocessableEntity
	case model.KindExchange, model.KindTransport, model.KindConnectivity, model.KindAuth:
		return http.StatusBadGateway
	case KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	body := errorResponse{Kind: kind, Message: err.Error()}

	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		body.Field = string(vErr.Field)
	}
	respondJSON(w, statusFor(kind), body)
}

// timedExchange tracks order latency.
type timedExchange struct {
	Exchange
	metrics *metrics.Tracker
}

func (t *timedExchange) PlaceOrder(ctx context.Context, params api.Params) (*model.OrderResponse, error) {
	var resp *model.OrderResponse
	err := t.metrics.Time("order", func() error {
		var err error
		resp, err = t.Exchange.PlaceOrder(ctx, params)
		return err
	})
	return resp, err
}

// pageRecorder writes each attempt to the journal and pushes it to open pages.
type pageRecorder struct {
	journal *repository.Journal
	hub     *Hub
}

func (p *pageRecorder) Append(e repository.Entry) error {
	p.hub.Broadcast(EventLog, e)
	if p.journal == nil {
		return nil
	}
	return p.journal.Append(e)
}
