package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/dexlens/pkg/exchange"
)

// Server exposes the derived views over REST and WebSocket. It holds no view
// state: every request re-derives from the event log, so responses always
// reflect the latest appended events.
type Server struct {
	log      *exchange.EventLog
	registry *exchange.Registry
	router   *mux.Router
	hub      *Hub
	logger   *zap.SugaredLogger
	origins  []string
}

func NewServer(log *exchange.EventLog, registry *exchange.Registry, logger *zap.SugaredLogger, origins []string) *Server {
	s := &Server{
		log:      log,
		registry: registry,
		router:   mux.NewRouter(),
		hub:      NewHub(logger),
		logger:   logger,
		origins:  origins,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Market-scoped views. Pairs appear in paths dash-separated: DAPP-mETH.
	api.HandleFunc("/markets", s.handleGetMarkets).Methods("GET")
	api.HandleFunc("/markets/{pair}/orderbook", s.handleGetOrderBook).Methods("GET")
	api.HandleFunc("/markets/{pair}/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/markets/{pair}/candles", s.handleGetCandles).Methods("GET")

	// Account-scoped views; ?pair= selects the market.
	api.HandleFunc("/accounts/{address}/orders", s.handleGetAccountOrders).Methods("GET")
	api.HandleFunc("/accounts/{address}/trades", s.handleGetAccountTrades).Methods("GET")
	api.HandleFunc("/accounts/{address}/activity", s.handleGetAccountActivity).Methods("GET")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	s.logger.Infow("api_server_starting", "addr", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// BroadcastViews recomputes every market's views and pushes them to channel
// subscribers. The feeder calls this after each live event.
func (s *Server) BroadcastViews() {
	open := s.openOrders()
	filled := s.log.Snapshot(exchange.KindFilled)

	for _, m := range s.registry.List() {
		slug := pairSlug(m)
		s.hub.BroadcastToChannel("orderbook:"+slug, s.bookResponse(m, open))
		s.hub.BroadcastToChannel("trades:"+slug, s.tradesResponse(m, filled))
		s.hub.BroadcastToChannel("candles:"+slug, s.candlesResponse(m, filled))
	}
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	markets := s.registry.List()
	response := make([]MarketInfo, len(markets))
	for i, m := range markets {
		response[i] = newMarketInfo(m)
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetOrderBook(w http.ResponseWriter, r *http.Request) {
	m, ok := s.marketFromPath(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, s.bookResponse(m, s.openOrders()))
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	m, ok := s.marketFromPath(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, s.tradesResponse(m, s.log.Snapshot(exchange.KindFilled)))
}

func (s *Server) handleGetCandles(w http.ResponseWriter, r *http.Request) {
	m, ok := s.marketFromPath(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, s.candlesResponse(m, s.log.Snapshot(exchange.KindFilled)))
}

func (s *Server) handleGetAccountOrders(w http.ResponseWriter, r *http.Request) {
	account, ok := s.accountFromPath(w, r)
	if !ok {
		return
	}
	m, ok := s.marketFromQuery(w, r)
	if !ok {
		return
	}
	orders := exchange.MyOpenOrders(account, m, s.openOrders())
	s.respondJSON(w, http.StatusOK, newOrderRows(orders))
}

func (s *Server) handleGetAccountTrades(w http.ResponseWriter, r *http.Request) {
	account, ok := s.accountFromPath(w, r)
	if !ok {
		return
	}
	m, ok := s.marketFromQuery(w, r)
	if !ok {
		return
	}
	trades := exchange.MyTrades(account, m, s.log.Snapshot(exchange.KindFilled))
	s.respondJSON(w, http.StatusOK, newOrderRows(trades))
}

func (s *Server) handleGetAccountActivity(w http.ResponseWriter, r *http.Request) {
	account, ok := s.accountFromPath(w, r)
	if !ok {
		return
	}
	feed := exchange.MyActivity(account, s.log.Activity())
	s.respondJSON(w, http.StatusOK, newActivityRows(feed))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"placed":  s.log.Len(exchange.KindPlaced),
		"filled":  s.log.Len(exchange.KindFilled),
		"markets": s.registry.Count(),
	})
}

// ==============================
// Derivation helpers
// ==============================

func (s *Server) openOrders() []exchange.OrderEvent {
	return exchange.OpenOrders(
		s.log.Snapshot(exchange.KindPlaced),
		s.log.Snapshot(exchange.KindCancelled),
		s.log.Snapshot(exchange.KindFilled),
	)
}

func (s *Server) bookResponse(m exchange.Market, open []exchange.OrderEvent) OrderBookResponse {
	view := exchange.Book(open, m)
	return OrderBookResponse{
		Pair:  m.Pair(),
		Buys:  newOrderRows(view.Buys),
		Sells: newOrderRows(view.Sells),
	}
}

func (s *Server) tradesResponse(m exchange.Market, filled []exchange.OrderEvent) TradesResponse {
	return TradesResponse{
		Pair:   m.Pair(),
		Trades: newOrderRows(exchange.TradeTape(filled, m)),
	}
}

func (s *Server) candlesResponse(m exchange.Market, filled []exchange.OrderEvent) CandlesResponse {
	view := exchange.PriceChart(filled, m)
	return CandlesResponse{
		Pair:            m.Pair(),
		Candles:         newCandleRows(view.Candles),
		LastPrice:       formatRate(view.LastPrice),
		LastPriceChange: view.LastPriceChange,
	}
}

// ==============================
// Request parsing
// ==============================

// pairSlug is the URL-safe market name: "DAPP/mETH" -> "DAPP-mETH".
func pairSlug(m exchange.Market) string {
	return m.BaseSymbol + "-" + m.QuoteSymbol
}

func (s *Server) lookupPair(slug string) (exchange.Market, bool) {
	return s.registry.Get(strings.Replace(slug, "-", "/", 1))
}

func (s *Server) marketFromPath(w http.ResponseWriter, r *http.Request) (exchange.Market, bool) {
	slug := mux.Vars(r)["pair"]
	m, ok := s.lookupPair(slug)
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown market "+slug)
		return exchange.Market{}, false
	}
	return m, true
}

func (s *Server) marketFromQuery(w http.ResponseWriter, r *http.Request) (exchange.Market, bool) {
	slug := r.URL.Query().Get("pair")
	if slug == "" {
		s.respondError(w, http.StatusBadRequest, "missing pair query parameter")
		return exchange.Market{}, false
	}
	m, ok := s.lookupPair(slug)
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown market "+slug)
		return exchange.Market{}, false
	}
	return m, true
}

func (s *Server) accountFromPath(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := mux.Vars(r)["address"]
	if !common.IsHexAddress(raw) {
		s.respondError(w, http.StatusBadRequest, "invalid address "+raw)
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warnw("response_encode_failed", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
