// Package hostapi is the host-facing bridge: a read-only REST snapshot API
// plus a WebSocket event stream, exposing the node's observable state to a
// dashboard or orchestrator running out of process. It never mutates node
// state — it only reads Node's already-public accessors.
package hostapi

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/social-production/network/internal/block"
	"github.com/social-production/network/internal/node"
)

// Server exposes a running Node over HTTP and WebSocket.
type Server struct {
	node    *node.Node
	metrics *metrics
	hub     *eventHub
}

// New constructs a Server bridging n. Call ListenAndServe to run it, and
// Watch(n.Events()) on its own goroutine to keep metrics and the event
// WebSocket current.
func New(n *node.Node) *Server {
	return &Server{node: n, metrics: newMetrics(), hub: newEventHub()}
}

// Router builds the mux router this server answers on. The snapshot
// endpoints and the event WebSocket upgrade share one per-IP rate limiter
// (20 requests/s, burst 30); /metrics is not rate-limited.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(commonMiddleware)

	readLimiter := newIPRateLimiter(20, 30)
	readMW := rateLimitMiddleware(readLimiter)

	router.Handle("/chain/tip", readMW(http.HandlerFunc(s.getTip))).Methods(http.MethodGet)
	router.Handle("/chain/blocks", readMW(http.HandlerFunc(s.getBlocks))).Methods(http.MethodGet)
	router.Handle("/chain/blocks/{height}", readMW(http.HandlerFunc(s.getBlock))).Methods(http.MethodGet)
	router.Handle("/peers", readMW(http.HandlerFunc(s.getPeers))).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)
	router.Handle("/events", readMW(http.HandlerFunc(s.streamEvents))).Methods(http.MethodGet)

	return corsMiddleware(router)
}

// ListenAndServe starts the HTTP server on addr, blocking until it exits.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Handler:      s.Router(),
		Addr:         addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return srv.ListenAndServe()
}

func commonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Origin, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

type tipResponse struct {
	Height int    `json:"height"`
	Hash   string `json:"hash"`
}

type blockResponse struct {
	Height        uint64   `json:"height"`
	PrevHash      string   `json:"prev_hash"`
	MerkleRoot    string   `json:"merkle_root"`
	Timestamp     int64    `json:"timestamp"`
	Verifications []string `json:"verifications"`
	Finalised     bool     `json:"finalised"`
	TxCount       int      `json:"tx_count"`
}

func toBlockResponse(b *block.Block) blockResponse {
	return blockResponse{
		Height:        b.Height,
		PrevHash:      hex.EncodeToString(b.PrevHash[:]),
		MerkleRoot:    hex.EncodeToString(b.MerkleRoot[:]),
		Timestamp:     b.Timestamp,
		Verifications: b.Verifications,
		Finalised:     b.IsFinalised(),
		TxCount:       len(b.Transactions),
	}
}

type peersResponse struct {
	TotalPeers int      `json:"total_peers"`
	Peers      []string `json:"peers"`
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) getTip(w http.ResponseWriter, r *http.Request) {
	tip := s.node.Chain().Tip()
	hash := tip.Hash()
	writeJSON(w, tipResponse{Height: int(tip.Height), Hash: hex.EncodeToString(hash[:])})
}

func (s *Server) getBlocks(w http.ResponseWriter, r *http.Request) {
	blocks := s.node.Chain().BlocksFrom(0)
	resp := make([]blockResponse, 0, len(blocks))
	for _, b := range blocks {
		resp = append(resp, toBlockResponse(b))
	}
	writeJSON(w, resp)
}

func (s *Server) getBlock(w http.ResponseWriter, r *http.Request) {
	heightStr := mux.Vars(r)["height"]
	height, err := strconv.ParseUint(heightStr, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, errorResponse{Error: "invalid height"})
		return
	}

	b, err := s.node.Chain().Get(height)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, errorResponse{Error: fmt.Sprintf("block not found: %s", err)})
		return
	}

	writeJSON(w, toBlockResponse(b))
}

func (s *Server) getPeers(w http.ResponseWriter, r *http.Request) {
	peers := s.node.ConnectedPeers()
	writeJSON(w, peersResponse{TotalPeers: len(peers), Peers: peers})
}
