package hostapi

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/social-production/network/internal/node"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type eventHub struct {
	mu          sync.Mutex
	subscribers map[chan node.Event]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subscribers: make(map[chan node.Event]struct{})}
}

func (h *eventHub) subscribe() chan node.Event {
	ch := make(chan node.Event, 32)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *eventHub) unsubscribe(ch chan node.Event) {
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *eventHub) broadcast(ev node.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			// slow websocket client; drop rather than block the relay loop.
		}
	}
}

// Watch relays events from n's observable event channel into the metrics
// registry and the WebSocket hub, until events is closed. Run this as its
// own goroutine alongside Node.Run.
func (s *Server) Watch(events <-chan node.Event) {
	for ev := range events {
		switch ev.Kind {
		case node.EventBlockFinalised:
			s.metrics.finalisedBlocks.Inc()
		case node.EventTransactionReceived:
			s.metrics.transactionsSeen.Inc()
		}
		s.metrics.chainLength.Set(float64(s.node.Chain().Len()))
		s.metrics.connectedPeers.Set(float64(len(s.node.ConnectedPeers())))
		s.hub.broadcast(ev)
	}
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	for ev := range ch {
		if err := conn.WriteJSON(eventMessage(ev)); err != nil {
			return
		}
	}
}

type eventMessageBody struct {
	Kind          string   `json:"kind"`
	PeerID        string   `json:"peer_id,omitempty"`
	Addresses     []string `json:"addresses,omitempty"`
	TransactionID string   `json:"transaction_id,omitempty"`
	BlockHeight   uint64   `json:"block_height,omitempty"`
	ChainLength   int      `json:"chain_length,omitempty"`
}

func eventMessage(ev node.Event) eventMessageBody {
	return eventMessageBody{
		Kind:          ev.Kind.String(),
		PeerID:        ev.PeerID,
		Addresses:     ev.Addresses,
		TransactionID: ev.TransactionID,
		BlockHeight:   ev.BlockHeight,
		ChainLength:   ev.ChainLength,
	}
}
