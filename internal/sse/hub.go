package sse

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/events"
	"github.com/GTDGit/reseller_portal/internal/metrics"
)

// MaxStreamsPerPartner bounds concurrent order streams of one partner
// (one per open portal tab).
const MaxStreamsPerPartner = 5

const bufferSize = 64

// ErrTooManyStreams is returned by Register when a partner has
// MaxStreamsPerPartner streams open already.
var ErrTooManyStreams = errors.New("too many open order streams")

// Message is one encoded event waiting to be written to a stream.
type Message struct {
	Event events.Type
	Data  []byte
}

// Client is an open order stream of one partner.
type Client struct {
	ID        string
	PartnerID int
	Events    chan Message
}

// Hub tracks open streams per partner and routes order events to them.
type Hub struct {
	mu        sync.RWMutex
	byPartner map[int]map[string]*Client
	total     int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{byPartner: make(map[int]map[string]*Client)}
}

// Register opens a stream for partnerID.
func (h *Hub) Register(clientID string, partnerID int) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	streams := h.byPartner[partnerID]
	if len(streams) >= MaxStreamsPerPartner {
		return nil, ErrTooManyStreams
	}
	if streams == nil {
		streams = make(map[string]*Client)
		h.byPartner[partnerID] = streams
	}

	c := &Client{ID: clientID, PartnerID: partnerID, Events: make(chan Message, bufferSize)}
	streams[clientID] = c
	h.total++
	metrics.SSEClients.Set(float64(h.total))
	log.Info().Str("client_id", clientID).Int("partner_id", partnerID).Int("partner_streams", len(streams)).Msg("Order stream opened")
	return c, nil
}

// Unregister closes the stream. Unknown ids are ignored.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	streams := h.byPartner[c.PartnerID]
	if _, ok := streams[c.ID]; !ok {
		return
	}
	close(c.Events)
	delete(streams, c.ID)
	if len(streams) == 0 {
		delete(h.byPartner, c.PartnerID)
	}
	h.total--
	metrics.SSEClients.Set(float64(h.total))
	log.Info().Str("client_id", c.ID).Int("partner_id", c.PartnerID).Msg("Order stream closed")
}

// Publish delivers ev to the streams of ev.PartnerID. A stream whose buffer
// is full misses the event.
func (h *Hub) Publish(ev *events.OrderEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	streams := h.byPartner[ev.PartnerID]
	if len(streams) == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("order_id", ev.OrderID).Msg("Failed to encode order event")
		return
	}
	msg := Message{Event: ev.Event, Data: data}
	for _, c := range streams {
		select {
		case c.Events <- msg:
		default:
			log.Warn().Str("client_id", c.ID).Str("order_id", ev.OrderID).Msg("Order stream lagging, event dropped")
		}
	}
}

// Streams returns the number of open streams of partnerID.
func (h *Hub) Streams(partnerID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byPartner[partnerID])
}

// ClientCount returns the number of open streams across partners.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}
