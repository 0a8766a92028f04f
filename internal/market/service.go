package market

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/GoPolymarket/polyexec/internal/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	WSURL           = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	ReconnBaseDelay = 1 * time.Second
	ReconnMaxDelay  = 30 * time.Second
	PingPeriod      = 15 * time.Second
)

// Service keeps a live order-book cache for subscribed tokens so repeated
// book reads skip the HTTP round trip. Losing the stream is tolerable;
// readers fall back to HTTP when a book is stale.
type Service struct {
	conn        *websocket.Conn
	mu          sync.RWMutex
	books       map[string]*Orderbook
	subs        []string
	ctx         context.Context
	cancel      context.CancelFunc
	isConnected bool
}

func NewService() *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		books:  make(map[string]*Orderbook),
		subs:   make([]string, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the connection loop in a background goroutine
func (s *Service) Start() {
	go s.runLoop()
}

func (s *Service) Stop() {
	s.cancel()
	if s.conn != nil {
		s.conn.Close()
	}
}

// Subscribe adds tokenIDs to the subscription list and updates the
// connection if active
func (s *Service) Subscribe(tokenIDs []string) {
	s.mu.Lock()
	added := make([]string, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		if _, ok := s.books[id]; ok {
			continue
		}
		s.subs = append(s.subs, id)
		s.books[id] = NewOrderbook(id)
		added = append(added, id)
	}
	connected := s.isConnected
	s.mu.Unlock()

	if len(added) > 0 && connected {
		if err := s.writeSubscribe(added); err != nil {
			logger.Error("Failed to send subscription", "error", err)
		}
	}
}

func (s *Service) GetBook(tokenID string) *Orderbook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.books[tokenID]
}

func (s *Service) runLoop() {
	delay := ReconnBaseDelay

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if err := s.connect(); err != nil {
			logger.Error("Market stream connection failed", "error", err, "retry_in", delay)
			time.Sleep(delay)
			delay *= 2
			if delay > ReconnMaxDelay {
				delay = ReconnMaxDelay
			}
			continue
		}

		delay = ReconnBaseDelay
		s.mu.Lock()
		s.isConnected = true
		allSubs := append([]string(nil), s.subs...)
		s.mu.Unlock()

		if len(allSubs) > 0 {
			if err := s.writeSubscribe(allSubs); err != nil {
				logger.Error("Failed to resubscribe", "error", err)
				s.conn.Close()
				continue
			}
		}

		s.readLoop()

		s.mu.Lock()
		s.isConnected = false
		s.mu.Unlock()
	}
}

func (s *Service) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(WSURL, nil)
	if err != nil {
		return err
	}
	s.conn = conn

	// No data and no pong within the window means the peer is gone.
	readTimeout := PingPeriod + 10*time.Second
	s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go s.pingLoop()
	return nil
}

func (s *Service) pingLoop() {
	ticker := time.NewTicker(PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.isConnected || s.conn == nil {
				s.mu.Unlock()
				return
			}
			err := s.conn.WriteMessage(websocket.PingMessage, []byte{})
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

type wsMessage struct {
	EventType string             `json:"event_type"` // "book" or "price_change"
	AssetID   string             `json:"asset_id"`
	Market    string             `json:"market"`
	Bids      []wsPriceLevel     `json:"bids"`
	Asks      []wsPriceLevel     `json:"asks"`
	Changes   []wsPriceChangeRow `json:"changes"`
}

type wsPriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type wsPriceChangeRow struct {
	Price string `json:"price"`
	Size  string `json:"size"`
	Side  string `json:"side"`
}

func (s *Service) readLoop() {
	defer s.conn.Close()

	readTimeout := PingPeriod + 10*time.Second

	for {
		s.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			logger.Error("Market stream read error", "error", err)
			return
		}

		// The venue sends arrays of messages; tolerate single objects too.
		var msgs []wsMessage
		if err := json.Unmarshal(message, &msgs); err != nil {
			var single wsMessage
			if err2 := json.Unmarshal(message, &single); err2 == nil {
				msgs = []wsMessage{single}
			} else {
				continue
			}
		}

		for _, m := range msgs {
			s.process(m)
		}
	}
}

func (s *Service) process(msg wsMessage) {
	tokenID := msg.AssetID
	if tokenID == "" {
		tokenID = msg.Market
	}
	s.mu.RLock()
	book := s.books[tokenID]
	s.mu.RUnlock()
	if book == nil {
		return
	}

	switch msg.EventType {
	case "book":
		bids := make([]Level, 0, len(msg.Bids))
		asks := make([]Level, 0, len(msg.Asks))
		for _, b := range msg.Bids {
			if l, ok := parseLevel(b.Price, b.Size); ok {
				bids = append(bids, l)
			}
		}
		for _, a := range msg.Asks {
			if l, ok := parseLevel(a.Price, a.Size); ok {
				asks = append(asks, l)
			}
		}
		book.Snapshot(bids, asks)
	case "price_change":
		for _, ch := range msg.Changes {
			_ = book.Update(ch.Side, ch.Price, ch.Size)
		}
	}
}

func parseLevel(priceStr, sizeStr string) (Level, bool) {
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return Level{}, false
	}
	size, err := decimal.NewFromString(sizeStr)
	if err != nil || size.IsZero() {
		return Level{}, false
	}
	return Level{Price: price, Size: size}, true
}

func (s *Service) writeSubscribe(tokenIDs []string) error {
	msg := map[string]any{
		"type":         "subscribe",
		"assets_ids":   tokenIDs,
		"channel_name": "book",
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.WriteJSON(msg)
}
