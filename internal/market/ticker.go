package market

import (
	"sync"
	"time"

	"github.com/adshao/go-binance/v2/futures"

	"futures-testnet-bot/internal/logger"
	"futures-testnet-bot/internal/model"
)

const reconnectDelay = 5 * time.Second

type serveFunc func(symbol string, handler futures.WsBookTickerHandler, errHandler futures.ErrHandler) (doneC, stopC chan struct{}, err error)

// TickerService streams best bid/ask for one symbol at a time from the futures testnet.
type TickerService struct {
	mu      sync.Mutex
	symbol  string
	stopCh  chan struct{}
	stopped bool
	last    map[string]model.Ticker
	updates chan model.Ticker

	serve          serveFunc
	reconnectDelay time.Duration
}

func NewTickerService(testnet bool) *TickerService {
	futures.UseTestnet = testnet
	return &TickerService{
		last:           make(map[string]model.Ticker),
		updates:        make(chan model.Ticker, 100),
		serve:          futures.WsBookTickerServe,
		reconnectDelay: reconnectDelay,
	}
}

// Watch switches the stream to symbol. Watching the current symbol is a no-op,
// and so is any Watch after Stop.
func (s *TickerService) Watch(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		logger.Debug("ticker stopped, ignoring watch", "symbol", symbol)
		return
	}
	if symbol == s.symbol && s.stopCh != nil {
		return
	}
	if s.stopCh != nil {
		close(s.stopCh)
	}
	s.symbol = symbol
	s.stopCh = make(chan struct{})
	go s.monitorSymbol(symbol, s.stopCh)
}

func (s *TickerService) monitorSymbol(symbol string, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		wsHandler := func(event *futures.WsBookTickerEvent) {
			s.publish(toTicker(event))
		}
		errHandler := func(err error) {
			logger.Warn("Ticker stream error", "symbol", symbol, "error", err)
		}

		logger.Info("Connecting to Binance Futures WS (BookTicker)", "symbol", symbol)
		doneC, wsStopC, err := s.serve(symbol, wsHandler, errHandler)
		if err != nil {
			logger.Error("Failed to connect ticker stream, retrying", "symbol", symbol, "error", err, "delay", s.reconnectDelay)
			if !sleepOrStop(s.reconnectDelay, stopCh) {
				return
			}
			continue
		}

		select {
		case <-stopCh:
			close(wsStopC)
			return
		case <-doneC:
			logger.Warn("Ticker stream closed, reconnecting", "symbol", symbol, "delay", s.reconnectDelay)
			if !sleepOrStop(s.reconnectDelay, stopCh) {
				return
			}
		}
	}
}

func (s *TickerService) publish(t model.Ticker) {
	s.mu.Lock()
	s.last[t.Symbol] = t
	s.mu.Unlock()

	select {
	case s.updates <- t:
	default:
		// drop when nobody is reading; Last still has it
	}
}

func (s *TickerService) Last(symbol string) (model.Ticker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.last[symbol]
	return t, ok
}

func (s *TickerService) Updates() <-chan model.Ticker {
	return s.updates
}

// Stop closes the current stream for good.
func (s *TickerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
		s.symbol = ""
	}
}

func toTicker(event *futures.WsBookTickerEvent) model.Ticker {
	return model.Ticker{
		Symbol: event.Symbol,
		Bid:    event.BestBidPrice,
		Ask:    event.BestAskPrice,
		Time:   time.Now(),
	}
}

func sleepOrStop(d time.Duration, stopCh chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stopCh:
		return false
	case <-timer.C:
		return true
	}
}
