package order

import (
	"context"
	"time"

	"futures-testnet-bot/internal/api"
	"futures-testnet-bot/internal/logger"
	"futures-testnet-bot/internal/model"
	"futures-testnet-bot/internal/repository"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, params api.Params) (*model.OrderResponse, error)
}

type Recorder interface {
	Append(e repository.Entry) error
}

// Service runs one validated order through builder and client.
type Service struct {
	Client  OrderPlacer
	Builder *Builder
	Journal Recorder // optional
	Clock   func() time.Time
}

func NewService(client OrderPlacer, builder *Builder, journal Recorder) *Service {
	return &Service{
		Client:  client,
		Builder: builder,
		Journal: journal,
		Clock:   time.Now,
	}
}

// Submit makes exactly one attempt. Errors from the client are returned unchanged.
func (s *Service) Submit(ctx context.Context, p model.OrderParams) (*model.OrderResponse, error) {
	now := s.Clock()
	params := s.Builder.Build(p, now)

	price := ""
	if p.Price != nil {
		price = p.Price.String()
	}
	clientID, _ := params.Get("newClientOrderId")

	logger.Info("Placing order",
		"side", p.Side,
		"type", p.Type,
		"symbol", p.Symbol,
		"qty", p.Quantity.String(),
		"price", price,
		"client_order_id", clientID,
	)

	resp, err := s.Client.PlaceOrder(ctx, params)

	entry := repository.Entry{
		Time:          now.UTC(),
		ClientOrderID: clientID,
		Symbol:        p.Symbol,
		Side:          string(p.Side),
		Type:          string(p.Type),
		Quantity:      p.Quantity.String(),
		Price:         price,
	}

	if err != nil {
		logger.Error("Order failed", "kind", model.KindOf(err), "error", err, "client_order_id", clientID)
		entry.ErrorKind = string(model.KindOf(err))
		entry.Error = err.Error()
		s.record(entry)
		return nil, err
	}

	logger.Info("Order response",
		"orderId", resp.OrderID,
		"status", resp.Status,
		"executedQty", resp.ExecutedQty,
		"avgPrice", resp.AvgPrice,
	)

	entry.OK = true
	entry.OrderID = resp.OrderID
	entry.Status = resp.Status
	entry.ExecutedQty = resp.ExecutedQty
	entry.AvgPrice = resp.AvgPrice
	s.record(entry)

	return resp, nil
}

func (s *Service) record(e repository.Entry) {
	if s.Journal == nil {
		return
	}
	if err := s.Journal.Append(e); err != nil {
		logger.Error("Failed to append order journal", "error", err)
	}
}
