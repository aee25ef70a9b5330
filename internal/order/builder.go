package order

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"futures-testnet-bot/internal/api"
	"futures-testnet-bot/internal/model"
)

const (
	DefaultRecvWindow  = 5 * time.Second
	DefaultTimeInForce = "GTC"
	DefaultRespType    = "RESULT"
)

// Builder assembles the parameter list for POST /fapi/v1/order.
type Builder struct {
	RecvWindow  time.Duration
	TimeInForce string
	RespType    string
	// NewClientID, when set, fills newClientOrderId.
	NewClientID func() string
}

func NewBuilder(recvWindow time.Duration) *Builder {
	if recvWindow <= 0 {
		recvWindow = DefaultRecvWindow
	}
	return &Builder{
		RecvWindow:  recvWindow,
		TimeInForce: DefaultTimeInForce,
		RespType:    DefaultRespType,
		NewClientID: NewClientOrderID,
	}
}

// NewClientOrderID returns a random id that fits Binance's 36 char limit.
func NewClientOrderID() string {
	return uuid.NewString()
}

// Build returns params in the order they are signed and sent:
// symbol, side, type, quantity, [price, timeInForce], newOrderRespType,
// [newClientOrderId], recvWindow, timestamp.
func (b *Builder) Build(p model.OrderParams, now time.Time) api.Params {
	params := make(api.Params, 0, 10)
	params.Add("symbol", p.Symbol)
	params.Add("side", string(p.Side))
	params.Add("type", string(p.Type))
	params.Add("quantity", p.Quantity.String())

	if p.Type == model.OrderTypeLimit && p.Price != nil {
		tif := b.TimeInForce
		if tif == "" {
			tif = DefaultTimeInForce
		}
		params.Add("price", p.Price.String())
		params.Add("timeInForce", tif)
	}

	if b.RespType != "" {
		params.Add("newOrderRespType", b.RespType)
	}
	if b.NewClientID != nil {
		params.Add("newClientOrderId", b.NewClientID())
	}

	recvWindow := b.RecvWindow
	if recvWindow <= 0 {
		recvWindow = DefaultRecvWindow
	}
	params.Add("recvWindow", strconv.FormatInt(recvWindow.Milliseconds(), 10))
	params.Add("timestamp", strconv.FormatInt(now.UnixMilli(), 10))

	return params
}
