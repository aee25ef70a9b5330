package model

import (
	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// OrderParams is a validated order ready for the builder.
// Price is non-nil only for LIMIT orders.
type OrderParams struct {
	Symbol   string
	Side     Side
	Type     OrderType
	Quantity decimal.Decimal
	Price    *decimal.Decimal

	// PriceDiscarded is set when a price came in with a MARKET order and was dropped.
	PriceDiscarded bool
}

// OrderResponse represents the response from POST /fapi/v1/order
type OrderResponse struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"timeInForce"`
	Price         string `json:"price"`
	AvgPrice      string `json:"avgPrice"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	CumQuote      string `json:"cumQuote"`
	UpdateTime    int64  `json:"updateTime"`
}

// IsLive reports whether the exchange accepted the order onto the book or filled it.
func (r *OrderResponse) IsLive() bool {
	switch r.Status {
	case "NEW", "PARTIALLY_FILLED", "FILLED":
		return true
	}
	return false
}
