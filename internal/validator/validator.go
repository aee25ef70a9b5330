// Package validator turns raw front-end input into model.OrderParams.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"futures-testnet-bot/internal/logger"
	"futures-testnet-bot/internal/model"
)

type Field string

const (
	FieldSymbol   Field = "symbol"
	FieldSide     Field = "side"
	FieldType     Field = "type"
	FieldQuantity Field = "quantity"
	FieldPrice    Field = "price"
)

type Reason string

const (
	InvalidSymbol   Reason = "InvalidSymbol"
	InvalidSide     Reason = "InvalidSide"
	InvalidType     Reason = "InvalidType"
	InvalidQuantity Reason = "InvalidQuantity"
	InvalidPrice    Reason = "InvalidPrice"
	MissingPrice    Reason = "MissingPrice"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// decimalPattern is the plain form the exchange accepts: no sign, no exponent,
// at most 20 integer and 18 fractional digits.
var decimalPattern = regexp.MustCompile(`^\d{1,20}(\.\d{1,18})?$`)

// ValidationError names the offending field and why it was rejected.
type ValidationError struct {
	Field  Field
	Reason Reason
	Value  string
	Msg    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Kind() model.ErrorKind { return model.KindValidation }

// OrderInput is the raw form/flag input. An empty Price means absent.
type OrderInput struct {
	Symbol   string
	Side     string
	Type     string
	Quantity string
	Price    string
}

// ValidateOrder checks every field in order and returns the first failure.
func ValidateOrder(in OrderInput) (model.OrderParams, error) {
	symbol, err := Symbol(in.Symbol)
	if err != nil {
		return model.OrderParams{}, err
	}
	side, err := Side(in.Side)
	if err != nil {
		return model.OrderParams{}, err
	}
	orderType, err := Type(in.Type)
	if err != nil {
		return model.OrderParams{}, err
	}
	qty, err := Quantity(in.Quantity)
	if err != nil {
		return model.OrderParams{}, err
	}
	price, err := Price(in.Price, orderType)
	if err != nil {
		return model.OrderParams{}, err
	}

	params := model.OrderParams{
		Symbol:   symbol,
		Side:     side,
		Type:     orderType,
		Quantity: qty,
		Price:    price,
	}

	if orderType == model.OrderTypeMarket && strings.TrimSpace(in.Price) != "" {
		params.PriceDiscarded = true
		logger.Warn("Price ignored for MARKET order", "symbol", symbol, "price", strings.TrimSpace(in.Price))
	}

	return params, nil
}

// Symbol returns the uppercased symbol.
func Symbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !symbolPattern.MatchString(s) {
		return "", &ValidationError{
			Field:  FieldSymbol,
			Reason: InvalidSymbol,
			Value:  raw,
			Msg:    fmt.Sprintf("invalid symbol %q, must be 2-20 uppercase letters or digits (e.g. BTCUSDT)", s),
		}
	}
	return s, nil
}

func Side(raw string) (model.Side, error) {
	switch s := model.Side(strings.ToUpper(strings.TrimSpace(raw))); s {
	case model.SideBuy, model.SideSell:
		return s, nil
	}
	return "", &ValidationError{
		Field:  FieldSide,
		Reason: InvalidSide,
		Value:  raw,
		Msg:    fmt.Sprintf("invalid side %q, must be BUY or SELL", raw),
	}
}

func Type(raw string) (model.OrderType, error) {
	switch t := model.OrderType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case model.OrderTypeMarket, model.OrderTypeLimit:
		return t, nil
	}
	return "", &ValidationError{
		Field:  FieldType,
		Reason: InvalidType,
		Value:  raw,
		Msg:    fmt.Sprintf("invalid order type %q, must be MARKET or LIMIT", raw),
	}
}

func Quantity(raw string) (decimal.Decimal, error) {
	q, ok := positiveDecimal(raw)
	if !ok {
		return decimal.Decimal{}, &ValidationError{
			Field:  FieldQuantity,
			Reason: InvalidQuantity,
			Value:  raw,
			Msg:    fmt.Sprintf("invalid quantity %q, must be a positive number", raw),
		}
	}
	return q, nil
}

// Price returns nil for MARKET orders whatever raw holds.
func Price(raw string, orderType model.OrderType) (*decimal.Decimal, error) {
	if orderType != model.OrderTypeLimit {
		return nil, nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &ValidationError{
			Field:  FieldPrice,
			Reason: MissingPrice,
			Msg:    "price is required for LIMIT orders",
		}
	}
	p, ok := positiveDecimal(raw)
	if !ok {
		return nil, &ValidationError{
			Field:  FieldPrice,
			Reason: InvalidPrice,
			Value:  raw,
			Msg:    fmt.Sprintf("invalid price %q, must be a positive number", raw),
		}
	}
	return &p, nil
}

func positiveDecimal(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if !decimalPattern.MatchString(raw) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}
