package validator

import (
	"errors"
	"testing"

	"futures-testnet-bot/internal/model"
)

func reasonOf(t *testing.T, err error) (Field, Reason) {
	t.Helper()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	return vErr.Field, vErr.Reason
}

func TestValidateOrder_MarketLowercaseSide(t *testing.T) {
	params, err := ValidateOrder(OrderInput{Symbol: "BTCUSDT", Side: "buy", Type: "MARKET", Quantity: "0.01"})
	if err != nil {
		t.Fatalf("ValidateOrder failed: %v", err)
	}
	if params.Side != model.SideBuy {
		t.Errorf("Side = %s, want BUY", params.Side)
	}
	if params.Type != model.OrderTypeMarket {
		t.Errorf("Type = %s, want MARKET", params.Type)
	}
	if params.Quantity.String() != "0.01" {
		t.Errorf("Quantity = %s, want 0.01", params.Quantity)
	}
	if params.Price != nil {
		t.Errorf("Price should be nil for MARKET, got %s", params.Price)
	}
}

func TestValidateOrder_Limit(t *testing.T) {
	params, err := ValidateOrder(OrderInput{Symbol: "ethusdt", Side: "SELL", Type: "limit", Quantity: "0.5", Price: "4000"})
	if err != nil {
		t.Fatalf("ValidateOrder failed: %v", err)
	}
	if params.Symbol != "ETHUSDT" {
		t.Errorf("Symbol = %s, want ETHUSDT", params.Symbol)
	}
	if params.Price == nil || params.Price.String() != "4000" {
		t.Errorf("Price = %v, want 4000", params.Price)
	}
}

func TestValidateOrder_LimitWithoutPrice(t *testing.T) {
	_, err := ValidateOrder(OrderInput{Symbol: "BTCUSDT", Side: "BUY", Type: "LIMIT", Quantity: "1"})
	field, reason := reasonOf(t, err)
	if field != FieldPrice || reason != MissingPrice {
		t.Errorf("got %s/%s, want price/MissingPrice", field, reason)
	}
	if model.KindOf(err) != model.KindValidation {
		t.Errorf("kind = %s", model.KindOf(err))
	}
}

func TestValidateOrder_MarketWithPriceIsDiscarded(t *testing.T) {
	params, err := ValidateOrder(OrderInput{Symbol: "BTCUSDT", Side: "BUY", Type: "MARKET", Quantity: "1", Price: "123"})
	if err != nil {
		t.Fatalf("MARKET with price should not fail: %v", err)
	}
	if params.Price != nil {
		t.Error("price should be discarded")
	}
	if !params.PriceDiscarded {
		t.Error("PriceDiscarded should be set")
	}
}

func TestValidateOrder_FieldFailures(t *testing.T) {
	valid := OrderInput{Symbol: "BTCUSDT", Side: "BUY", Type: "LIMIT", Quantity: "1", Price: "100"}

	cases := []struct {
		name   string
		mutate func(*OrderInput)
		field  Field
		reason Reason
	}{
		{"empty symbol", func(in *OrderInput) { in.Symbol = "" }, FieldSymbol, InvalidSymbol},
		{"symbol with dash", func(in *OrderInput) { in.Symbol = "BTC-USDT" }, FieldSymbol, InvalidSymbol},
		{"one char symbol", func(in *OrderInput) { in.Symbol = "B" }, FieldSymbol, InvalidSymbol},
		{"bad side", func(in *OrderInput) { in.Side = "HOLD" }, FieldSide, InvalidSide},
		{"bad type", func(in *OrderInput) { in.Type = "STOP" }, FieldType, InvalidType},
		{"zero quantity", func(in *OrderInput) { in.Quantity = "0" }, FieldQuantity, InvalidQuantity},
		{"negative quantity", func(in *OrderInput) { in.Quantity = "-1" }, FieldQuantity, InvalidQuantity},
		{"text quantity", func(in *OrderInput) { in.Quantity = "lots" }, FieldQuantity, InvalidQuantity},
		{"empty quantity", func(in *OrderInput) { in.Quantity = "" }, FieldQuantity, InvalidQuantity},
		{"zero price", func(in *OrderInput) { in.Price = "0" }, FieldPrice, InvalidPrice},
		{"negative price", func(in *OrderInput) { in.Price = "-10" }, FieldPrice, InvalidPrice},
		{"text price", func(in *OrderInput) { in.Price = "cheap" }, FieldPrice, InvalidPrice},
		{"blank price", func(in *OrderInput) { in.Price = "   " }, FieldPrice, MissingPrice},
		{"exponent quantity", func(in *OrderInput) { in.Quantity = "1e9" }, FieldQuantity, InvalidQuantity},
		{"negative exponent quantity", func(in *OrderInput) { in.Quantity = "1e-30" }, FieldQuantity, InvalidQuantity},
		{"huge exponent quantity", func(in *OrderInput) { in.Quantity = "1E20000000" }, FieldQuantity, InvalidQuantity},
		{"bare dot quantity", func(in *OrderInput) { in.Quantity = ".5" }, FieldQuantity, InvalidQuantity},
		{"plus sign quantity", func(in *OrderInput) { in.Quantity = "+1" }, FieldQuantity, InvalidQuantity},
		{"too many fraction digits", func(in *OrderInput) { in.Quantity = "0.0000000000000000001" }, FieldQuantity, InvalidQuantity},
		{"huge exponent price", func(in *OrderInput) { in.Price = "1e20000000" }, FieldPrice, InvalidPrice},
		{"exponent price", func(in *OrderInput) { in.Price = "4e3" }, FieldPrice, InvalidPrice},
		{"too many integer digits", func(in *OrderInput) { in.Price = "123456789012345678901" }, FieldPrice, InvalidPrice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := ValidateOrder(in)
			field, reason := reasonOf(t, err)
			if field != tc.field || reason != tc.reason {
				t.Errorf("got %s/%s, want %s/%s", field, reason, tc.field, tc.reason)
			}
		})
	}
}

func TestQuantity_SmallestPositive(t *testing.T) {
	for _, raw := range []string{"0.00000001", "0.000000000000000001"} {
		q, err := Quantity(raw)
		if err != nil {
			t.Errorf("Quantity(%q) failed: %v", raw, err)
			continue
		}
		if !q.IsPositive() {
			t.Errorf("Quantity(%q) = %s, want positive", raw, q)
		}
	}
}

func TestSideAndType_CaseInsensitive(t *testing.T) {
	for _, raw := range []string{"sell", "Sell", " SELL "} {
		if s, err := Side(raw); err != nil || s != model.SideSell {
			t.Errorf("Side(%q) = %s, %v", raw, s, err)
		}
	}
	for _, raw := range []string{"market", "Market", "MARKET"} {
		if ty, err := Type(raw); err != nil || ty != model.OrderTypeMarket {
			t.Errorf("Type(%q) = %s, %v", raw, ty, err)
		}
	}
}

func TestValidateOrder_PlainDecimalForms(t *testing.T) {
	for _, q := range []string{"1", "0.5", "12.3400", "0.000000000000000001", "99999999999999999999"} {
		if _, err := Quantity(q); err != nil {
			t.Errorf("Quantity(%q) rejected: %v", q, err)
		}
	}
}
