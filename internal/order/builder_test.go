package order

import (
	"strings"
	"testing"
	"time"

	"futures-testnet-bot/internal/model"
	"futures-testnet-bot/internal/validator"
)

var fixedNow = time.UnixMilli(1700000000000)

func mustValidate(t *testing.T, in validator.OrderInput) model.OrderParams {
	t.Helper()
	p, err := validator.ValidateOrder(in)
	if err != nil {
		t.Fatalf("ValidateOrder(%+v) failed: %v", in, err)
	}
	return p
}

func TestBuild_Market(t *testing.T) {
	b := NewBuilder(5 * time.Second)
	b.NewClientID = nil

	p := mustValidate(t, validator.OrderInput{Symbol: "BTCUSDT", Side: "buy", Type: "MARKET", Quantity: "0.01"})
	params := b.Build(p, fixedNow)

	want := "symbol=BTCUSDT&side=BUY&type=MARKET&quantity=0.01&newOrderRespType=RESULT&recvWindow=5000&timestamp=1700000000000"
	if got := params.Encode(); got != want {
		t.Errorf("Build() =\n %s\nwant\n %s", got, want)
	}
	if _, ok := params.Get("price"); ok {
		t.Error("MARKET order must not carry price")
	}
	if _, ok := params.Get("timeInForce"); ok {
		t.Error("MARKET order must not carry timeInForce")
	}
}

func TestBuild_Limit(t *testing.T) {
	b := NewBuilder(5 * time.Second)
	b.NewClientID = nil

	p := mustValidate(t, validator.OrderInput{Symbol: "ETHUSDT", Side: "SELL", Type: "LIMIT", Quantity: "0.5", Price: "4000"})
	params := b.Build(p, fixedNow)

	want := "symbol=ETHUSDT&side=SELL&type=LIMIT&quantity=0.5&price=4000&timeInForce=GTC&newOrderRespType=RESULT&recvWindow=5000&timestamp=1700000000000"
	if got := params.Encode(); got != want {
		t.Errorf("Build() =\n %s\nwant\n %s", got, want)
	}
}

func TestBuild_MarketWithDiscardedPrice(t *testing.T) {
	b := NewBuilder(0)
	b.NewClientID = nil

	p := mustValidate(t, validator.OrderInput{Symbol: "BTCUSDT", Side: "BUY", Type: "MARKET", Quantity: "1", Price: "999"})
	params := b.Build(p, fixedNow)
	if _, ok := params.Get("price"); ok {
		t.Error("discarded price reached the builder output")
	}
}

func TestBuild_ClientOrderID(t *testing.T) {
	b := NewBuilder(time.Second)
	b.NewClientID = func() string { return "fixed-id" }

	p := mustValidate(t, validator.OrderInput{Symbol: "BTCUSDT", Side: "BUY", Type: "MARKET", Quantity: "1"})
	params := b.Build(p, fixedNow)

	if id, _ := params.Get("newClientOrderId"); id != "fixed-id" {
		t.Errorf("newClientOrderId = %s", id)
	}
	if rw, _ := params.Get("recvWindow"); rw != "1000" {
		t.Errorf("recvWindow = %s", rw)
	}
	keys := params.Keys()
	if keys[len(keys)-1] != "timestamp" {
		t.Errorf("timestamp must be last, got %v", keys)
	}
}

func TestNewClientOrderID_FitsExchangeLimit(t *testing.T) {
	id := NewClientOrderID()
	if len(id) == 0 || len(id) > 36 {
		t.Errorf("client order id length %d", len(id))
	}
	if NewClientOrderID() == id {
		t.Error("client order ids should be unique")
	}
}

func TestBuild_StableAcrossCalls(t *testing.T) {
	b := NewBuilder(5 * time.Second)
	b.NewClientID = nil
	p := mustValidate(t, validator.OrderInput{Symbol: "ETHUSDT", Side: "SELL", Type: "LIMIT", Quantity: "0.5", Price: "4000"})

	first := b.Build(p, fixedNow).Encode()
	for i := 0; i < 20; i++ {
		if got := b.Build(p, fixedNow).Encode(); got != first {
			t.Fatalf("iteration %d produced %s, want %s", i, got, first)
		}
	}
}

// Everything the builder emits must pass the validator's own field rules.
func TestBuild_OutputRevalidates(t *testing.T) {
	inputs := []validator.OrderInput{
		{Symbol: "BTCUSDT", Side: "buy", Type: "market", Quantity: "0.001"},
		{Symbol: "ethusdt", Side: "SELL", Type: "LIMIT", Quantity: "0.5", Price: "4000"},
		{Symbol: "1000SHIBUSDT", Side: "BUY", Type: "LIMIT", Quantity: "0.00000001", Price: "0.00001234"},
		{Symbol: "BNBUSDT", Side: "sell", Type: "MARKET", Quantity: "12.3400", Price: "1"},
	}

	b := NewBuilder(5 * time.Second)
	for _, in := range inputs {
		p := mustValidate(t, in)
		params := b.Build(p, fixedNow)

		get := func(k string) string { v, _ := params.Get(k); return v }
		again := validator.OrderInput{
			Symbol:   get("symbol"),
			Side:     get("side"),
			Type:     get("type"),
			Quantity: get("quantity"),
			Price:    get("price"),
		}
		p2, err := validator.ValidateOrder(again)
		if err != nil {
			t.Errorf("builder output %s rejected: %v", params.Encode(), err)
			continue
		}
		if !p2.Quantity.Equal(p.Quantity) || p2.Symbol != p.Symbol || p2.Side != p.Side || p2.Type != p.Type {
			t.Errorf("round trip changed params: %+v -> %+v", p, p2)
		}
		if strings.ContainsAny(get("quantity"), "eE") {
			t.Errorf("quantity must be plain decimal, got %s", get("quantity"))
		}
	}
}
