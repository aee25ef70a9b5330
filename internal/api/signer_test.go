package api

import (
	"errors"
	"testing"

	"futures-testnet-bot/internal/model"
)

func TestSign_KnownVector(t *testing.T) {
	// Example from the Binance API documentation for SIGNED endpoints.
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	query := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	expected := "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71"

	signer, err := NewSigner(secret)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	if got := signer.Sign(query); got != expected {
		t.Errorf("signature mismatch. Expected %s, got %s", expected, got)
	}
}

func TestSign_StandardHmacVector(t *testing.T) {
	signer, err := NewSigner("key")
	if err != nil {
		t.Fatal(err)
	}
	got := signer.Sign("The quick brown fox jumps over the lazy dog")
	if got != "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8" {
		t.Errorf("HMAC mismatch, got %s", got)
	}
}

func TestSignParams_CanonicalOrderMatchesDocs(t *testing.T) {
	signer, _ := NewSigner("NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j")

	var p Params
	p.Add("symbol", "LTCBTC")
	p.Add("side", "BUY")
	p.Add("type", "LIMIT")
	p.Add("timeInForce", "GTC")
	p.Add("quantity", "1")
	p.Add("price", "0.1")
	p.Add("recvWindow", "5000")
	p.Add("timestamp", "1499827319559")

	query, sig := signer.SignParams(p)
	if query != "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559" {
		t.Errorf("unexpected query: %s", query)
	}
	if sig != "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71" {
		t.Errorf("unexpected signature: %s", sig)
	}
}

func TestSignParams_Deterministic(t *testing.T) {
	signer, _ := NewSigner("secret")
	p := Params{{"symbol", "BTCUSDT"}, {"side", "BUY"}, {"quantity", "0.01"}, {"timestamp", "1700000000000"}}

	q1, s1 := signer.SignParams(p)
	q2, s2 := signer.SignParams(p)
	if q1 != q2 || s1 != s2 {
		t.Errorf("signing is not deterministic: %s/%s vs %s/%s", q1, s1, q2, s2)
	}
}

func TestSignParams_SensitiveToEveryValue(t *testing.T) {
	signer, _ := NewSigner("secret")
	base := Params{{"symbol", "BTCUSDT"}, {"side", "BUY"}, {"quantity", "0.01"}, {"timestamp", "1700000000000"}}
	_, baseSig := signer.SignParams(base)

	for i := range base {
		changed := make(Params, len(base))
		copy(changed, base)
		changed[i].Value += "1"
		if _, sig := signer.SignParams(changed); sig == baseSig {
			t.Errorf("changing %s did not change the signature", base[i].Key)
		}
	}
}

func TestSignParams_OrderSensitive(t *testing.T) {
	signer, _ := NewSigner("secret")
	canonical := Params{{"symbol", "BTCUSDT"}, {"side", "BUY"}, {"type", "MARKET"}}
	permuted := Params{{"side", "BUY"}, {"symbol", "BTCUSDT"}, {"type", "MARKET"}}

	cq, cs := signer.SignParams(canonical)
	pq, ps := signer.SignParams(permuted)

	if cq != "symbol=BTCUSDT&side=BUY&type=MARKET" {
		t.Errorf("canonical order not preserved: %s", cq)
	}
	if cq == pq {
		t.Error("permuted params serialized identically")
	}
	if cs == ps {
		t.Error("permuted params produced the same signature")
	}
}

func TestNewSigner_RejectsMalformedSecret(t *testing.T) {
	for _, secret := range []string{"", " ", "abc def", "abc\n", "abc\x00"} {
		_, err := NewSigner(secret)
		var sErr *SigningError
		if !errors.As(err, &sErr) {
			t.Errorf("NewSigner(%q): expected SigningError, got %v", secret, err)
			continue
		}
		if model.KindOf(err) != model.KindSigning {
			t.Errorf("NewSigner(%q): kind = %s", secret, model.KindOf(err))
		}
	}
}

func TestSigner_Wipe(t *testing.T) {
	signer, _ := NewSigner("secret")
	signer.Wipe()
	for _, b := range signer.secret {
		if b != 0 {
			t.Fatal("secret not wiped")
		}
	}

	var nilSigner *Signer
	nilSigner.Wipe()
}
