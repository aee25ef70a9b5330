package model

import "time"

// Ticker is a best bid/ask snapshot for one symbol.
type Ticker struct {
	Symbol string    `json:"symbol"`
	Bid    string    `json:"bid"`
	Ask    string    `json:"ask"`
	Time   time.Time `json:"time"`
}
