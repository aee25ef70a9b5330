package api

import (
	"net/url"
	"strings"
)

type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters. Insertion order is the byte
// order that gets signed and sent, so it must not be sorted or deduplicated.
type Params []Param

func (p *Params) Add(key, value string) {
	*p = append(*p, Param{Key: key, Value: value})
}

func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Encode renders key1=value1&key2=value2 in insertion order, form-escaping keys and values.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}
