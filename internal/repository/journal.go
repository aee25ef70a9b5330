package repository

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const JournalFileName = "orders.jsonl"

// Entry is one submission attempt, successful or not.
type Entry struct {
	Time          time.Time `json:"time"`
	ClientOrderID string    `json:"clientOrderId,omitempty"`
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	Type          string    `json:"type"`
	Quantity      string    `json:"quantity"`
	Price         string    `json:"price,omitempty"`

	OK          bool   `json:"ok"`
	OrderID     int64  `json:"orderId,omitempty"`
	Status      string `json:"status,omitempty"`
	ExecutedQty string `json:"executedQty,omitempty"`
	AvgPrice    string `json:"avgPrice,omitempty"`

	ErrorKind string `json:"errorKind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Journal is an append-only JSON-lines file of order attempts.
type Journal struct {
	path string
	mu   sync.Mutex
}

func NewJournal(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal dir %s: %w", dir, err)
	}
	return &Journal{path: filepath.Join(dir, JournalFileName)}, nil
}

func (j *Journal) Path() string { return j.path }

func (j *Journal) Append(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal %s: %w", j.path, err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(e); err != nil {
		return fmt.Errorf("failed to encode journal entry to %s: %w", j.path, err)
	}
	return nil
}

// Recent returns up to n of the newest entries, oldest first.
// Lines that fail to decode are skipped.
func (j *Journal) Recent(n int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal %s: %w", j.path, err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
		if n > 0 && len(entries) > n {
			entries = entries[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read journal %s: %w", j.path, err)
	}
	return entries, nil
}
