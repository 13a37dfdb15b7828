package paper

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"quotebot-go/internal/market"
)

// fillLine is one row of the fills journal, written from the point of view of self.
type fillLine struct {
	Timestamp    int64          `json:"ts"`
	Symbol       market.Product `json:"symbol"`
	Side         market.Side    `json:"side"`
	Price        float64        `json:"price"`
	Quantity     int            `json:"qty"`
	Counterparty string         `json:"counterparty,omitempty"`
}

// JSONLRecorder journals booked fills as JSON lines.
type JSONLRecorder struct {
	self string

	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
	err  error
}

// NewJSONLRecorder opens path for appending, creating parent directories as needed.
func NewJSONLRecorder(path, self string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(file)
	return &JSONLRecorder{self: self, file: file, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Record journals fill. The first write error sticks and is reported by Close.
func (r *JSONLRecorder) Record(fill market.Trade) {
	line := fillLine{Timestamp: fill.Timestamp, Symbol: fill.Symbol, Price: fill.Price, Quantity: fill.Quantity}
	switch r.self {
	case fill.Buyer:
		line.Side, line.Counterparty = market.Buy, fill.Seller
	default:
		line.Side, line.Counterparty = market.Sell, fill.Buyer
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil || r.err != nil {
		return
	}
	r.err = r.enc.Encode(line)
}

// Close flushes buffered lines and closes the file. Later records are dropped.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := errors.Join(r.err, r.buf.Flush(), r.file.Close())
	r.file = nil
	return err
}
