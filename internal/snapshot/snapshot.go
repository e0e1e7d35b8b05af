// Package snapshot periodically serializes each instrument's order
// book to a gzip-compressed file for crash recovery (spec §9's
// "write-ahead log to the store for recovery" note, SPEC_FULL §4.4).
// It never participates in the matching path itself.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/abdoElHodaky/exchange-core/internal/book"
)

// Writer persists book snapshots under dir/<ticker>.snap.gz.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

type levelDTO struct {
	Price int64 `json:"price"`
	Qty   int64 `json:"qty"`
}

type snapshotDTO struct {
	Ticker string     `json:"ticker"`
	Bids   []levelDTO `json:"bids"`
	Asks   []levelDTO `json:"asks"`
}

// Write serializes the aggregated depth of b for ticker. It is a
// recovery hint, not authoritative state: resting order ownership and
// reserved_funds live only in the order store and ledger.
func (w *Writer) Write(ticker string, b *book.Book) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	dto := snapshotDTO{Ticker: ticker}
	for _, lv := range b.Depth(book.Bid, 0) {
		dto.Bids = append(dto.Bids, levelDTO{Price: lv.Price, Qty: lv.Qty})
	}
	for _, lv := range b.Depth(book.Ask, 0) {
		dto.Asks = append(dto.Asks, levelDTO{Price: lv.Price, Qty: lv.Qty})
	}

	path := filepath.Join(w.dir, ticker+".snap.gz")
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewWriterLevel(f, gzip.BestSpeed)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(gz).Encode(dto); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
