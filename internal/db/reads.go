// Reads implements the sqlx-backed projections of SPEC_FULL §2
// component 8: raw-SQL read paths for the public/user list endpoints,
// kept separate from the gorm write path so a slow analytical query
// never contends with the matching engine's transactional writes.
package db

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type ReadProjections struct {
	db *sqlx.DB
}

func NewReadProjections(sqlDB *sqlx.DB) *ReadProjections {
	return &ReadProjections{db: sqlDB}
}

// TradeRow mirrors the external Trade projection of spec §3 (no
// buyer/seller ids).
type TradeRow struct {
	Ticker    string    `db:"ticker"`
	Amount    int64     `db:"amount"`
	Price     int64     `db:"price"`
	Timestamp time.Time `db:"timestamp"`
}

// RecentTrades returns the limit most recent trades for ticker,
// newest first.
func (r *ReadProjections) RecentTrades(ticker string, limit int) ([]TradeRow, error) {
	var rows []TradeRow
	err := r.db.Select(&rows,
		`SELECT ticker, amount, price, timestamp FROM trades
		 WHERE ticker = $1 ORDER BY timestamp DESC LIMIT $2`, ticker, limit)
	return rows, err
}

// OrderRow is the list/detail projection for GET /order and
// GET /order/{id}.
type OrderRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Ticker    string `db:"ticker"`
	Kind      string `db:"kind"`
	Direction string `db:"direction"`
	Qty       int64  `db:"qty"`
	Price     int64  `db:"price"`
	Filled    int64  `db:"filled"`
	Status    string `db:"status"`
	Timestamp time.Time `db:"timestamp"`
}

// OrdersByUser returns every non-cancelled order belonging to userID,
// newest first (spec §6: GET /api/v1/order lists caller's
// non-cancelled orders).
func (r *ReadProjections) OrdersByUser(userID string) ([]OrderRow, error) {
	var rows []OrderRow
	err := r.db.Select(&rows,
		`SELECT id, user_id, ticker, kind, direction, qty, price, filled, status, timestamp
		 FROM orders WHERE user_id = $1 AND status <> 'CANCELLED' ORDER BY timestamp DESC`, userID)
	return rows, err
}

// InstrumentRow backs GET /api/v1/public/instrument.
type InstrumentRow struct {
	Ticker string `db:"ticker"`
	Name   string `db:"name"`
}

func (r *ReadProjections) Instruments() ([]InstrumentRow, error) {
	var rows []InstrumentRow
	err := r.db.Select(&rows, `SELECT ticker, name FROM instruments ORDER BY ticker`)
	return rows, err
}
