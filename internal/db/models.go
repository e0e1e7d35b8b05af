// Package db holds the gorm-persisted row types backing the ledger,
// order store, trade log and catalog, plus the connection opener.
package db

import "time"

// Role is a user's authorization level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User row. APIKey is opaque and generated server-side on register.
type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string `gorm:"uniqueIndex;type:varchar(100)"`
	Role      Role   `gorm:"type:varchar(10)"`
	APIKey    string `gorm:"uniqueIndex;type:varchar(64)"`
	CreatedAt time.Time
}

func (User) TableName() string { return "users" }

// Instrument is a tradeable ticker. RUB is never stored here — it is
// a reserved built-in asset recognized in code, never a catalog row.
type Instrument struct {
	Ticker    string `gorm:"primaryKey;type:varchar(10)"`
	Name      string `gorm:"type:varchar(100)"`
	CreatedAt time.Time
}

func (Instrument) TableName() string { return "instruments" }

// Balance is the durable mirror of one (user, asset) ledger key. The
// in-memory ledger (internal/ledger) is authoritative for reads and
// writes made during matching; rows here are kept in sync so balances
// survive a restart.
type Balance struct {
	UserID    string `gorm:"primaryKey;type:varchar(36)"`
	Ticker    string `gorm:"primaryKey;type:varchar(10)"`
	Available int64
	Reserved  int64
	UpdatedAt time.Time
}

func (Balance) TableName() string { return "balances" }

// OrderKind distinguishes limit from market orders (spec §3's tagged
// sum), persisted as a plain column rather than two tables so a
// user's order history is a single query.
type OrderKind string

const (
	KindLimit  OrderKind = "LIMIT"
	KindMarket OrderKind = "MARKET"
)

type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

type OrderStatus string

const (
	StatusNew                OrderStatus = "NEW"
	StatusPartiallyExecuted  OrderStatus = "PARTIALLY_EXECUTED"
	StatusExecuted           OrderStatus = "EXECUTED"
	StatusCancelled          OrderStatus = "CANCELLED"
)

// Order is the durable record of every submission. Price is 0 for
// market orders (never meaningful, never resting).
type Order struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"index;type:varchar(36)"`
	Ticker    string `gorm:"index;type:varchar(10)"`
	Kind      OrderKind   `gorm:"type:varchar(10)"`
	Direction Direction   `gorm:"type:varchar(4)"`
	Qty       int64
	Price     int64
	Filled    int64
	Status    OrderStatus `gorm:"type:varchar(20);index"`
	Timestamp time.Time
}

func (Order) TableName() string { return "orders" }

// Trade is an append-only execution record. ID is a K-sortable ksuid;
// trade history reads order by the indexed Timestamp column.
type Trade struct {
	ID        string `gorm:"primaryKey;type:varchar(27)"`
	Ticker    string `gorm:"index;type:varchar(10)"`
	BuyerID   string `gorm:"type:varchar(36)"`
	SellerID  string `gorm:"type:varchar(36)"`
	Amount    int64
	Price     int64
	Timestamp time.Time `gorm:"index"`
}

func (Trade) TableName() string { return "trades" }

// AllModels lists every row type for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Instrument{}, &Balance{}, &Order{}, &Trade{},
	}
}
