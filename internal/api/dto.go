package api

// RegisterRequest is the body of POST /api/v1/public/register.
type RegisterRequest struct {
	Name string `json:"name" binding:"required"`
}

// RegisterResponse returns the newly issued (or pre-existing) identity.
type RegisterResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	APIKey string `json:"api_key"`
}

// InstrumentResponse is one row of GET /api/v1/public/instrument.
type InstrumentResponse struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// CreateInstrumentRequest is the body of POST /api/v1/admin/instrument.
type CreateInstrumentRequest struct {
	Ticker string `json:"ticker" binding:"required,ticker"`
	Name   string `json:"name" binding:"required"`
}

// PriceLevelResponse is one aggregated depth row.
type PriceLevelResponse struct {
	Price int64 `json:"price"`
	Qty   int64 `json:"qty"`
}

// OrderbookResponse is the body of GET /api/v1/public/orderbook/{ticker}.
type OrderbookResponse struct {
	BidLevels []PriceLevelResponse `json:"bid_levels"`
	AskLevels []PriceLevelResponse `json:"ask_levels"`
}

// TradeResponse is the external trade projection of spec §3: no
// buyer/seller ids.
type TradeResponse struct {
	Ticker    string `json:"ticker"`
	Amount    int64  `json:"amount"`
	Price     int64  `json:"price"`
	Timestamp string `json:"timestamp"`
}

// CreateOrderRequest is the tagged-sum body of POST /api/v1/order:
// Price absent means a market order (spec §3, §4.5).
type CreateOrderRequest struct {
	Direction string `json:"direction" binding:"required,oneof=BUY SELL"`
	Ticker    string `json:"ticker" binding:"required"`
	Qty       int64  `json:"qty" binding:"required,gt=0"`
	Price     *int64 `json:"price,omitempty" binding:"omitempty,gt=0"`
}

// CreateOrderResponse is returned from a successful submit.
type CreateOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
}

// OrderResponse is the user-facing order projection.
type OrderResponse struct {
	ID        string `json:"id"`
	Ticker    string `json:"ticker"`
	Kind      string `json:"kind"`
	Direction string `json:"direction"`
	Qty       int64  `json:"qty"`
	Price     int64  `json:"price,omitempty"`
	Filled    int64  `json:"filled"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// BalanceDepositRequest/BalanceWithdrawRequest are the admin
// deposit/withdraw bodies.
type BalanceDepositRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Ticker string `json:"ticker" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

type BalanceWithdrawRequest = BalanceDepositRequest

// ErrorResponse is the uniform error body of spec §7.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
