package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/exchange-core/internal/book"
	"github.com/abdoElHodaky/exchange-core/internal/catalog"
	"github.com/abdoElHodaky/exchange-core/internal/engine"
	"github.com/abdoElHodaky/exchange-core/internal/errs"
	"github.com/abdoElHodaky/exchange-core/internal/orderstore"
)

// @Summary Register a user
// @Tags Public
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "User name"
// @Success 200 {object} RegisterResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/public/register [post]
func (s *Server) handleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, errs.New(errs.Validation, err.Error()))
		return
	}
	u, err := s.Users.Register(req.Name)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, RegisterResponse{ID: u.ID, Name: u.Name, Role: string(u.Role), APIKey: u.APIKey})
}

// @Summary List instruments
// @Tags Public
// @Produce json
// @Success 200 {array} InstrumentResponse
// @Router /api/v1/public/instrument [get]
func (s *Server) handleListInstruments(c *gin.Context) {
	list := s.Catalog.List()
	if len(list) == 0 {
		// The in-memory catalog starts empty on every process start
		// and is not reloaded from the database: fall back to the
		// sqlx read projection so a restarted process still lists
		// the persisted instruments.
		rows, err := s.Reads.Instruments()
		if err != nil {
			respondErr(c, errs.Wrap(errs.Internal, "failed to load instruments", err))
			return
		}
		out := make([]InstrumentResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, InstrumentResponse{Name: r.Name, Ticker: r.Ticker})
		}
		c.JSON(http.StatusOK, out)
		return
	}
	out := make([]InstrumentResponse, 0, len(list))
	for _, i := range list {
		out = append(out, InstrumentResponse{Name: i.Name, Ticker: i.Ticker})
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Get order book depth
// @Tags Public
// @Produce json
// @Param ticker path string true "Instrument ticker"
// @Param limit query int false "Number of price levels per side"
// @Success 200 {object} OrderbookResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/public/orderbook/{ticker} [get]
func (s *Server) handleOrderbook(c *gin.Context) {
	ticker := c.Param("ticker")
	if !s.Catalog.Exists(ticker) {
		respondErr(c, errs.New(errs.InstrumentUnknown, "instrument unknown"))
		return
	}
	limit := parseLimit(c, 0)
	bids, asks := s.Engine.Depth(ticker, limit)
	c.JSON(http.StatusOK, OrderbookResponse{
		BidLevels: toPriceLevels(bids),
		AskLevels: toPriceLevels(asks),
	})
}

// @Summary List recent trades
// @Tags Public
// @Produce json
// @Param ticker path string true "Instrument ticker"
// @Param limit query int false "Max number of trades"
// @Success 200 {array} TradeResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/public/transactions/{ticker} [get]
func (s *Server) handleTransactions(c *gin.Context) {
	ticker := c.Param("ticker")
	if !s.Catalog.Exists(ticker) {
		respondErr(c, errs.New(errs.InstrumentUnknown, "instrument unknown"))
		return
	}
	limit := parseLimit(c, 50)
	trades := s.Trades.List(ticker, limit)
	if len(trades) == 0 {
		rows, err := s.Reads.RecentTrades(ticker, limit)
		if err != nil {
			respondErr(c, errs.Wrap(errs.Internal, "failed to load trades", err))
			return
		}
		out := make([]TradeResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, TradeResponse{Ticker: r.Ticker, Amount: r.Amount, Price: r.Price, Timestamp: r.Timestamp.Format(timeLayout)})
		}
		c.JSON(http.StatusOK, out)
		return
	}
	out := make([]TradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, TradeResponse{Ticker: t.Ticker, Amount: t.Amount, Price: t.Price, Timestamp: t.Timestamp.Format(timeLayout)})
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Get caller's balances
// @Tags Account
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]int64
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/balance [get]
func (s *Server) handleBalance(c *gin.Context) {
	u := currentUser(c)
	out := make(map[string]int64)
	for _, ticker := range s.balanceTickers() {
		available, reserved := s.Ledger.Get(u.ID, ticker)
		if total := available + reserved; total != 0 {
			out[ticker] = total
		}
	}
	c.JSON(http.StatusOK, out)
}

// balanceTickers enumerates every asset a balance might exist for:
// RUB plus every registered instrument. The ledger itself has no
// "list assets" operation (spec §4.1 is keyed access only), so the
// catalog is the source of truth for which instrument columns to
// probe.
func (s *Server) balanceTickers() []string {
	tickers := []string{catalog.Quote}
	for _, i := range s.Catalog.List() {
		tickers = append(tickers, i.Ticker)
	}
	return tickers
}

// @Summary Submit an order
// @Tags Order
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateOrderRequest true "Order submission"
// @Success 200 {object} CreateOrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/order [post]
func (s *Server) handleCreateOrder(c *gin.Context) {
	u := currentUser(c)
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, errs.New(errs.Validation, err.Error()))
		return
	}

	if !s.Limiter.Allow(u.ID, req.Ticker) {
		respondErr(c, errs.New(errs.Validation, "order rate limit exceeded"))
		return
	}

	kind := engine.KindMarket
	var price int64
	if req.Price != nil {
		kind = engine.KindLimit
		price = *req.Price
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := s.Engine.Submit(ctx, engine.SubmitRequest{
		UserID:    u.ID,
		Ticker:    req.Ticker,
		Kind:      kind,
		Direction: orderstore.Direction(req.Direction),
		Qty:       req.Qty,
		Price:     price,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, CreateOrderResponse{Success: true, OrderID: res.OrderID})
}

// @Summary List caller's non-cancelled orders
// @Tags Order
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} OrderResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/order [get]
func (s *Server) handleListOrders(c *gin.Context) {
	u := currentUser(c)
	orders := s.Orders.ListByUser(u.ID)
	if len(orders) == 0 {
		rows, err := s.Reads.OrdersByUser(u.ID)
		if err != nil {
			respondErr(c, errs.Wrap(errs.Internal, "failed to load orders", err))
			return
		}
		out := make([]OrderResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, OrderResponse{
				ID: r.ID, Ticker: r.Ticker, Kind: r.Kind, Direction: r.Direction,
				Qty: r.Qty, Price: r.Price, Filled: r.Filled, Status: r.Status,
				Timestamp: r.Timestamp.Format(timeLayout),
			})
		}
		c.JSON(http.StatusOK, out)
		return
	}
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		if o.Status == orderstore.StatusCancelled {
			continue
		}
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Get an order by id
// @Tags Order
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/order/{id} [get]
func (s *Server) handleGetOrder(c *gin.Context) {
	u := currentUser(c)
	id := c.Param("id")
	o, ok := s.Orders.Get(id)
	if !ok {
		respondErr(c, errs.New(errs.NotFound, "order not found"))
		return
	}
	if o.UserID != u.ID {
		respondErr(c, errs.New(errs.Forbidden, "not the order owner"))
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

// @Summary Cancel an order
// @Tags Order
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/order/{id} [delete]
func (s *Server) handleCancelOrder(c *gin.Context) {
	u := currentUser(c)
	id := c.Param("id")

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.Engine.Cancel(ctx, u.ID, id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Create an instrument
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateInstrumentRequest true "Instrument to create"
// @Success 200 {object} InstrumentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/admin/instrument [post]
func (s *Server) handleCreateInstrument(c *gin.Context) {
	var req CreateInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, errs.New(errs.Validation, err.Error()))
		return
	}
	if err := s.Catalog.Create(req.Ticker, req.Name); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, InstrumentResponse{Name: req.Name, Ticker: req.Ticker})
}

// @Summary Delete an instrument
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param ticker path string true "Instrument ticker"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/instrument/{ticker} [delete]
func (s *Server) handleDeleteInstrument(c *gin.Context) {
	ticker := c.Param("ticker")
	if err := s.Catalog.Delete(ticker); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Credit a user's balance
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body BalanceDepositRequest true "Deposit request"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/admin/balance/deposit [post]
func (s *Server) handleDeposit(c *gin.Context) {
	var req BalanceDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, errs.New(errs.Validation, err.Error()))
		return
	}
	if err := s.Ledger.Deposit(req.UserID, req.Ticker, req.Amount); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Debit a user's balance
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body BalanceWithdrawRequest true "Withdrawal request"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/admin/balance/withdraw [post]
func (s *Server) handleWithdraw(c *gin.Context) {
	var req BalanceWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, errs.New(errs.Validation, err.Error()))
		return
	}
	if err := s.Ledger.Withdraw(req.UserID, req.Ticker, req.Amount); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleDeleteUser implements spec §6: cancel all open orders, then
// delete. Open orders are cancelled best-effort; a failure to cancel
// one does not stop the deletion of the user record, matching the
// admin operation's intent of reclaiming the account regardless of
// stray book state.
// @Summary Delete a user, cancelling their open orders first
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/user/{id} [delete]
func (s *Server) handleDeleteUser(c *gin.Context) {
	id := c.Param("id")
	u, ok := s.Users.ByID(id)
	if !ok {
		respondErr(c, errs.New(errs.NotFound, "user not found"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	for _, o := range s.Orders.ListByUser(u.ID) {
		if o.Status == orderstore.StatusNew || o.Status == orderstore.StatusPartiallyExecuted {
			if err := s.Engine.Cancel(ctx, u.ID, o.ID); err != nil {
				s.Logger.Warn("failed to cancel order during user deletion", zap.String("order_id", o.ID), zap.Error(err))
			}
		}
	}

	if err := s.Users.Delete(id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func parseLimit(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func toPriceLevels(levels []book.PriceLevel) []PriceLevelResponse {
	out := make([]PriceLevelResponse, 0, len(levels))
	for _, lv := range levels {
		out = append(out, PriceLevelResponse{Price: lv.Price, Qty: lv.Qty})
	}
	return out
}

func toOrderResponse(o orderstore.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		Ticker:    o.Ticker,
		Kind:      string(o.Kind),
		Direction: string(o.Direction),
		Qty:       o.Qty,
		Price:     o.Price,
		Filled:    o.Filled,
		Status:    string(o.Status),
		Timestamp: o.Timestamp.Format(timeLayout),
	}
}
