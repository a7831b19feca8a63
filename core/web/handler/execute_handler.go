package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wavetradeapp/wave_trader/core/event"
	"github.com/wavetradeapp/wave_trader/core/gmgn"
	"github.com/wavetradeapp/wave_trader/core/market"
	"github.com/wavetradeapp/wave_trader/core/model"
	"github.com/wavetradeapp/wave_trader/core/orders"
	"github.com/wavetradeapp/wave_trader/core/poll"
	"github.com/wavetradeapp/wave_trader/core/strategy"
	"github.com/wavetradeapp/wave_trader/core/trade"
	"github.com/wavetradeapp/wave_trader/core/wallet"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

// Deps wires the handlers to the orchestration core and upstream clients.
type Deps struct {
	GMGN      *gmgn.Client
	Market    *market.Client
	Executor  *trade.Executor
	Requester *strategy.Requester
	Queue     *orders.Queue
	Wallet    *wallet.LocalWallet
}

var (
	gmgnClient    *gmgn.Client
	marketClient  *market.Client
	tradeExecutor *trade.Executor
	strategyReq   *strategy.Requester
	orderQueue    *orders.Queue
	signingWallet *wallet.LocalWallet
)

func Init(d Deps) {
	gmgnClient = d.GMGN
	marketClient = d.Market
	tradeExecutor = d.Executor
	strategyReq = d.Requester
	orderQueue = d.Queue
	signingWallet = d.Wallet
}

type ExecuteRequest struct {
	TokenAddress string  `json:"token_address"`
	Amount       float64 `json:"amount"`
	Slippage     float64 `json:"slippage"`
	TradeMode    string  `json:"trade_mode"`
	InputType    string  `json:"input_type"`
	OrderType    string  `json:"order_type"`
	LimitPrice   float64 `json:"limit_price"`
}

// ExecuteTradeHandler drives one trade through the executor and reports
// the terminal state in plain language.
func ExecuteTradeHandler(c *gin.Context) {
	r := &Response{Code: http.StatusOK, Message: "success"}
	defer func(r *Response) {
		err := recover()
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Stack": PrintStack()}).Error("ExecuteTradeHandler panic")
			r.Code = http.StatusInternalServerError
			r.Message = "trade failed, please retry"
			c.JSON(http.StatusInternalServerError, r)
		} else {
			c.JSON(int(r.Code), r)
		}
	}(r)

	var req ExecuteRequest
	if err := c.ShouldBind(&req); err != nil {
		r.Code = http.StatusBadRequest
		r.Message = "invalid input parameters"
		return
	}

	symbol := ""
	if tokenMarket, err := marketClient.GetTokenMarket(c.Request.Context(), req.TokenAddress); err == nil {
		symbol = tokenMarket.Symbol()
	}

	result, err := tradeExecutor.Execute(c.Request.Context(), trade.Request{
		TokenAddress: req.TokenAddress,
		TokenSymbol:  symbol,
		Amount:       req.Amount,
		Slippage:     req.Slippage,
		TradeMode:    req.TradeMode,
		InputType:    req.InputType,
		OrderType:    req.OrderType,
		LimitPrice:   req.LimitPrice,
	})
	if err != nil {
		status, msg := describeTradeError(err)
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Token": req.TokenAddress}).Error("ExecuteTradeHandler trade failed")
		r.Code = int64(status)
		r.Message = msg
		return
	}

	if result.Status != trade.StatusQueued {
		recordTradeOutcome(c.Request.Context(), &req, symbol, result)
	}

	r.Message = describeTradeResult(result)
	r.Data = result
}

func describeTradeError(err error) (int, string) {
	var invalid *trade.InvalidInputError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest, invalid.Reason
	}

	var balance *trade.InsufficientBalanceError
	if errors.As(err, &balance) {
		if balance.Symbol != "" {
			return http.StatusBadRequest, fmt.Sprintf("Insufficient balance. Available: %g %s", balance.Available, balance.Symbol)
		}
		return http.StatusBadRequest, fmt.Sprintf("Insufficient balance. Available: %g", balance.Available)
	}

	var signing *trade.SigningError
	if errors.As(err, &signing) {
		return http.StatusInternalServerError, "transaction signing failed, please retry the trade"
	}

	var submit *trade.SubmitError
	if errors.As(err, &submit) {
		return http.StatusInternalServerError, "transaction submission failed, please retry the trade"
	}

	if errors.Is(err, trade.ErrNoTransactionData) {
		return http.StatusInternalServerError, "no transaction data returned by the backend"
	}

	return http.StatusInternalServerError, "trade failed, please retry"
}

func describeTradeResult(result *trade.Result) string {
	switch result.Status {
	case trade.StatusQueued:
		return "limit order added to the pending list"
	case trade.StatusConfirmed:
		return "trade confirmed"
	case trade.StatusExpired:
		return "transaction expired"
	case trade.StatusUnknown:
		return "transaction status unknown, please check manually"
	}
	return "success"
}

func recordTradeOutcome(ctx context.Context, req *ExecuteRequest, symbol string, result *trade.Result) {
	err := event.PublishTradeEvent(event.TradeEvent{
		TxHash:       result.TxHash,
		TokenAddress: req.TokenAddress,
		TokenSymbol:  symbol,
		TradeMode:    req.TradeMode,
		Amount:       req.Amount,
		Status:       string(result.Status),
	})
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "TxHash": result.TxHash}).Error("publish trade event failed")
	}

	err = model.InsertTradeRecord(ctx, &model.TradeRecord{
		TxHash:        result.TxHash,
		TokenAddress:  req.TokenAddress,
		TokenSymbol:   symbol,
		WalletAddress: signingWallet.Address(),
		TradeMode:     req.TradeMode,
		Amount:        req.Amount,
		Slippage:      req.Slippage,
		Status:        string(result.Status),
	})
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "TxHash": result.TxHash}).Error("insert trade record failed")
	}
}

type StrategyRequest struct {
	TokenAddress string `json:"token_address" binding:"required"`
	Message      string `json:"message"`
}

// StrategyHandler generates a strategy, or answers a free-form question
// when a message is supplied.
func StrategyHandler(c *gin.Context) {
	r := &Response{Code: http.StatusOK, Message: "success"}
	defer func(r *Response) {
		err := recover()
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Stack": PrintStack()}).Error("StrategyHandler panic")
			r.Code = http.StatusInternalServerError
			r.Message = "strategy generation failed, please retry"
			c.JSON(http.StatusInternalServerError, r)
		} else {
			c.JSON(int(r.Code), r)
		}
	}(r)

	var req StrategyRequest
	if err := c.ShouldBind(&req); err != nil {
		r.Code = http.StatusBadRequest
		r.Message = "invalid input parameters"
		return
	}

	params := strategy.DefaultModelParams()
	var sess *strategy.Session
	if req.Message != "" {
		sess = strategy.NewChatSession(req.TokenAddress, req.Message, params)
	} else {
		sess = strategy.NewStrategySession(req.TokenAddress, params)
	}

	text, err := strategyReq.RequestStrategy(c.Request.Context(), sess)
	if err != nil {
		if errors.Is(err, poll.ErrExhausted) {
			r.Code = http.StatusGatewayTimeout
			r.Message = "strategy generation timed out, please retry"
			return
		}
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Token": req.TokenAddress}).Error("StrategyHandler generation failed")
		r.Code = http.StatusInternalServerError
		r.Message = "strategy generation failed, please retry"
		return
	}

	r.Data = gin.H{"strategy": text}
}

// ListOrdersHandler returns the pending limit-order snapshot.
func ListOrdersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, &Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    orderQueue.List(),
	})
}

// CancelOrderHandler removes a pending order by id. Cancelling an
// unknown id still succeeds.
func CancelOrderHandler(c *gin.Context) {
	r := &Response{Code: http.StatusOK, Message: "success"}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		r.Code = http.StatusBadRequest
		r.Message = "invalid order id"
		c.JSON(http.StatusBadRequest, r)
		return
	}

	orderQueue.Cancel(id)
	c.JSON(http.StatusOK, r)
}

// WalletHandler reports the signing wallet's connection state.
func WalletHandler(c *gin.Context) {
	c.JSON(http.StatusOK, &Response{
		Code:    http.StatusOK,
		Message: "success",
		Data: gin.H{
			"connected": signingWallet.IsConnected(),
			"address":   signingWallet.Address(),
		},
	})
}

// WalletConnectHandler toggles the wallet into the connected state.
func WalletConnectHandler(c *gin.Context) {
	signingWallet.Connect()
	WalletHandler(c)
}

// WalletDisconnectHandler toggles the wallet into the disconnected state.
func WalletDisconnectHandler(c *gin.Context) {
	signingWallet.Disconnect()
	WalletHandler(c)
}
