package trade

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wavetradeapp/wave_trader/core/orders"
	"github.com/wavetradeapp/wave_trader/core/poll"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

// SwapAPI is the slice of the backend contract the executor needs.
type SwapAPI interface {
	BuildSwap(ctx context.Context, in SwapRequest) (*SwapTransaction, error)
	SubmitSigned(ctx context.Context, signedTx string) (string, error)
	TransactionStatus(ctx context.Context, rec ConfirmationRecord) (*TxStatus, error)
}

// Wallet signs raw transaction bytes. Address returns "" while the wallet
// is disconnected. Signing failures must be distinguishable from network
// failures, which is why the wallet never performs I/O against the backend.
type Wallet interface {
	Address() string
	SignTransaction(ctx context.Context, raw []byte) ([]byte, error)
}

const (
	defaultStatusInterval = time.Second
	defaultStatusAttempts = 60
)

// Executor drives one trade from validation to a terminal state. Limit
// orders stop at the pending queue; market orders run the full build →
// sign → submit → poll pipeline. Steps are strictly sequential and
// nothing past signing is ever retried automatically.
type Executor struct {
	api    SwapAPI
	wallet Wallet
	queue  *orders.Queue

	statusInterval time.Duration
	statusAttempts int
}

func NewExecutor(api SwapAPI, wallet Wallet, queue *orders.Queue) *Executor {
	return &Executor{
		api:            api,
		wallet:         wallet,
		queue:          queue,
		statusInterval: defaultStatusInterval,
		statusAttempts: defaultStatusAttempts,
	}
}

// SetStatusPolling overrides the confirmation polling cadence.
func (e *Executor) SetStatusPolling(interval time.Duration, maxAttempts int) {
	if interval > 0 {
		e.statusInterval = interval
	}
	if maxAttempts > 0 {
		e.statusAttempts = maxAttempts
	}
}

func (e *Executor) validate(req *Request) error {
	if req.TokenAddress == "" {
		return &InvalidInputError{Reason: "token address is empty"}
	}
	if req.Amount <= 0 {
		return &InvalidInputError{Reason: "amount must be positive"}
	}
	if req.Slippage <= 0 {
		return &InvalidInputError{Reason: "slippage must be positive"}
	}
	if req.OrderType == OrderLimit && req.LimitPrice <= 0 {
		return &InvalidInputError{Reason: "limit price must be positive"}
	}
	if e.wallet.Address() == "" {
		return &InvalidInputError{Reason: "wallet not connected"}
	}
	return nil
}

// Execute runs the trade to a terminal state. Unknown (polling budget
// exhausted) is reported as a result, not an error: the trade may have
// landed on chain after the watcher gave up.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := e.validate(&req); err != nil {
		return nil, err
	}

	if req.OrderType == OrderLimit {
		order := orders.PendingOrder{
			ID:           time.Now().UnixMilli(),
			TradeMode:    req.TradeMode,
			InputType:    req.InputType,
			Amount:       req.Amount,
			LimitPrice:   req.LimitPrice,
			TokenAddress: req.TokenAddress,
			TokenSymbol:  req.TokenSymbol,
			CreatedAt:    time.Now(),
		}
		e.queue.Add(order)
		return &Result{Status: StatusQueued, OrderID: order.ID}, nil
	}

	swap, err := e.api.BuildSwap(ctx, SwapRequest{
		TokenAddress:  req.TokenAddress,
		Amount:        req.Amount,
		Slippage:      req.Slippage,
		WalletAddress: e.wallet.Address(),
		TradeMode:     req.TradeMode,
	})
	if err != nil {
		var ib *InsufficientBalanceError
		if errors.As(err, &ib) {
			ib.Symbol = req.TokenSymbol
		}
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(swap.Transaction)
	if err != nil {
		return nil, &SigningError{Cause: err}
	}

	signed, err := e.wallet.SignTransaction(ctx, raw)
	if err != nil {
		return nil, &SigningError{Cause: err}
	}

	txHash, err := e.api.SubmitSigned(ctx, base64.StdEncoding.EncodeToString(signed))
	if err != nil {
		return nil, err
	}

	rec := ConfirmationRecord{TxHash: txHash, LastValidHeight: swap.LastValidBlockHeight}

	logger.Logrus.WithFields(logrus.Fields{"TxHash": rec.TxHash, "LastValidHeight": rec.LastValidHeight}).Info("trade submitted, polling status")

	return e.awaitConfirmation(ctx, rec)
}

func (e *Executor) awaitConfirmation(ctx context.Context, rec ConfirmationRecord) (*Result, error) {
	opts := poll.Options{Interval: e.statusInterval, MaxAttempts: e.statusAttempts}

	_, err := poll.Run(ctx, opts, func(ctx context.Context) poll.Outcome[struct{}] {
		st, err := e.api.TransactionStatus(ctx, rec)
		if err != nil {
			// transient, keep polling
			return poll.Pending[struct{}]()
		}
		if st.Success {
			return poll.Done(struct{}{})
		}
		if st.Expired {
			return poll.Fail[struct{}](ErrTransactionExpired)
		}
		return poll.Pending[struct{}]()
	})

	switch {
	case err == nil:
		return &Result{Status: StatusConfirmed, TxHash: rec.TxHash}, nil
	case errors.Is(err, ErrTransactionExpired):
		return &Result{Status: StatusExpired, TxHash: rec.TxHash}, nil
	case errors.Is(err, poll.ErrExhausted):
		return &Result{Status: StatusUnknown, TxHash: rec.TxHash}, nil
	default:
		return nil, err
	}
}
