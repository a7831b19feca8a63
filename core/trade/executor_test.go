package trade

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetradeapp/wave_trader/core/orders"
	"github.com/wavetradeapp/wave_trader/core/poll"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(filepath.Join(os.TempDir(), "wave_trader_test.log"))
	os.Exit(m.Run())
}

type statusStep struct {
	st  *TxStatus
	err error
}

type fakeSwapAPI struct {
	buildErr error
	swap     *SwapTransaction

	submitHash string
	submitErr  error

	steps []statusStep

	buildCalls  int
	submitCalls int
	statusCalls int
}

func (f *fakeSwapAPI) BuildSwap(ctx context.Context, in SwapRequest) (*SwapTransaction, error) {
	f.buildCalls++
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.swap, nil
}

func (f *fakeSwapAPI) SubmitSigned(ctx context.Context, signedTx string) (string, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitHash, nil
}

func (f *fakeSwapAPI) TransactionStatus(ctx context.Context, rec ConfirmationRecord) (*TxStatus, error) {
	f.statusCalls++
	step := f.steps[len(f.steps)-1]
	if f.statusCalls <= len(f.steps) {
		step = f.steps[f.statusCalls-1]
	}
	return step.st, step.err
}

type fakeWallet struct {
	addr    string
	signErr error
}

func (w *fakeWallet) Address() string { return w.addr }

func (w *fakeWallet) SignTransaction(ctx context.Context, raw []byte) ([]byte, error) {
	if w.signErr != nil {
		return nil, w.signErr
	}
	return raw, nil
}

func marketRequest() Request {
	return Request{
		TokenAddress: "BkzLkA9SfpXh9Lqj4uTK7kDtCVJM7rDhBh2CPnqbonk",
		TokenSymbol:  "BONK",
		Amount:       0.5,
		Slippage:     10,
		TradeMode:    ModeBuy,
		InputType:    InputSOL,
		OrderType:    OrderMarket,
	}
}

func builtSwap() *SwapTransaction {
	return &SwapTransaction{
		Transaction:          base64.StdEncoding.EncodeToString([]byte("unsigned-tx")),
		LastValidBlockHeight: 5000,
	}
}

func TestExecuteValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Request)
		wallet *fakeWallet
		reason string
	}{
		{"empty token", func(r *Request) { r.TokenAddress = "" }, &fakeWallet{addr: "W"}, "token address is empty"},
		{"zero amount", func(r *Request) { r.Amount = 0 }, &fakeWallet{addr: "W"}, "amount must be positive"},
		{"negative amount", func(r *Request) { r.Amount = -1 }, &fakeWallet{addr: "W"}, "amount must be positive"},
		{"zero slippage", func(r *Request) { r.Slippage = 0 }, &fakeWallet{addr: "W"}, "slippage must be positive"},
		{"limit without price", func(r *Request) { r.OrderType = OrderLimit; r.LimitPrice = 0 }, &fakeWallet{addr: "W"}, "limit price must be positive"},
		{"disconnected wallet", func(r *Request) {}, &fakeWallet{addr: ""}, "wallet not connected"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeSwapAPI{}
			e := NewExecutor(api, tc.wallet, orders.NewQueue())

			req := marketRequest()
			tc.mutate(&req)

			_, err := e.Execute(context.Background(), req)

			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.reason, invalid.Reason)
			// validation failures must not touch the backend
			assert.Zero(t, api.buildCalls)
		})
	}
}

func TestExecuteLimitOrderQueuesWithoutNetwork(t *testing.T) {
	api := &fakeSwapAPI{}
	queue := orders.NewQueue()
	e := NewExecutor(api, &fakeWallet{addr: "W"}, queue)

	req := marketRequest()
	req.OrderType = OrderLimit
	req.LimitPrice = 0.0021

	result, err := e.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, result.Status)
	assert.Zero(t, api.buildCalls)
	assert.Zero(t, api.submitCalls)

	queued := queue.List()
	require.Len(t, queued, 1)
	assert.Equal(t, result.OrderID, queued[0].ID)
	assert.Equal(t, "BONK", queued[0].TokenSymbol)
	assert.Equal(t, 0.0021, queued[0].LimitPrice)
	assert.Equal(t, ModeBuy, queued[0].TradeMode)
}

func TestExecuteMarketOrderConfirmed(t *testing.T) {
	api := &fakeSwapAPI{
		swap:       builtSwap(),
		submitHash: "txhash123",
		steps: []statusStep{
			{st: &TxStatus{}},
			{st: &TxStatus{}},
			{st: &TxStatus{Success: true}},
		},
	}
	e := NewExecutor(api, &fakeWallet{addr: "W"}, orders.NewQueue())
	e.SetStatusPolling(time.Millisecond, 60)

	result, err := e.Execute(context.Background(), marketRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, result.Status)
	assert.Equal(t, "txhash123", result.TxHash)
	assert.Equal(t, 3, api.statusCalls)
	assert.Equal(t, 1, api.submitCalls)
}

func TestExecuteMarketOrderExpired(t *testing.T) {
	api := &fakeSwapAPI{
		swap:       builtSwap(),
		submitHash: "txhash123",
		steps:      []statusStep{{st: &TxStatus{Expired: true}}},
	}
	e := NewExecutor(api, &fakeWallet{addr: "W"}, orders.NewQueue())
	e.SetStatusPolling(time.Millisecond, 60)

	result, err := e.Execute(context.Background(), marketRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, result.Status)
	// expiry is terminal, polling must stop immediately
	assert.Equal(t, 1, api.statusCalls)
}

func TestExecuteMarketOrderUnknownAfterBudget(t *testing.T) {
	api := &fakeSwapAPI{
		swap:       builtSwap(),
		submitHash: "txhash123",
		steps:      []statusStep{{st: &TxStatus{}}},
	}
	e := NewExecutor(api, &fakeWallet{addr: "W"}, orders.NewQueue())
	e.SetStatusPolling(time.Millisecond, 4)

	result, err := e.Execute(context.Background(), marketRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Equal(t, "txhash123", result.TxHash)
	assert.Equal(t, 4, api.statusCalls)
}

func TestExecuteStatusErrorsAreTransient(t *testing.T) {
	api := &fakeSwapAPI{
		swap:       builtSwap(),
		submitHash: "txhash123",
		steps: []statusStep{
			{err: errors.New("rpc hiccup")},
			{st: &TxStatus{Success: true}},
		},
	}
	e := NewExecutor(api, &fakeWallet{addr: "W"}, orders.NewQueue())
	e.SetStatusPolling(time.Millisecond, 60)

	result, err := e.Execute(context.Background(), marketRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, result.Status)
	assert.Equal(t, 2, api.statusCalls)
}

func TestExecuteFillsBalanceErrorSymbol(t *testing.T) {
	api := &fakeSwapAPI{buildErr: &InsufficientBalanceError{Available: 12.5}}
	e := NewExecutor(api, &fakeWallet{addr: "W"}, orders.NewQueue())

	req := marketRequest()
	req.TradeMode = ModeSell
	req.InputType = InputToken

	_, err := e.Execute(context.Background(), req)

	var balance *InsufficientBalanceError
	require.ErrorAs(t, err, &balance)
	assert.Equal(t, 12.5, balance.Available)
	assert.Equal(t, "BONK", balance.Symbol)
	assert.Zero(t, api.submitCalls)
}

func TestExecuteSigningFailureIsFatal(t *testing.T) {
	api := &fakeSwapAPI{swap: builtSwap()}
	e := NewExecutor(api, &fakeWallet{addr: "W", signErr: errors.New("user rejected")}, orders.NewQueue())

	_, err := e.Execute(context.Background(), marketRequest())

	var signing *SigningError
	require.ErrorAs(t, err, &signing)
	// a failed signature must never reach the submit step
	assert.Zero(t, api.submitCalls)
	assert.Zero(t, api.statusCalls)
}

func TestExecuteSubmitFailureIsFatal(t *testing.T) {
	api := &fakeSwapAPI{
		swap:      builtSwap(),
		submitErr: &SubmitError{Detail: "blockhash not found"},
	}
	e := NewExecutor(api, &fakeWallet{addr: "W"}, orders.NewQueue())

	_, err := e.Execute(context.Background(), marketRequest())

	var submit *SubmitError
	require.ErrorAs(t, err, &submit)
	assert.Equal(t, 1, api.submitCalls)
	assert.Zero(t, api.statusCalls)
}

func TestExecuteMalformedTransactionPayload(t *testing.T) {
	api := &fakeSwapAPI{
		swap: &SwapTransaction{Transaction: "not base64!!!", LastValidBlockHeight: 1},
	}
	e := NewExecutor(api, &fakeWallet{addr: "W"}, orders.NewQueue())

	_, err := e.Execute(context.Background(), marketRequest())

	var signing *SigningError
	require.ErrorAs(t, err, &signing)
}

func TestExecuteContextCancelDuringPolling(t *testing.T) {
	api := &fakeSwapAPI{
		swap:       builtSwap(),
		submitHash: "txhash123",
		steps:      []statusStep{{st: &TxStatus{}}},
	}
	e := NewExecutor(api, &fakeWallet{addr: "W"}, orders.NewQueue())
	e.SetStatusPolling(time.Hour, 60)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := e.Execute(ctx, marketRequest())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, poll.ErrExhausted)
	case <-time.After(time.Second):
		t.Fatal("executor did not stop after cancellation")
	}
}
