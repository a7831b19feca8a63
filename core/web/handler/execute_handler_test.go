package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetradeapp/wave_trader/core/market"
	"github.com/wavetradeapp/wave_trader/core/orders"
	"github.com/wavetradeapp/wave_trader/core/strategy"
	"github.com/wavetradeapp/wave_trader/core/trade"
	"github.com/wavetradeapp/wave_trader/core/wallet"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init(filepath.Join(os.TempDir(), "wave_trader_test.log"))
	os.Exit(m.Run())
}

type fakeSwapAPI struct {
	buildErr   error
	submitHash string
	status     trade.TxStatus
}

func (f *fakeSwapAPI) BuildSwap(ctx context.Context, in trade.SwapRequest) (*trade.SwapTransaction, error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return &trade.SwapTransaction{
		Transaction:          base64.StdEncoding.EncodeToString([]byte("unsigned-tx")),
		LastValidBlockHeight: 5000,
	}, nil
}

func (f *fakeSwapAPI) SubmitSigned(ctx context.Context, signedTx string) (string, error) {
	return f.submitHash, nil
}

func (f *fakeSwapAPI) TransactionStatus(ctx context.Context, rec trade.ConfirmationRecord) (*trade.TxStatus, error) {
	st := f.status
	return &st, nil
}

type fakeAnalyzeAPI struct {
	text string
	err  error
}

func (f *fakeAnalyzeAPI) Analyze(ctx context.Context, sess *strategy.Session) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func dexScreenerStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"pairs": []map[string]any{{
				"dexId":     "raydium",
				"baseToken": map[string]string{"name": "Bonk", "symbol": "BONK"},
				"priceUsd":  "0.0000201",
				"volume":    map[string]float64{"h24": 90000},
			}},
		})
	}))
}

type testEnv struct {
	router *gin.Engine
	queue  *orders.Queue
	api    *fakeSwapAPI
	ai     *fakeAnalyzeAPI
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dex := dexScreenerStub(t)
	t.Cleanup(dex.Close)

	signingWallet, err := wallet.NewRandomWallet()
	require.NoError(t, err)
	signingWallet.Connect()

	queue := orders.NewQueue()
	api := &fakeSwapAPI{submitHash: "txhash123", status: trade.TxStatus{Success: true}}
	executor := trade.NewExecutor(api, signingWallet, queue)
	executor.SetStatusPolling(time.Millisecond, 10)

	ai := &fakeAnalyzeAPI{text: "scale in below 0.002"}
	requester := strategy.NewRequester(ai)
	requester.SetTiming(100*time.Millisecond, 5*time.Millisecond, 5)

	Init(Deps{
		Market:    market.NewClient(dex.URL, time.Second),
		Executor:  executor,
		Requester: requester,
		Queue:     queue,
		Wallet:    signingWallet,
	})

	router := gin.New()
	router.POST("/api/execute_trade", ExecuteTradeHandler)
	router.POST("/api/strategy", StrategyHandler)
	router.GET("/api/orders", ListOrdersHandler)
	router.DELETE("/api/orders/:id", CancelOrderHandler)
	router.GET("/api/wallet", WalletHandler)
	router.POST("/api/wallet/connect", WalletConnectHandler)
	router.POST("/api/wallet/disconnect", WalletDisconnectHandler)

	return &testEnv{router: router, queue: queue, api: api, ai: ai}
}

func (e *testEnv) do(t *testing.T, method, path string, payload any) (*httptest.ResponseRecorder, *Response) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, &resp
}

func TestExecuteTradeLimitOrderLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/execute_trade", map[string]any{
		"token_address": "TOKEN",
		"amount":        0.5,
		"slippage":      10,
		"trade_mode":    "buy",
		"input_type":    "sol",
		"order_type":    "limit",
		"limit_price":   0.0021,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "limit order added to the pending list", resp.Message)

	queued := env.queue.List()
	require.Len(t, queued, 1)
	assert.Equal(t, "BONK", queued[0].TokenSymbol)

	w, resp = env.do(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)

	w, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", queued[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, env.queue.Len())
}

func TestExecuteTradeMarketOrderConfirmed(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/execute_trade", map[string]any{
		"token_address": "TOKEN",
		"amount":        0.5,
		"slippage":      10,
		"trade_mode":    "buy",
		"input_type":    "sol",
		"order_type":    "market",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trade confirmed", resp.Message)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "confirmed", data["status"])
	assert.Equal(t, "txhash123", data["tx_hash"])
}

func TestExecuteTradeRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/execute_trade", map[string]any{
		"token_address": "TOKEN",
		"amount":        0,
		"slippage":      10,
		"trade_mode":    "buy",
		"order_type":    "market",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount must be positive", resp.Message)
}

func TestExecuteTradeReportsInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	env.api.buildErr = &trade.InsufficientBalanceError{Available: 12.5}

	w, resp := env.do(t, http.MethodPost, "/api/execute_trade", map[string]any{
		"token_address": "TOKEN",
		"amount":        100,
		"slippage":      10,
		"trade_mode":    "sell",
		"input_type":    "token",
		"order_type":    "market",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient balance. Available: 12.5 BONK", resp.Message)
}

func TestStrategyHandlerSuccess(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/strategy", map[string]any{
		"token_address": "TOKEN",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "scale in below 0.002", data["strategy"])
}

func TestStrategyHandlerTerminalError(t *testing.T) {
	env := newTestEnv(t)
	env.ai.err = &strategy.GenerationError{Detail: "model overloaded"}

	w, _ := env.do(t, http.MethodPost, "/api/strategy", map[string]any{
		"token_address": "TOKEN",
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCancelOrderRejectsBadID(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodDelete, "/api/orders/abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletConnectionEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/api/wallet", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["connected"])
	assert.NotEmpty(t, data["address"])

	_, resp = env.do(t, http.MethodPost, "/api/wallet/disconnect", nil)
	data = resp.Data.(map[string]any)
	assert.Equal(t, false, data["connected"])
	assert.Empty(t, data["address"])

	_, resp = env.do(t, http.MethodPost, "/api/wallet/connect", nil)
	data = resp.Data.(map[string]any)
	assert.Equal(t, true, data["connected"])
}
