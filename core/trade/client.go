package trade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

var availableRe = regexp.MustCompile(`Available: ([0-9.]+)`)

// Client talks to a swap backend implementing the /api/trade,
// /api/confirm_trade and /api/transaction_status contract.
type Client struct {
	host       string
	httpClient *http.Client
}

func NewClient(host string) *Client {
	return &Client{
		host:       host,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type SwapRequest struct {
	TokenAddress  string  `json:"token_address"`
	Amount        float64 `json:"amount"`
	Slippage      float64 `json:"slippage"`
	WalletAddress string  `json:"wallet_address"`
	TradeMode     string  `json:"trade_mode"`
}

// SwapTransaction is the unsigned transaction payload built by the
// backend. The transaction blob is opaque here; only the wallet looks
// inside it.
type SwapTransaction struct {
	Transaction          string `json:"transaction"`
	LastValidBlockHeight int64  `json:"lastValidBlockHeight"`
}

type TxStatus struct {
	Success bool `json:"success"`
	Expired bool `json:"expired"`
}

// BuildSwap requests an unsigned swap transaction. Backend errors carrying
// an "Insufficient token balance. Available: <n>" detail come back as
// *InsufficientBalanceError, any other non-2xx as *TradeParamsError.
func (c *Client) BuildSwap(ctx context.Context, in SwapRequest) (*SwapTransaction, error) {
	bydata, err := json.Marshal(&in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/trade", bytes.NewReader(bydata))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trade request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseTradeError(body)
	}

	var out SwapTransaction
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode trade response: %w", err)
	}
	if out.Transaction == "" {
		return nil, ErrNoTransactionData
	}

	return &out, nil
}

func parseTradeError(body []byte) error {
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err != nil || detail.Detail == "" {
		return &TradeParamsError{Detail: string(body)}
	}

	if m := availableRe.FindStringSubmatch(detail.Detail); m != nil {
		if avail, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &InsufficientBalanceError{Available: avail}
		}
	}

	return &TradeParamsError{Detail: detail.Detail}
}

// SubmitSigned posts the signed transaction and returns the tx hash.
func (c *Client) SubmitSigned(ctx context.Context, signedTx string) (string, error) {
	bydata, err := json.Marshal(map[string]string{"signed_transaction": signedTx})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/confirm_trade", bytes.NewReader(bydata))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &SubmitError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SubmitError{Detail: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &SubmitError{Detail: string(body)}
	}

	var out struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &SubmitError{Detail: err.Error()}
	}
	if out.TxHash == "" {
		return "", &SubmitError{Detail: "no transaction hash returned"}
	}

	return out.TxHash, nil
}

// TransactionStatus queries confirmation status for one submitted
// transaction. Callers treat any error here as a transient condition.
func (c *Client) TransactionStatus(ctx context.Context, rec ConfirmationRecord) (*TxStatus, error) {
	q := url.Values{}
	q.Set("hash", rec.TxHash)
	q.Set("last_valid_height", strconv.FormatInt(rec.LastValidHeight, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/transaction_status?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status query returned %s", resp.Status)
	}

	var out struct {
		Data TxStatus `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}
