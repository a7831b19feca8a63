// Package gmgn wraps the GMGN swap router API: quote/route building,
// token account lookup, signed-transaction submission and status queries.
package gmgn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// WSOLMint is the wrapped SOL mint used as the counter leg of every swap.
const WSOLMint = "So11111111111111111111111111111111111111112"

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

type SwapRouteParams struct {
	TokenInAddress  string
	TokenOutAddress string
	InAmount        string
	FromAddress     string
	Slippage        string
}

type RawTx struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight int64  `json:"lastValidBlockHeight"`
}

// GetSwapRoute asks the router for an unsigned swap transaction.
func (c *Client) GetSwapRoute(ctx context.Context, p SwapRouteParams) (*RawTx, error) {
	q := url.Values{}
	q.Set("token_in_address", p.TokenInAddress)
	q.Set("token_out_address", p.TokenOutAddress)
	q.Set("in_amount", p.InAmount)
	q.Set("from_address", p.FromAddress)
	q.Set("slippage", p.Slippage)

	reqURL := c.host + "/defi/router/v1/sol/tx/get_swap_route?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get trade quote: %s", string(body))
	}

	var out struct {
		Data struct {
			RawTx *RawTx `json:"raw_tx"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode swap route: %w", err)
	}
	if out.Data.RawTx == nil || out.Data.RawTx.SwapTransaction == "" {
		return nil, fmt.Errorf("no swap transaction in response")
	}

	return out.Data.RawTx, nil
}

type TokenAccount struct {
	Balance  string `json:"balance"`
	Decimals int    `json:"decimals"`
}

// GetTokenAccount fetches balance and decimals for a wallet's token
// account. A zero-balance or missing account comes back as an error.
func (c *Client) GetTokenAccount(ctx context.Context, tokenAddress, walletAddress string) (*TokenAccount, error) {
	reqURL := fmt.Sprintf("%s/defi/token/sol/%s/account/%s", c.host, tokenAddress, walletAddress)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get token account info: %s", resp.Status)
	}

	var out struct {
		Data *TokenAccount `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Data == nil || out.Data.Balance == "" {
		return nil, fmt.Errorf("token account not found or zero balance")
	}
	if out.Data.Decimals == 0 {
		out.Data.Decimals = 9
	}

	return out.Data, nil
}

// RawBalance parses the account's raw integer balance.
func (a *TokenAccount) RawBalance() (int64, error) {
	return strconv.ParseInt(a.Balance, 10, 64)
}

// SubmitSignedTransaction forwards the signed blob and returns the hash.
func (c *Client) SubmitSignedTransaction(ctx context.Context, signedTx string) (string, error) {
	bydata, err := json.Marshal(map[string]string{"signed_tx": signedTx})
	if err != nil {
		return "", err
	}

	reqURL := c.host + "/defi/router/v1/sol/tx/submit_signed_transaction"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(bydata))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to submit transaction: %s", resp.Status)
	}

	var out struct {
		Data struct {
			Hash string `json:"hash"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Data.Hash == "" {
		return "", fmt.Errorf("no transaction hash returned")
	}

	return out.Data.Hash, nil
}

type TxStatusData struct {
	Success bool `json:"success"`
	Expired bool `json:"expired"`
}

// GetTransactionStatus queries confirmation status by hash and last valid
// block height.
func (c *Client) GetTransactionStatus(ctx context.Context, hash string, lastValidHeight int64) (*TxStatusData, error) {
	q := url.Values{}
	q.Set("hash", hash)
	q.Set("last_valid_height", strconv.FormatInt(lastValidHeight, 10))

	reqURL := c.host + "/defi/router/v1/sol/tx/get_transaction_status?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get transaction status: %s", resp.Status)
	}

	var out struct {
		Data TxStatusData `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}
