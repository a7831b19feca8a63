// Package trade implements the order lifecycle: validation, the pending
// limit-order branch, transaction build, wallet signing, submission and
// confirmation polling against the swap backend API.
package trade

const (
	ModeBuy  = "buy"
	ModeSell = "sell"

	OrderMarket = "market"
	OrderLimit  = "limit"

	InputSOL   = "sol"
	InputToken = "token"
)

// Request describes one trade as entered by the user. InputType only
// applies to buys; LimitPrice only applies to limit orders.
type Request struct {
	TokenAddress string  `json:"token_address"`
	TokenSymbol  string  `json:"token_symbol"`
	Amount       float64 `json:"amount"`
	Slippage     float64 `json:"slippage"`
	TradeMode    string  `json:"trade_mode"`
	InputType    string  `json:"input_type"`
	OrderType    string  `json:"order_type"`
	LimitPrice   float64 `json:"limit_price"`
}

// ConfirmationRecord identifies one submitted transaction for status
// polling. Immutable once created.
type ConfirmationRecord struct {
	TxHash          string
	LastValidHeight int64
}

type Status string

const (
	StatusQueued    Status = "queued"
	StatusConfirmed Status = "confirmed"
	StatusExpired   Status = "expired"
	// StatusUnknown means the attempt budget ran out before the chain
	// reported success or expiry. The trade may still have landed.
	StatusUnknown Status = "unknown"
)

type Result struct {
	Status  Status `json:"status"`
	TxHash  string `json:"tx_hash,omitempty"`
	OrderID int64  `json:"order_id,omitempty"`
}
