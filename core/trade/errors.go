package trade

import (
	"errors"
	"fmt"
)

// ErrNoTransactionData reports a 2xx trade response without a transaction
// payload.
var ErrNoTransactionData = errors.New("trade: no transaction data in response")

// ErrTransactionExpired reports that the chain saw the transaction's last
// valid block height pass without inclusion.
var ErrTransactionExpired = errors.New("trade: transaction expired")

// InvalidInputError is a local validation failure. No network or queue
// side effects have happened when it is returned.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid trade input: " + e.Reason
}

// InsufficientBalanceError carries the available balance parsed from the
// backend's detail message.
type InsufficientBalanceError struct {
	Available float64
	Symbol    string
}

func (e *InsufficientBalanceError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("insufficient token balance, available: %g %s", e.Available, e.Symbol)
	}
	return fmt.Sprintf("insufficient token balance, available: %g", e.Available)
}

// TradeParamsError is a non-2xx response from the transaction build step.
type TradeParamsError struct {
	Detail string
}

func (e *TradeParamsError) Error() string {
	return "trade params failed: " + e.Detail
}

// SigningError wraps any wallet-side failure (user rejection, malformed
// transaction bytes). Fatal per execution, never retried.
type SigningError struct {
	Cause error
}

func (e *SigningError) Error() string {
	return "transaction signing failed: " + e.Cause.Error()
}

func (e *SigningError) Unwrap() error {
	return e.Cause
}

// SubmitError is a non-2xx response from the signed-transaction submission
// step. Fatal, never retried: a fresh signature would be required anyway.
type SubmitError struct {
	Detail string
}

func (e *SubmitError) Error() string {
	return "trade confirmation submit failed: " + e.Detail
}
