package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wavetradeapp/wave_trader/core/gmgn"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

type TradeParams struct {
	TokenAddress  string  `json:"token_address" binding:"required"`
	Amount        float64 `json:"amount"`
	Slippage      float64 `json:"slippage"`
	WalletAddress string  `json:"wallet_address"`
	TradeMode     string  `json:"trade_mode"`
	InputType     string  `json:"input_type"`
}

// TradeHandler builds an unsigned swap transaction via the GMGN router.
// Sell orders are balance-checked first so the caller gets a parseable
// insufficient-balance detail instead of a router rejection.
func TradeHandler(c *gin.Context) {
	var p TradeParams
	if err := c.ShouldBind(&p); err != nil {
		Detail(c, http.StatusBadRequest, "invalid input parameters")
		return
	}
	if p.WalletAddress == "" {
		Detail(c, http.StatusBadRequest, "Wallet address is required")
		return
	}
	if p.TradeMode == "" {
		p.TradeMode = "buy"
	}

	var amountTokens int64
	if p.TradeMode == "sell" {
		account, err := gmgnClient.GetTokenAccount(c.Request.Context(), p.TokenAddress, p.WalletAddress)
		if err != nil {
			Detail(c, http.StatusBadRequest, err.Error())
			return
		}

		scale := math.Pow10(account.Decimals)
		amountTokens = int64(p.Amount * scale)

		balance, err := account.RawBalance()
		if err != nil {
			Detail(c, http.StatusBadRequest, "Failed to get token account info")
			return
		}
		if balance < amountTokens {
			Detail(c, http.StatusBadRequest, fmt.Sprintf("Insufficient token balance. Available: %g", float64(balance)/scale))
			return
		}
	} else {
		// buy spends SOL, amounts are lamports
		amountTokens = int64(p.Amount * 1e9)
	}

	params := gmgn.SwapRouteParams{
		TokenInAddress:  gmgn.WSOLMint,
		TokenOutAddress: p.TokenAddress,
		InAmount:        strconv.FormatInt(amountTokens, 10),
		FromAddress:     p.WalletAddress,
		Slippage:        strconv.FormatFloat(p.Slippage, 'f', -1, 64),
	}
	if p.TradeMode == "sell" {
		params.TokenInAddress = p.TokenAddress
		params.TokenOutAddress = gmgn.WSOLMint
	}

	rawTx, err := gmgnClient.GetSwapRoute(c.Request.Context(), params)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Token": p.TokenAddress}).Error("TradeHandler get swap route failed")
		Detail(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":               "success",
		"transaction":          rawTx.SwapTransaction,
		"lastValidBlockHeight": rawTx.LastValidBlockHeight,
	})
}

type SignedTransaction struct {
	SignedTransaction string `json:"signed_transaction" binding:"required"`
}

// ConfirmTradeHandler submits the signed transaction for inclusion.
func ConfirmTradeHandler(c *gin.Context) {
	var p SignedTransaction
	if err := c.ShouldBind(&p); err != nil {
		Detail(c, http.StatusBadRequest, "invalid input parameters")
		return
	}

	txHash, err := gmgnClient.SubmitSignedTransaction(c.Request.Context(), p.SignedTransaction)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("ConfirmTradeHandler submit failed")
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "tx_hash": txHash})
}

// TransactionStatusHandler proxies the router's confirmation status.
func TransactionStatusHandler(c *gin.Context) {
	hash := c.Query("hash")
	lastValidHeight, err := strconv.ParseInt(c.Query("last_valid_height"), 10, 64)
	if hash == "" || err != nil {
		Detail(c, http.StatusBadRequest, "invalid input parameters")
		return
	}

	status, err := gmgnClient.GetTransactionStatus(c.Request.Context(), hash, lastValidHeight)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "TxHash": hash}).Error("TransactionStatusHandler query failed")
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}
