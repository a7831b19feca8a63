package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"github.com/wavetradeapp/wave_trader/core/db"
)

// TradeRecord is the history row written for every market trade that
// reaches a terminal state. Pending limit orders are deliberately not
// persisted; only executed trades are.
type TradeRecord struct {
	bun.BaseModel `bun:"table:wave_trade_record,alias:wtr"`

	TxHash        string    `bun:"tx_hash,pk,notnull"`
	TokenAddress  string    `bun:"token_address,notnull"`
	TokenSymbol   string    `bun:"token_symbol"`
	WalletAddress string    `bun:"wallet_address"`
	TradeMode     string    `bun:"trade_mode"`
	Amount        float64   `bun:"amount"`
	Slippage      float64   `bun:"slippage"`
	Status        string    `bun:"status"`
	CreateAt      time.Time `bun:"create_at,nullzero"`
}

// InsertTradeRecord is a no-op when postgres is not configured.
func InsertTradeRecord(ctx context.Context, rec *TradeRecord) error {
	if !db.Enabled() {
		return nil
	}

	if rec.CreateAt.IsZero() {
		rec.CreateAt = time.Now()
	}

	_, err := db.GetDB().NewInsert().Model(rec).On("CONFLICT (tx_hash) DO UPDATE").Set("status = EXCLUDED.status").Exec(ctx)
	return err
}
