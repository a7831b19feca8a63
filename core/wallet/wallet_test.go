package wallet

import (
	"context"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalWalletRejectsBadKey(t *testing.T) {
	_, err := NewLocalWallet("not-a-base58-key")
	require.Error(t, err)
}

func TestConnectionStateGatesAddress(t *testing.T) {
	w, err := NewRandomWallet()
	require.NoError(t, err)

	assert.False(t, w.IsConnected())
	assert.Empty(t, w.Address())

	w.Connect()
	assert.True(t, w.IsConnected())
	assert.NotEmpty(t, w.Address())

	w.Disconnect()
	assert.Empty(t, w.Address())
}

func TestSignTransactionRequiresConnection(t *testing.T) {
	w, err := NewRandomWallet()
	require.NoError(t, err)

	_, err = w.SignTransaction(context.Background(), []byte{0})
	require.Error(t, err)
}

func TestSignTransactionRejectsGarbage(t *testing.T) {
	w, err := NewRandomWallet()
	require.NoError(t, err)
	w.Connect()

	_, err = w.SignTransaction(context.Background(), []byte("definitely not a transaction"))
	require.Error(t, err)
}

func TestSignTransactionRoundTrip(t *testing.T) {
	w, err := NewRandomWallet()
	require.NoError(t, err)
	w.Connect()

	payer := solana.MustPublicKeyFromBase58(w.Address())
	recipient := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1_000_000, payer, recipient).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	signed, err := w.SignTransaction(context.Background(), raw)
	require.NoError(t, err)

	signedTx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(signed))
	require.NoError(t, err)
	require.Len(t, signedTx.Signatures, 1)
	require.NoError(t, signedTx.VerifySignatures())
}

func TestSignTransactionHonorsContext(t *testing.T) {
	w, err := NewRandomWallet()
	require.NoError(t, err)
	w.Connect()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = w.SignTransaction(ctx, []byte{0})
	require.ErrorIs(t, err, context.Canceled)
}
