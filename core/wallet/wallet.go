// Package wallet holds the server-side signing wallet. It plays the role
// the browser extension played in the original product: it owns the key,
// exposes a connection state, and signs opaque transaction payloads
// handed over by the trade executor.
package wallet

import (
	"context"
	"fmt"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// LocalWallet signs with an in-process keypair. Connect/Disconnect gate
// signing the way an extension's connection state would.
type LocalWallet struct {
	mu        sync.RWMutex
	key       solana.PrivateKey
	connected bool
}

func NewLocalWallet(privateKeyBase58 string) (*LocalWallet, error) {
	key, err := solana.PrivateKeyFromBase58(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("parse wallet key: %w", err)
	}
	return &LocalWallet{key: key}, nil
}

// NewRandomWallet generates a throwaway keypair.
func NewRandomWallet() (*LocalWallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	return &LocalWallet{key: key}, nil
}

func (w *LocalWallet) Connect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = true
}

func (w *LocalWallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
}

func (w *LocalWallet) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Address returns the base58 public key, or "" while disconnected.
func (w *LocalWallet) Address() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.connected {
		return ""
	}
	return w.key.PublicKey().String()
}

// SignTransaction deserializes raw transaction bytes, signs for every
// required key this wallet holds, and returns the re-serialized bytes.
// Malformed payloads and missing keys both fail here, not at submit time.
func (w *LocalWallet) SignTransaction(ctx context.Context, raw []byte) ([]byte, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.connected {
		return nil, fmt.Errorf("wallet not connected")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("deserialize transaction: %w", err)
	}

	_, err = tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	signed, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize signed transaction: %w", err)
	}

	return signed, nil
}
