package solana

import (
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
)

// ErrNoWallet means no signing key was configured.
var ErrNoWallet = errors.New("SOLANA_PRIVATE_KEY_BASE58 not set")

// ParsePrivateKey decodes a base58 ed25519 keypair as exported by Phantom or solana-keygen.
func ParsePrivateKey(b58 string) (solana.PrivateKey, error) {
	if b58 == "" {
		return nil, ErrNoWallet
	}
	key, err := solana.PrivateKeyFromBase58(b58)
	if err != nil {
		return nil, fmt.Errorf("decode wallet key: %w", err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("decode wallet key: want 64 bytes, got %d", len(key))
	}
	return key, nil
}
