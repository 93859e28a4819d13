package solana

import (
	"context"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// MintSize is the span of an SPL mint.
const MintSize = 82

// Token represents a Solana token mint
type Token struct {
	token.Mint
	Address solana.PublicKey
}

// TokenLayout provides methods for decoding token data
type TokenLayout struct {
}

func (l *TokenLayout) Decode(data []byte) (*Token, error) {
	mint := token.Mint{}
	if err := mint.UnmarshalWithDecoder(binary.NewBinDecoder(data)); err != nil {
		return nil, err
	}
	return &Token{Mint: mint}, nil
}

// GetToken fetches and decodes the mint at address.
func GetToken(ctx context.Context, transport Transport, address solana.PublicKey) (*Token, error) {
	data, err := transport.GetAccountData(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get mint %s: %w", address, err)
	}
	mint, err := new(TokenLayout).Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode mint %s: %w", address, err)
	}
	mint.Address = address
	return mint, nil
}
