package swap

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Fees is the fee schedule of a pool. A zero denominator disables a fee.
type Fees struct {
	TradeFeeNumerator           uint64
	TradeFeeDenominator         uint64
	OwnerTradeFeeNumerator      uint64
	OwnerTradeFeeDenominator    uint64
	OwnerWithdrawFeeNumerator   uint64
	OwnerWithdrawFeeDenominator uint64
	HostFeeNumerator            uint64
	HostFeeDenominator          uint64
}

// PoolState is the token-swap account of a pool.
type PoolState struct {
	Version        uint8
	IsInitialized  bool
	BumpSeed       uint8
	TokenProgramID solana.PublicKey

	// reserves
	TokenAccountA solana.PublicKey
	TokenAccountB solana.PublicKey

	PoolMint   solana.PublicKey
	MintA      solana.PublicKey
	MintB      solana.PublicKey
	FeeAccount solana.PublicKey

	Fees            Fees
	CurveType       CurveType
	CurveParameters [32]byte
}

func (p *PoolState) Unmarshal(data []byte) error {
	if len(data) < PoolAccountSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidPool, len(data))
	}
	if err := bin.NewBorshDecoder(data[:PoolAccountSize]).Decode(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPool, err)
	}
	if !p.IsInitialized {
		return fmt.Errorf("%w: not initialized", ErrInvalidPool)
	}
	return nil
}

func (p *PoolState) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(*p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reserves returns the pool's reserve for mint and the opposite reserve, or
// ErrMintPoolMismatch when mint is neither side of the pool.
func (p *PoolState) Reserves(mint solana.PublicKey) (from, to, toMint solana.PublicKey, err error) {
	switch {
	case mint.Equals(p.MintA):
		return p.TokenAccountA, p.TokenAccountB, p.MintB, nil
	case mint.Equals(p.MintB):
		return p.TokenAccountB, p.TokenAccountA, p.MintA, nil
	default:
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, ErrMintPoolMismatch
	}
}
