package swap

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	// ProgramID is the SPL token-swap program.
	ProgramID = solana.MustPublicKeyFromBase58("SwaPpA9LAaLfeLi3a68M4DjnLqgtticKg6CnyNwgAC8")

	// FeeOwner must own the fee account of every pool the deployed token-swap
	// program initializes.
	FeeOwner = solana.MustPublicKeyFromBase58("HfoTxFR1Tm6kGmWgYWD6J7YHVy1UwqSULUGVLXkJqaKN")
)

const (
	// LPTokenDecimals of every pool's LP mint.
	LPTokenDecimals uint8 = 2

	// DefaultBootstrapAmount is moved from the creator into each reserve on
	// pool creation; a constant product pool cannot start empty.
	DefaultBootstrapAmount uint64 = 1_000_000

	// CurrentVersion of the pool state layout.
	CurrentVersion uint8 = 1
)

type CurveType uint8

const (
	CurveTypeConstantProduct CurveType = 0
	CurveTypeConstantPrice   CurveType = 1
	CurveTypeOffset          CurveType = 2
)

type InstructionType uint8

const (
	InstructionTypeInitialize InstructionType = iota
	InstructionTypeSwap
	InstructionTypeDepositAllTokenTypes
	InstructionTypeWithdrawAllTokenTypes
	InstructionTypeDepositSingleTokenTypeExactAmountIn
	InstructionTypeWithdrawSingleTokenTypeExactAmountOut
)

const (
	PoolAccountSize = (1 + // version
		1 + // is_initialized
		1 + // bump_seed
		32 + // token_program_id
		32 + // token_a
		32 + // token_b
		32 + // pool_mint
		32 + // token_a_mint
		32 + // token_b_mint
		32 + // pool_fee_account
		FeesSize +
		1 + // curve_type
		32) // curve_parameters

	FeesSize = 8 * 8
)

// DefaultFees is the schedule every pool is created with.
var DefaultFees = Fees{
	TradeFeeNumerator:           25,
	TradeFeeDenominator:         10000,
	OwnerTradeFeeNumerator:      5,
	OwnerTradeFeeDenominator:    10000,
	OwnerWithdrawFeeNumerator:   0,
	OwnerWithdrawFeeDenominator: 0,
	HostFeeNumerator:            20,
	HostFeeDenominator:          100,
}

var (
	ErrMintPoolMismatch      = errors.New("the provided mint and liquidity pool don't match")
	ErrInsufficientBootstrap = errors.New("insufficient balance to fund the pool reserve")
	ErrRepeatedMint          = errors.New("pool mints must differ")
	ErrPoolNotFound          = errors.New("liquidity pool not found")
	ErrInvalidPool           = errors.New("invalid liquidity pool account data")
	ErrEmptyReserve          = errors.New("reserve balance is zero")
	ErrInvalidAmount         = errors.New("amount must be greater than 0")
)
