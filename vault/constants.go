package vault

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ProgramID is the deployed superposition vault program.
var ProgramID = solana.MustPublicKeyFromBase58("DiyQRLEe3AgVV6TV3bGTYWZaS5TN9baFt9tXFSr3zS7e")

const (
	// VaultSeed prefixes every vault address derivation.
	VaultSeed = "vault"

	// AccountKeyVault is the Anchor account name of a vault record.
	AccountKeyVault = "SaberVault"

	// TokenDecimals of the principal and yield mints the program creates.
	TokenDecimals uint8 = 6
)

// Anchor instruction names.
const (
	InstructionCreateVault = "create_vault"
	InstructionMintTo      = "mint_to"
	InstructionRedeem      = "redeem"
)

const (
	VaultAccountSize = (8 + // discriminator
		8 + // start_time
		8 + // end_time
		32 + // mint_y
		32 + // mint_p
		32 + // mint_u
		32) // token_u
)

var (
	ErrVaultNotFound  = errors.New("vault not found")
	ErrInvalidAmount  = errors.New("amount must be greater than 0")
	ErrInvalidTerm    = errors.New("vault end must be after its start")
	ErrInvalidAccount = errors.New("invalid vault account data")
	ErrUnderlyingMint = errors.New("vault underlying mint mismatch")
)
