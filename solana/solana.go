package solana

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// PacketDataSize is the largest serialized transaction a cluster accepts.
const PacketDataSize = 1232

// Transport is everything the orchestrators need from the network.
// Implementations must be safe to call sequentially from one goroutine;
// no operation in this module issues concurrent calls.
type Transport interface {
	// Submit signs the instructions with payer and signers and sends them as one
	// atomic transaction. payer pays the fees and is always the first signer.
	Submit(ctx context.Context, payer *solana.Wallet, instructions []solana.Instruction, signers ...*solana.Wallet) (solana.Signature, error)

	// FindTokenAccounts returns the token accounts owned by owner for mint, in
	// whatever order the backend produces them.
	FindTokenAccounts(ctx context.Context, owner, mint solana.PublicKey) ([]*Account, error)

	// GetAccountData returns the raw data of address or ErrAccountNotFound.
	GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)

	// MinimumBalanceForRentExemption returns the lamports needed for an account
	// of size bytes to be rent exempt.
	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
}
