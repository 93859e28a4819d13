package solana

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

func TransferCheckedInstruction(
	source solana.PublicKey,
	destination solana.PublicKey,
	mint solana.PublicKey,
	owner solana.PublicKey,
	decimals uint8,
	amount uint64,
) solana.Instruction {
	return token.NewTransferCheckedInstruction(
		amount,
		decimals,
		source,
		mint,
		destination,
		owner,
		[]solana.PublicKey{},
	).Build()
}

// ApproveDelegate schedules a fresh one-shot delegate allowed to move exactly
// amount out of source, and returns it. The delegate must sign whatever
// instruction spends the allowance.
func ApproveDelegate(tx *Transaction, source, owner solana.PublicKey, amount uint64) *solana.Wallet {
	delegate := solana.NewWallet()
	tx.Add(token.NewApproveInstruction(
		amount,
		source,
		delegate.PublicKey(),
		owner,
		[]solana.PublicKey{},
	).Build())
	tx.AddSigner(delegate)
	return delegate
}
