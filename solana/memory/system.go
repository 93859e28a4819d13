package memory

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

func processSystem(state *State, accounts []*solana.AccountMeta, data []byte) error {
	inst, err := system.DecodeInstruction(accounts, data)
	if err != nil {
		return fmt.Errorf("decode system instruction: %w", err)
	}

	switch impl := inst.Impl.(type) {
	case *system.CreateAccount:
		if len(accounts) < 2 {
			return fmt.Errorf("create account: expected 2 accounts, got %d", len(accounts))
		}
		funder, created := accounts[0].PublicKey, accounts[1].PublicKey
		if err = state.RequireSigner(funder); err != nil {
			return err
		}
		if err = state.RequireSigner(created); err != nil {
			return err
		}
		if _, ok := state.Account(created); ok {
			return fmt.Errorf("create account %s: %w", created, ErrAccountExists)
		}
		if need := rentExemption(*impl.Space); *impl.Lamports < need {
			return fmt.Errorf("create account %s: insufficient funds for rent: %d < %d", created, *impl.Lamports, need)
		}
		state.SetAccount(created, &Account{
			Lamports: *impl.Lamports,
			Owner:    *impl.Owner,
			Data:     make([]byte, *impl.Space),
		})
		return nil
	default:
		return fmt.Errorf("unsupported system instruction %T", inst.Impl)
	}
}
