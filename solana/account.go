package solana

import (
	"bytes"
	"context"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// TokenAccountSize is the span of an SPL token account.
const TokenAccountSize = 165

type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

type Account struct {
	Address solana.PublicKey
	// Mint associated with the account
	Mint solana.PublicKey

	// Owner of the account
	Owner solana.PublicKey

	// Number of tokens the account holds
	Amount uint64

	// Authority that can transfer tokens from the account
	Delegate *solana.PublicKey

	// Number of tokens the delegate is authorized to transfer
	DelegatedAmount uint64

	IsInitialized bool
	IsFrozen      bool
}

type AccountLayout struct {
}

func (l *AccountLayout) Decode(data []byte) (*Account, error) {
	raw := new(token.Account)
	if err := raw.UnmarshalWithDecoder(binary.NewBinDecoder(data)); err != nil {
		return nil, err
	}
	return &Account{
		Mint:            raw.Mint,
		Owner:           raw.Owner,
		Amount:          raw.Amount,
		Delegate:        raw.Delegate,
		DelegatedAmount: raw.DelegatedAmount,
		IsInitialized:   AccountState(raw.State) != AccountStateUninitialized,
		IsFrozen:        AccountState(raw.State) == AccountStateFrozen,
	}, nil
}

// GetTokenAccount fetches and decodes the token account at address.
func GetTokenAccount(ctx context.Context, transport Transport, address solana.PublicKey) (*Account, error) {
	data, err := transport.GetAccountData(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get token account %s: %w", address, err)
	}
	account, err := new(AccountLayout).Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode token account %s: %w", address, err)
	}
	account.Address = address
	return account, nil
}

// SelectAccount picks the account with the lexicographically smallest address
// so the choice never depends on the order a backend returned them in.
func SelectAccount(accounts []*Account) *Account {
	var selected *Account
	for _, account := range accounts {
		if account == nil {
			continue
		}
		if selected == nil || bytes.Compare(account.Address[:], selected.Address[:]) < 0 {
			selected = account
		}
	}
	return selected
}
