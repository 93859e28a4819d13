package memory

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOwnerMismatch     = errors.New("owner does not match")
	ErrMintMismatch      = errors.New("account not associated with this mint")
	ErrMintDecimals      = errors.New("mint decimals mismatch")
	ErrAlreadyInUse      = errors.New("account or token already in use")
	ErrUninitialized     = errors.New("account not initialized")
)

func processToken(state *State, accounts []*solana.AccountMeta, data []byte) error {
	inst, err := token.DecodeInstruction(accounts, data)
	if err != nil {
		return fmt.Errorf("decode token instruction: %w", err)
	}

	key := func(i int) (solana.PublicKey, error) {
		if i >= len(accounts) {
			return solana.PublicKey{}, fmt.Errorf("token instruction %T: missing account %d", inst.Impl, i)
		}
		return accounts[i].PublicKey, nil
	}

	switch impl := inst.Impl.(type) {
	case *token.InitializeMint:
		mint, err := key(0)
		if err != nil {
			return err
		}
		return initializeMint(state, mint, *impl.MintAuthority, impl.FreezeAuthority, *impl.Decimals)
	case *token.InitializeAccount:
		keys, err := keysOf(key, 3)
		if err != nil {
			return err
		}
		return initializeAccount(state, keys[0], keys[1], keys[2])
	case *token.Transfer:
		keys, err := keysOf(key, 3)
		if err != nil {
			return err
		}
		return transfer(state, keys[0], keys[1], keys[2], nil, *impl.Amount)
	case *token.TransferChecked:
		keys, err := keysOf(key, 4)
		if err != nil {
			return err
		}
		mint, err := state.Mint(keys[1])
		if err != nil {
			return err
		}
		if mint.Decimals != *impl.Decimals {
			return ErrMintDecimals
		}
		return transfer(state, keys[0], keys[2], keys[3], &keys[1], *impl.Amount)
	case *token.Approve:
		keys, err := keysOf(key, 3)
		if err != nil {
			return err
		}
		return approve(state, keys[0], keys[1], keys[2], *impl.Amount)
	case *token.MintTo:
		keys, err := keysOf(key, 3)
		if err != nil {
			return err
		}
		return mintTo(state, keys[0], keys[1], keys[2], *impl.Amount)
	case *token.Burn:
		keys, err := keysOf(key, 3)
		if err != nil {
			return err
		}
		return burn(state, keys[0], keys[1], keys[2], *impl.Amount)
	default:
		return fmt.Errorf("unsupported token instruction %T", inst.Impl)
	}
}

func keysOf(key func(int) (solana.PublicKey, error), n int) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, n)
	for i := range keys {
		k, err := key(i)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}

func initializeMint(state *State, address, authority solana.PublicKey, freeze *solana.PublicKey, decimals uint8) error {
	entry, ok := state.Account(address)
	if !ok || !entry.Owner.Equals(solana.TokenProgramID) {
		return fmt.Errorf("initialize mint %s: %w", address, ErrInvalidOwner)
	}
	if current, err := state.Mint(address); err == nil && current.IsInitialized {
		return fmt.Errorf("initialize mint %s: %w", address, ErrAlreadyInUse)
	} else if err != nil && !errors.Is(err, ErrInvalidData) && len(entry.Data) != 0 {
		return err
	}
	return state.PutMint(address, &token.Mint{
		MintAuthority:   &authority,
		Decimals:        decimals,
		IsInitialized:   true,
		FreezeAuthority: freeze,
	})
}

func initializeAccount(state *State, address, mintAddress, owner solana.PublicKey) error {
	entry, ok := state.Account(address)
	if !ok || !entry.Owner.Equals(solana.TokenProgramID) {
		return fmt.Errorf("initialize account %s: %w", address, ErrInvalidOwner)
	}
	if current, err := state.TokenAccount(address); err != nil {
		return err
	} else if current.State != token.Uninitialized {
		return fmt.Errorf("initialize account %s: %w", address, ErrAlreadyInUse)
	}
	mint, err := state.Mint(mintAddress)
	if err != nil {
		return err
	}
	if !mint.IsInitialized {
		return fmt.Errorf("mint %s: %w", mintAddress, ErrUninitialized)
	}
	return state.PutTokenAccount(address, &token.Account{
		Mint:  mintAddress,
		Owner: owner,
		State: token.Initialized,
	})
}

// authorize checks that authority may move amount out of account, consuming
// delegated allowance when authority is the delegate.
func authorize(state *State, account *token.Account, authority solana.PublicKey, amount uint64) error {
	if err := state.RequireSigner(authority); err != nil {
		return err
	}
	if account.Owner.Equals(authority) {
		return nil
	}
	if account.Delegate == nil || !account.Delegate.Equals(authority) {
		return ErrOwnerMismatch
	}
	if account.DelegatedAmount < amount {
		return ErrInsufficientFunds
	}
	account.DelegatedAmount -= amount
	if account.DelegatedAmount == 0 {
		account.Delegate = nil
	}
	return nil
}

func transfer(state *State, sourceAddress, destinationAddress, authority solana.PublicKey, mint *solana.PublicKey, amount uint64) error {
	source, err := state.TokenAccount(sourceAddress)
	if err != nil {
		return err
	}
	destination, err := state.TokenAccount(destinationAddress)
	if err != nil {
		return err
	}
	if source.State != token.Initialized || destination.State != token.Initialized {
		return ErrUninitialized
	}
	if !source.Mint.Equals(destination.Mint) || (mint != nil && !source.Mint.Equals(*mint)) {
		return ErrMintMismatch
	}
	if source.Amount < amount {
		return ErrInsufficientFunds
	}
	if err = authorize(state, source, authority, amount); err != nil {
		return err
	}

	if sourceAddress.Equals(destinationAddress) {
		return state.PutTokenAccount(sourceAddress, source)
	}
	source.Amount -= amount
	destination.Amount += amount
	if err = state.PutTokenAccount(sourceAddress, source); err != nil {
		return err
	}
	return state.PutTokenAccount(destinationAddress, destination)
}

func approve(state *State, sourceAddress, delegate, owner solana.PublicKey, amount uint64) error {
	source, err := state.TokenAccount(sourceAddress)
	if err != nil {
		return err
	}
	if err = state.RequireSigner(owner); err != nil {
		return err
	}
	if !source.Owner.Equals(owner) {
		return ErrOwnerMismatch
	}
	source.Delegate = &delegate
	source.DelegatedAmount = amount
	return state.PutTokenAccount(sourceAddress, source)
}

func mintTo(state *State, mintAddress, destinationAddress, authority solana.PublicKey, amount uint64) error {
	mint, err := state.Mint(mintAddress)
	if err != nil {
		return err
	}
	if err = state.RequireSigner(authority); err != nil {
		return err
	}
	if mint.MintAuthority == nil || !mint.MintAuthority.Equals(authority) {
		return ErrOwnerMismatch
	}
	destination, err := state.TokenAccount(destinationAddress)
	if err != nil {
		return err
	}
	if !destination.Mint.Equals(mintAddress) {
		return ErrMintMismatch
	}
	mint.Supply += amount
	destination.Amount += amount
	if err = state.PutMint(mintAddress, mint); err != nil {
		return err
	}
	return state.PutTokenAccount(destinationAddress, destination)
}

func burn(state *State, sourceAddress, mintAddress, authority solana.PublicKey, amount uint64) error {
	source, err := state.TokenAccount(sourceAddress)
	if err != nil {
		return err
	}
	mint, err := state.Mint(mintAddress)
	if err != nil {
		return err
	}
	if !source.Mint.Equals(mintAddress) {
		return ErrMintMismatch
	}
	if source.Amount < amount {
		return ErrInsufficientFunds
	}
	if err = authorize(state, source, authority, amount); err != nil {
		return err
	}
	source.Amount -= amount
	mint.Supply -= amount
	if err = state.PutTokenAccount(sourceAddress, source); err != nil {
		return err
	}
	return state.PutMint(mintAddress, mint)
}
