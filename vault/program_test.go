package vault_test

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	solanago "github.com/krazyTry/super-token-go/solana"
	"github.com/krazyTry/super-token-go/solana/memory"
	"github.com/krazyTry/super-token-go/vault"
)

// Program error messages, as the deployed program reports them.
var (
	errInsufficientUnderlying = errors.New("Insufficient funds from underlying token account")
	errDepositUnderlying      = errors.New("Failed to deposit underlying token")
	errMintPrincipal          = errors.New("Failed to mint principal token")
	errMintYield              = errors.New("Failed to mint yield token")
	errBurnPrincipal          = errors.New("Failed to burn principal token")
	errBurnYield              = errors.New("Failed to burn yield token")
	errWithdrawUnderlying     = errors.New("Failed to withdraw underlying token")
	errConstraint             = errors.New("A has_one constraint was violated")
	errSeeds                  = errors.New("A seeds constraint was violated")
)

// vaultProgram emulates the vault program on the in-memory ledger.
func vaultProgram(programID solana.PublicKey) memory.Processor {
	return func(state *memory.State, accounts []*solana.AccountMeta, data []byte) error {
		if len(data) < 8 {
			return fmt.Errorf("instruction data too short")
		}
		switch [8]byte(data[:8]) {
		case vault.CreateVaultDiscriminator:
			var args vault.CreateVaultInstructionArgs
			if err := bin.NewBorshDecoder(data[8:]).Decode(&args); err != nil {
				return err
			}
			return createVault(programID, state, accounts, &args)
		case vault.MintToDiscriminator:
			var args vault.MintToInstructionArgs
			if err := bin.NewBorshDecoder(data[8:]).Decode(&args); err != nil {
				return err
			}
			return mintTo(programID, state, accounts, &args)
		case vault.RedeemDiscriminator:
			var args vault.RedeemInstructionArgs
			if err := bin.NewBorshDecoder(data[8:]).Decode(&args); err != nil {
				return err
			}
			return redeem(programID, state, accounts, &args)
		default:
			return fmt.Errorf("unknown instruction")
		}
	}
}

func checkVaultAddress(programID, address, mintU solana.PublicKey, bump uint8, startTime, endTime int64) error {
	seeds := append(solanago.TaggedSeeds(vault.VaultSeed, mintU, startTime, endTime), []byte{bump})
	expected, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil || !expected.Equals(address) {
		return errSeeds
	}
	return nil
}

func keys(accounts []*solana.AccountMeta, n int) ([]solana.PublicKey, error) {
	if len(accounts) < n {
		return nil, fmt.Errorf("not enough account keys: %d < %d", len(accounts), n)
	}
	out := make([]solana.PublicKey, n)
	for i := range out {
		out[i] = accounts[i].PublicKey
	}
	return out, nil
}

func createVault(programID solana.PublicKey, state *memory.State, accounts []*solana.AccountMeta, args *vault.CreateVaultInstructionArgs) error {
	k, err := keys(accounts, 6)
	if err != nil {
		return err
	}
	mintU, tokenU, mintY, mintP, vaultAddress, payer := k[0], k[1], k[2], k[3], k[4], k[5]

	if err = state.RequireSigner(payer); err != nil {
		return err
	}
	if err = checkVaultAddress(programID, vaultAddress, mintU, args.Bump, args.StartTime, args.EndTime); err != nil {
		return err
	}
	if _, err = state.Mint(mintU); err != nil {
		return err
	}
	for _, address := range []solana.PublicKey{tokenU, mintY, mintP, vaultAddress} {
		if _, ok := state.Account(address); ok {
			return fmt.Errorf("Allocate: account %s already in use", address)
		}
	}

	for _, mint := range []solana.PublicKey{mintY, mintP} {
		if err = state.PutMint(mint, &token.Mint{
			MintAuthority: &vaultAddress,
			Decimals:      vault.TokenDecimals,
			IsInitialized: true,
		}); err != nil {
			return err
		}
	}
	if err = state.PutTokenAccount(tokenU, &token.Account{
		Mint:  mintU,
		Owner: vaultAddress,
		State: token.Initialized,
	}); err != nil {
		return err
	}

	record := &vault.VaultState{
		StartTime: args.StartTime,
		EndTime:   args.EndTime,
		MintY:     mintY,
		MintP:     mintP,
		MintU:     mintU,
		TokenU:    tokenU,
	}
	data, err := record.Marshal()
	if err != nil {
		return err
	}
	state.SetAccount(vaultAddress, &memory.Account{Lamports: 1, Owner: programID, Data: data})
	return nil
}

func loadRecord(programID solana.PublicKey, state *memory.State, address solana.PublicKey) (*vault.VaultState, error) {
	account, ok := state.Account(address)
	if !ok || !account.Owner.Equals(programID) {
		return nil, fmt.Errorf("AccountNotInitialized: %s", address)
	}
	record := new(vault.VaultState)
	if err := record.Unmarshal(account.Data); err != nil {
		return nil, err
	}
	return record, nil
}

func mintTo(programID solana.PublicKey, state *memory.State, accounts []*solana.AccountMeta, args *vault.MintToInstructionArgs) error {
	k, err := keys(accounts, 9)
	if err != nil {
		return err
	}
	authority, vaultAddress, mintU, mintP, mintY, tokenP, tokenY, tokenU, tokenUFrom :=
		k[0], k[1], k[2], k[3], k[4], k[5], k[6], k[7], k[8]

	if err = state.RequireSigner(authority); err != nil {
		return err
	}
	record, err := loadRecord(programID, state, vaultAddress)
	if err != nil {
		return err
	}
	if !record.TokenU.Equals(tokenU) || !record.MintU.Equals(mintU) ||
		!record.MintY.Equals(mintY) || !record.MintP.Equals(mintP) {
		return errConstraint
	}
	if err = checkVaultAddress(programID, vaultAddress, mintU, args.Bump, args.StartTime, args.EndTime); err != nil {
		return err
	}

	source, err := state.TokenAccount(tokenUFrom)
	if err != nil {
		return err
	}
	if args.Amount > source.Amount {
		return errInsufficientUnderlying
	}

	if err = state.Invoke(token.NewTransferInstruction(args.Amount, tokenUFrom, tokenU, authority, nil).Build()); err != nil {
		return errDepositUnderlying
	}
	if err = state.Invoke(token.NewMintToInstruction(args.Amount, mintP, tokenP, vaultAddress, nil).Build(), vaultAddress); err != nil {
		return errMintPrincipal
	}
	if err = state.Invoke(token.NewMintToInstruction(args.Amount, mintY, tokenY, vaultAddress, nil).Build(), vaultAddress); err != nil {
		return errMintYield
	}
	return nil
}

func redeem(programID solana.PublicKey, state *memory.State, accounts []*solana.AccountMeta, args *vault.RedeemInstructionArgs) error {
	k, err := keys(accounts, 9)
	if err != nil {
		return err
	}
	authority, vaultAddress, mintU, mintP, mintY, tokenP, tokenY, tokenU, tokenUTo :=
		k[0], k[1], k[2], k[3], k[4], k[5], k[6], k[7], k[8]

	if err = state.RequireSigner(authority); err != nil {
		return err
	}
	record, err := loadRecord(programID, state, vaultAddress)
	if err != nil {
		return err
	}
	if !record.TokenU.Equals(tokenU) || !record.MintU.Equals(mintU) ||
		!record.MintY.Equals(mintY) || !record.MintP.Equals(mintP) {
		return errConstraint
	}
	if err = checkVaultAddress(programID, vaultAddress, mintU, args.Bump, args.StartTime, args.EndTime); err != nil {
		return err
	}

	if err = state.Invoke(token.NewBurnInstruction(args.Amount, tokenP, mintP, authority, nil).Build()); err != nil {
		return errBurnPrincipal
	}
	if err = state.Invoke(token.NewBurnInstruction(args.Amount, tokenY, mintY, authority, nil).Build()); err != nil {
		return errBurnYield
	}
	if err = state.Invoke(token.NewTransferInstruction(args.Amount, tokenU, tokenUTo, vaultAddress, nil).Build(), vaultAddress); err != nil {
		return errWithdrawUnderlying
	}
	return nil
}
