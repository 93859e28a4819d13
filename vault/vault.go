package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	solanago "github.com/krazyTry/super-token-go/solana"
)

// Vault drives the superposition vault program.
type Vault struct {
	transport   solanago.Transport
	provisioner *solanago.Provisioner
	programID   solana.PublicKey
	logger      *zap.Logger
}

func NewVault(
	transport solanago.Transport,
	opts ...Option,
) *Vault {
	o := &Vault{
		transport: transport,
		programID: ProgramID,
		logger:    zap.NewNop(),
	}
	for _, fn := range opts {
		fn(o)
	}
	o.provisioner = solanago.NewProvisioner(transport, o.logger)
	return o
}

type Option func(*Vault)

func WithProgramID(programID solana.PublicKey) Option {
	return func(v *Vault) {
		v.programID = programID
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(v *Vault) {
		if logger != nil {
			v.logger = logger
		}
	}
}

func (v *Vault) ProgramID() solana.PublicKey {
	return v.programID
}

type CreateVaultResult struct {
	Vault     solana.PublicKey
	Bump      uint8
	MintP     solana.PublicKey
	MintY     solana.PublicKey
	TokenU    solana.PublicKey
	Signature solana.Signature
}

// CreateVault creates the vault for underlyingMint over [startTime, endTime].
// The principal mint, yield mint and custody account are fresh keys that sign
// alongside owner. The program refuses a term that already has a vault.
func (v *Vault) CreateVault(
	ctx context.Context,
	owner *solana.Wallet,
	underlyingMint solana.PublicKey,
	startTime int64,
	endTime int64,
) (*CreateVaultResult, error) {
	vault, bump, err := DeriveVaultAddress(v.programID, underlyingMint, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("derive vault address: %w", err)
	}

	mintP := solana.NewWallet()
	mintY := solana.NewWallet()
	tokenU := solana.NewWallet()

	ix, err := NewCreateVaultInstruction(v.programID, &CreateVaultInstructionAccounts{
		MintU:  underlyingMint,
		TokenU: tokenU.PublicKey(),
		MintY:  mintY.PublicKey(),
		MintP:  mintP.PublicKey(),
		Vault:  vault,
		Payer:  owner.PublicKey(),
	}, &CreateVaultInstructionArgs{
		Bump:      bump,
		StartTime: startTime,
		EndTime:   endTime,
	})
	if err != nil {
		return nil, err
	}

	tx := new(solanago.Transaction)
	tx.Add(ix)
	tx.AddSigner(tokenU, mintP, mintY)

	sig, err := tx.Submit(ctx, v.transport, owner)
	if err != nil {
		return nil, fmt.Errorf("create vault %s: %w", vault, err)
	}

	v.logger.Info("vault created",
		zap.Stringer("vault", vault),
		zap.Stringer("mintP", mintP.PublicKey()),
		zap.Stringer("mintY", mintY.PublicKey()),
		zap.Stringer("tokenU", tokenU.PublicKey()),
		zap.Stringer("signature", sig),
	)

	return &CreateVaultResult{
		Vault:     vault,
		Bump:      bump,
		MintP:     mintP.PublicKey(),
		MintY:     mintY.PublicKey(),
		TokenU:    tokenU.PublicKey(),
		Signature: sig,
	}, nil
}

type MintResult struct {
	Vault      solana.PublicKey
	TokenUFrom solana.PublicKey
	TokenU     solana.PublicKey
	TokenP     solana.PublicKey
	TokenY     solana.PublicKey
	Amount     uint64
	Signature  solana.Signature
}

// Mint deposits amount of the underlying asset and mints the same amount of
// principal and yield tokens to owner, creating owner's principal and yield
// accounts in the same transaction when needed.
func (v *Vault) Mint(
	ctx context.Context,
	owner *solana.Wallet,
	underlyingMint solana.PublicKey,
	startTime int64,
	endTime int64,
	amount uint64,
) (*MintResult, error) {
	if amount == 0 {
		return nil, solanago.Precondition("mint", ErrInvalidAmount)
	}

	tokenUFrom, err := v.provisioner.Require(ctx, owner.PublicKey(), underlyingMint)
	if err != nil {
		return nil, err
	}

	vault, bump, state, err := v.load(ctx, underlyingMint, startTime, endTime)
	if err != nil {
		return nil, err
	}

	tx := new(solanago.Transaction)
	tokenP, err := v.provisioner.PrepareTokenAccount(ctx, tx, owner.PublicKey(), owner.PublicKey(), state.MintP)
	if err != nil {
		return nil, err
	}
	tokenY, err := v.provisioner.PrepareTokenAccount(ctx, tx, owner.PublicKey(), owner.PublicKey(), state.MintY)
	if err != nil {
		return nil, err
	}

	ix, err := NewMintToInstruction(v.programID, &MintToInstructionAccounts{
		Authority:  owner.PublicKey(),
		Vault:      vault,
		MintU:      underlyingMint,
		MintP:      state.MintP,
		MintY:      state.MintY,
		TokenP:     tokenP,
		TokenY:     tokenY,
		TokenU:     state.TokenU,
		TokenUFrom: tokenUFrom.Address,
	}, &MintToInstructionArgs{
		Bump:      bump,
		StartTime: startTime,
		EndTime:   endTime,
		Amount:    amount,
	})
	if err != nil {
		return nil, err
	}
	tx.Add(ix)

	sig, err := tx.Submit(ctx, v.transport, owner)
	if err != nil {
		return nil, fmt.Errorf("mint from vault %s: %w", vault, err)
	}

	v.logger.Info("superposition tokens minted",
		zap.Stringer("vault", vault),
		zap.Uint64("amount", amount),
		zap.Stringer("tokenP", tokenP),
		zap.Stringer("tokenY", tokenY),
		zap.Stringer("signature", sig),
	)

	return &MintResult{
		Vault:      vault,
		TokenUFrom: tokenUFrom.Address,
		TokenU:     state.TokenU,
		TokenP:     tokenP,
		TokenY:     tokenY,
		Amount:     amount,
		Signature:  sig,
	}, nil
}

type RedeemResult struct {
	Vault     solana.PublicKey
	TokenUTo  solana.PublicKey
	TokenU    solana.PublicKey
	TokenP    solana.PublicKey
	TokenY    solana.PublicKey
	Amount    uint64
	Signature solana.Signature
}

// Redeem burns amount of owner's principal and yield tokens and returns the
// same amount of the underlying asset. All three of owner's accounts must
// already exist.
func (v *Vault) Redeem(
	ctx context.Context,
	owner *solana.Wallet,
	underlyingMint solana.PublicKey,
	startTime int64,
	endTime int64,
	amount uint64,
) (*RedeemResult, error) {
	if amount == 0 {
		return nil, solanago.Precondition("redeem", ErrInvalidAmount)
	}

	tokenUTo, err := v.provisioner.Require(ctx, owner.PublicKey(), underlyingMint)
	if err != nil {
		return nil, err
	}

	vault, bump, state, err := v.load(ctx, underlyingMint, startTime, endTime)
	if err != nil {
		return nil, err
	}

	tokenP, err := v.provisioner.Require(ctx, owner.PublicKey(), state.MintP)
	if err != nil {
		return nil, err
	}
	tokenY, err := v.provisioner.Require(ctx, owner.PublicKey(), state.MintY)
	if err != nil {
		return nil, err
	}

	ix, err := NewRedeemInstruction(v.programID, &RedeemInstructionAccounts{
		Authority: owner.PublicKey(),
		Vault:     vault,
		MintU:     state.MintU,
		MintP:     state.MintP,
		MintY:     state.MintY,
		TokenP:    tokenP.Address,
		TokenY:    tokenY.Address,
		TokenU:    state.TokenU,
		TokenUTo:  tokenUTo.Address,
	}, &RedeemInstructionArgs{
		Bump:      bump,
		StartTime: startTime,
		EndTime:   endTime,
		Amount:    amount,
	})
	if err != nil {
		return nil, err
	}

	tx := new(solanago.Transaction)
	tx.Add(ix)

	sig, err := tx.Submit(ctx, v.transport, owner)
	if err != nil {
		return nil, fmt.Errorf("redeem from vault %s: %w", vault, err)
	}

	v.logger.Info("superposition tokens redeemed",
		zap.Stringer("vault", vault),
		zap.Uint64("amount", amount),
		zap.Stringer("tokenUTo", tokenUTo.Address),
		zap.Stringer("signature", sig),
	)

	return &RedeemResult{
		Vault:     vault,
		TokenUTo:  tokenUTo.Address,
		TokenU:    state.TokenU,
		TokenP:    tokenP.Address,
		TokenY:    tokenY.Address,
		Amount:    amount,
		Signature: sig,
	}, nil
}

// GetVault fetches the vault of underlyingMint for the given term.
func (v *Vault) GetVault(
	ctx context.Context,
	underlyingMint solana.PublicKey,
	startTime int64,
	endTime int64,
) (*VaultState, error) {
	_, _, state, err := v.load(ctx, underlyingMint, startTime, endTime)
	return state, err
}

func (v *Vault) load(
	ctx context.Context,
	underlyingMint solana.PublicKey,
	startTime int64,
	endTime int64,
) (solana.PublicKey, uint8, *VaultState, error) {
	vault, bump, err := DeriveVaultAddress(v.programID, underlyingMint, startTime, endTime)
	if err != nil {
		return solana.PublicKey{}, 0, nil, fmt.Errorf("derive vault address: %w", err)
	}

	data, err := v.transport.GetAccountData(ctx, vault)
	if errors.Is(err, solanago.ErrAccountNotFound) {
		return solana.PublicKey{}, 0, nil, solanago.Precondition("vault "+vault.String(), ErrVaultNotFound)
	}
	if err != nil {
		return solana.PublicKey{}, 0, nil, fmt.Errorf("get vault %s: %w", vault, err)
	}

	state := new(VaultState)
	if err = state.Unmarshal(data); err != nil {
		return solana.PublicKey{}, 0, nil, fmt.Errorf("decode vault %s: %w", vault, err)
	}
	if !state.MintU.Equals(underlyingMint) {
		return solana.PublicKey{}, 0, nil, solanago.Precondition("vault "+vault.String(), ErrUnderlyingMint)
	}
	return vault, bump, state, nil
}
