package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
)

type pendingAccount struct {
	owner solana.PublicKey
	mint  solana.PublicKey
}

// Transaction accumulates the instructions and extra signers of one atomic
// submission. The zero value is ready to use.
type Transaction struct {
	Instructions []solana.Instruction
	Signers      []*solana.Wallet

	pending map[pendingAccount]solana.PublicKey
}

func (t *Transaction) Add(instructions ...solana.Instruction) {
	t.Instructions = append(t.Instructions, instructions...)
}

func (t *Transaction) AddSigner(signers ...*solana.Wallet) {
	t.Signers = append(t.Signers, signers...)
}

// Submit sends the accumulated instructions through transport.
func (t *Transaction) Submit(ctx context.Context, transport Transport, payer *solana.Wallet) (solana.Signature, error) {
	return transport.Submit(ctx, payer, t.Instructions, t.Signers...)
}

// Provisioner resolves token accounts for an owner, creating them on demand.
type Provisioner struct {
	transport Transport
	logger    *zap.Logger
}

func NewProvisioner(transport Transport, logger *zap.Logger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{transport: transport, logger: logger}
}

// Find returns the selected token account of owner for mint, or nil if the
// owner has none.
func (p *Provisioner) Find(ctx context.Context, owner, mint solana.PublicKey) (*Account, error) {
	accounts, err := p.transport.FindTokenAccounts(ctx, owner, mint)
	if err != nil {
		return nil, fmt.Errorf("find token accounts for mint %s: %w", mint, err)
	}
	return SelectAccount(accounts), nil
}

// Require is Find for accounts that must already exist.
func (p *Provisioner) Require(ctx context.Context, owner, mint solana.PublicKey) (*Account, error) {
	account, err := p.Find(ctx, owner, mint)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, Precondition("mint "+mint.String(), ErrTokenAccountNotFound)
	}
	return account, nil
}

// PrepareTokenAccount returns owner's token account for mint. When none exists
// a fresh account is scheduled in tx: a system CreateAccount, a token
// InitializeAccount and the new account's key as signer. Asking twice for the
// same pair within one tx yields the same pending account.
func (p *Provisioner) PrepareTokenAccount(
	ctx context.Context,
	tx *Transaction,
	payer solana.PublicKey,
	owner solana.PublicKey,
	mint solana.PublicKey,
) (solana.PublicKey, error) {
	key := pendingAccount{owner: owner, mint: mint}
	if address, ok := tx.pending[key]; ok {
		return address, nil
	}

	existing, err := p.Find(ctx, owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if existing != nil {
		return existing.Address, nil
	}

	account, err := p.CreateTokenAccount(ctx, tx, payer, owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if tx.pending == nil {
		tx.pending = make(map[pendingAccount]solana.PublicKey)
	}
	tx.pending[key] = account
	return account, nil
}

// CreateTokenAccount unconditionally schedules a new token account for owner.
func (p *Provisioner) CreateTokenAccount(
	ctx context.Context,
	tx *Transaction,
	payer solana.PublicKey,
	owner solana.PublicKey,
	mint solana.PublicKey,
) (solana.PublicKey, error) {
	lamports, err := p.transport.MinimumBalanceForRentExemption(ctx, TokenAccountSize)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("get rent exemption: %w", err)
	}

	account := solana.NewWallet()
	tx.Add(CreateTokenAccountInstructions(payer, account.PublicKey(), mint, owner, lamports)...)
	tx.AddSigner(account)

	p.logger.Debug("scheduled token account",
		zap.Stringer("account", account.PublicKey()),
		zap.Stringer("owner", owner),
		zap.Stringer("mint", mint),
	)
	return account.PublicKey(), nil
}

// CreateTokenAccountInstructions allocates account under the token program and
// binds it to mint and owner.
func CreateTokenAccountInstructions(payer, account, mint, owner solana.PublicKey, lamports uint64) []solana.Instruction {
	return []solana.Instruction{
		system.NewCreateAccountInstruction(
			lamports,
			TokenAccountSize,
			solana.TokenProgramID,
			payer,
			account,
		).Build(),
		token.NewInitializeAccountInstruction(
			account,
			mint,
			owner,
			solana.SysVarRentPubkey,
		).Build(),
	}
}

// CreateMintInstructions allocates mint under the token program and initializes
// it with no freeze authority.
func CreateMintInstructions(payer, mint, authority solana.PublicKey, decimals uint8, lamports uint64) []solana.Instruction {
	return []solana.Instruction{
		system.NewCreateAccountInstruction(
			lamports,
			MintSize,
			solana.TokenProgramID,
			payer,
			mint,
		).Build(),
		token.NewInitializeMintInstructionBuilder().
			SetDecimals(decimals).
			SetMintAuthority(authority).
			SetMintAccount(mint).
			SetSysVarRentPubkeyAccount(solana.SysVarRentPubkey).
			Build(),
	}
}
