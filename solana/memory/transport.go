// Package memory is an in-process ledger implementing solana.Transport. It
// executes the system and token programs natively and any other program
// through a registered Processor.
package memory

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"

	solanago "github.com/krazyTry/super-token-go/solana"
)

var ErrUnknownProgram = errors.New("unknown program")

// Processor executes one instruction of a program against state.
type Processor func(state *State, accounts []*solana.AccountMeta, data []byte) error

// Submission records one call to Submit.
type Submission struct {
	Payer        solana.PublicKey
	Instructions []solana.Instruction
	Signature    solana.Signature
	Err          error
}

type Transport struct {
	sync.Mutex

	accounts    map[solana.PublicKey]*Account
	processors  map[solana.PublicKey]Processor
	submissions []Submission
	logger      *zap.Logger
}

type Option func(*Transport)

func WithLogger(logger *zap.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

func New(opts ...Option) *Transport {
	t := &Transport{
		accounts:   make(map[solana.PublicKey]*Account),
		processors: make(map[solana.PublicKey]Processor),
		logger:     zap.NewNop(),
	}
	for _, fn := range opts {
		fn(t)
	}
	t.processors[solana.SystemProgramID] = processSystem
	t.processors[solana.TokenProgramID] = processToken
	return t
}

// RegisterProgram installs processor for programID, replacing any previous one.
func (t *Transport) RegisterProgram(programID solana.PublicKey, processor Processor) {
	t.Lock()
	defer t.Unlock()
	t.processors[programID] = processor
}

func (t *Transport) Submit(
	ctx context.Context,
	payer *solana.Wallet,
	instructions []solana.Instruction,
	signers ...*solana.Wallet,
) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}

	t.Lock()
	defer t.Unlock()

	sig, err := t.submit(payer, instructions, signers)
	t.submissions = append(t.submissions, Submission{
		Payer:        payer.PublicKey(),
		Instructions: instructions,
		Signature:    sig,
		Err:          err,
	})
	if err != nil {
		t.logger.Debug("transaction rejected", zap.Error(err))
		return solana.Signature{}, err
	}
	t.logger.Debug("transaction applied", zap.Stringer("signature", sig), zap.Int("instructions", len(instructions)))
	return sig, nil
}

func (t *Transport) submit(payer *solana.Wallet, instructions []solana.Instruction, signers []*solana.Wallet) (solana.Signature, error) {
	var blockhash solana.Hash
	binary.LittleEndian.PutUint64(blockhash[:], uint64(len(t.submissions)+1))

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	keys := make(map[solana.PublicKey]*solana.PrivateKey, len(signers)+1)
	keys[payer.PublicKey()] = &payer.PrivateKey
	for _, signer := range signers {
		keys[signer.PublicKey()] = &signer.PrivateKey
	}
	if _, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return keys[key]
	}); err != nil {
		return solana.Signature{}, &solanago.RejectionError{Reason: err.Error(), Err: ErrMissingSignature}
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("serialize transaction: %w", err)
	}
	if len(raw) > solanago.PacketDataSize {
		return solana.Signature{}, &solanago.RejectionError{
			Reason: fmt.Sprintf("transaction too large: %d > %d", len(raw), solanago.PacketDataSize),
		}
	}

	state := &State{
		accounts:  make(map[solana.PublicKey]*Account, len(t.accounts)),
		signers:   make(map[solana.PublicKey]bool, len(keys)),
		transport: t,
	}
	for address, account := range t.accounts {
		state.accounts[address] = account.clone()
	}
	for key := range keys {
		state.signers[key] = true
	}

	for i, ix := range instructions {
		if err = t.execute(state, ix); err != nil {
			return solana.Signature{}, &solanago.RejectionError{
				Reason: err.Error(),
				Logs:   []string{fmt.Sprintf("Program %s failed at instruction %d", ix.ProgramID(), i)},
				Err:    err,
			}
		}
	}

	t.accounts = state.accounts
	return tx.Signatures[0], nil
}

func (t *Transport) execute(state *State, ix solana.Instruction) error {
	processor, ok := t.processors[ix.ProgramID()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID())
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("instruction data: %w", err)
	}
	for _, meta := range ix.Accounts() {
		if meta.IsSigner && !state.IsSigner(meta.PublicKey) {
			return fmt.Errorf("%w: %s", ErrMissingSignature, meta.PublicKey)
		}
	}
	return processor(state, ix.Accounts(), data)
}

func (t *Transport) FindTokenAccounts(ctx context.Context, owner, mint solana.PublicKey) ([]*solanago.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.Lock()
	defer t.Unlock()

	var accounts []*solanago.Account
	for address, entry := range t.accounts {
		if !entry.Owner.Equals(solana.TokenProgramID) || len(entry.Data) != solanago.TokenAccountSize {
			continue
		}
		account, err := new(solanago.AccountLayout).Decode(entry.Data)
		if err != nil {
			return nil, err
		}
		if !account.IsInitialized || !account.Owner.Equals(owner) || !account.Mint.Equals(mint) {
			continue
		}
		account.Address = address
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (t *Transport) GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.Lock()
	defer t.Unlock()

	account, ok := t.accounts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", solanago.ErrAccountNotFound, address)
	}
	return bytes.Clone(account.Data), nil
}

func (t *Transport) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return rentExemption(size), nil
}

// Submissions returns every Submit call so far, including rejected ones.
func (t *Transport) Submissions() []Submission {
	t.Lock()
	defer t.Unlock()
	return append([]Submission(nil), t.submissions...)
}

// SetAccount writes an entry directly, bypassing any program.
func (t *Transport) SetAccount(address solana.PublicKey, account *Account) {
	t.Lock()
	defer t.Unlock()
	t.accounts[address] = account.clone()
}

// Account returns a copy of the entry at address.
func (t *Transport) Account(address solana.PublicKey) (*Account, bool) {
	t.Lock()
	defer t.Unlock()
	account, ok := t.accounts[address]
	if !ok {
		return nil, false
	}
	return account.clone(), true
}

// CreateMint seeds an initialized mint owned by authority and returns its address.
func (t *Transport) CreateMint(authority solana.PublicKey, decimals uint8) (solana.PublicKey, error) {
	address := solana.NewWallet().PublicKey()
	err := t.seed(func(state *State) error {
		return state.PutMint(address, &token.Mint{
			MintAuthority: &authority,
			Decimals:      decimals,
			IsInitialized: true,
		})
	})
	return address, err
}

// CreateTokenAccount seeds a token account of owner for mint holding amount,
// minting the amount into the mint's supply.
func (t *Transport) CreateTokenAccount(owner, mint solana.PublicKey, amount uint64) (solana.PublicKey, error) {
	address := solana.NewWallet().PublicKey()
	err := t.seed(func(state *State) error {
		m, err := state.Mint(mint)
		if err != nil {
			return err
		}
		m.Supply += amount
		if err = state.PutMint(mint, m); err != nil {
			return err
		}
		return state.PutTokenAccount(address, &token.Account{
			Mint:   mint,
			Owner:  owner,
			Amount: amount,
			State:  token.Initialized,
		})
	})
	return address, err
}

func (t *Transport) seed(fn func(state *State) error) error {
	t.Lock()
	defer t.Unlock()

	state := &State{accounts: t.accounts, signers: map[solana.PublicKey]bool{}, transport: t}
	return fn(state)
}
