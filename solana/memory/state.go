package memory

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	solanago "github.com/krazyTry/super-token-go/solana"
)

var (
	ErrAccountExists    = errors.New("account already in use")
	ErrMissingSignature = errors.New("missing required signature")
	ErrInvalidOwner     = errors.New("account is not owned by the expected program")
	ErrInvalidData      = errors.New("invalid account data")
)

// Account is a ledger entry.
type Account struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

func (a *Account) clone() *Account {
	return &Account{
		Lamports: a.Lamports,
		Owner:    a.Owner,
		Data:     bytes.Clone(a.Data),
	}
}

// State is the view of the ledger one transaction executes against. Writes
// become visible to the transport only if every instruction succeeds.
type State struct {
	accounts  map[solana.PublicKey]*Account
	signers   map[solana.PublicKey]bool
	transport *Transport
}

func (s *State) Account(address solana.PublicKey) (*Account, bool) {
	account, ok := s.accounts[address]
	return account, ok
}

func (s *State) SetAccount(address solana.PublicKey, account *Account) {
	s.accounts[address] = account
}

func (s *State) IsSigner(address solana.PublicKey) bool {
	return s.signers[address]
}

// RequireSigner fails unless address signed the transaction or the current
// cross-program invocation.
func (s *State) RequireSigner(address solana.PublicKey) error {
	if !s.IsSigner(address) {
		return fmt.Errorf("%w: %s", ErrMissingSignature, address)
	}
	return nil
}

// Invoke runs ix as a cross-program invocation, with signers added to the
// signer set for its duration. Programs pass their derived addresses here.
func (s *State) Invoke(ix solana.Instruction, signers ...solana.PublicKey) error {
	added := make([]solana.PublicKey, 0, len(signers))
	for _, signer := range signers {
		if !s.signers[signer] {
			s.signers[signer] = true
			added = append(added, signer)
		}
	}
	defer func() {
		for _, signer := range added {
			delete(s.signers, signer)
		}
	}()
	return s.transport.execute(s, ix)
}

func (s *State) TokenAccount(address solana.PublicKey) (*token.Account, error) {
	account, ok := s.accounts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", solanago.ErrAccountNotFound, address)
	}
	if !account.Owner.Equals(solana.TokenProgramID) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOwner, address)
	}
	if len(account.Data) != solanago.TokenAccountSize {
		return nil, fmt.Errorf("%w: %s is not a token account", ErrInvalidData, address)
	}
	out := new(token.Account)
	if err := out.UnmarshalWithDecoder(bin.NewBinDecoder(account.Data)); err != nil {
		return nil, fmt.Errorf("decode token account %s: %w", address, err)
	}
	return out, nil
}

func (s *State) PutTokenAccount(address solana.PublicKey, value *token.Account) error {
	data, err := encodeTokenAccount(value)
	if err != nil {
		return err
	}
	s.store(address, data)
	return nil
}

func (s *State) Mint(address solana.PublicKey) (*token.Mint, error) {
	account, ok := s.accounts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", solanago.ErrAccountNotFound, address)
	}
	if !account.Owner.Equals(solana.TokenProgramID) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOwner, address)
	}
	if len(account.Data) != solanago.MintSize {
		return nil, fmt.Errorf("%w: %s is not a mint", ErrInvalidData, address)
	}
	out := new(token.Mint)
	if err := out.UnmarshalWithDecoder(bin.NewBinDecoder(account.Data)); err != nil {
		return nil, fmt.Errorf("decode mint %s: %w", address, err)
	}
	return out, nil
}

func (s *State) PutMint(address solana.PublicKey, value *token.Mint) error {
	data, err := encodeMint(value)
	if err != nil {
		return err
	}
	s.store(address, data)
	return nil
}

// store writes data into a token-program account, allocating it when absent.
func (s *State) store(address solana.PublicKey, data []byte) {
	account, ok := s.accounts[address]
	if !ok {
		account = &Account{
			Lamports: rentExemption(uint64(len(data))),
			Owner:    solana.TokenProgramID,
		}
		s.accounts[address] = account
	}
	account.Data = data
}

func encodeTokenAccount(value *token.Account) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := value.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, fmt.Errorf("encode token account: %w", err)
	}
	return fit(buf.Bytes(), solanago.TokenAccountSize), nil
}

func encodeMint(value *token.Mint) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := value.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, fmt.Errorf("encode mint: %w", err)
	}
	return fit(buf.Bytes(), solanago.MintSize), nil
}

func fit(data []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, data)
	return out
}

// rentExemption mirrors the cluster default of two years at 3480 lamports per
// byte-year, including the 128 byte account header.
func rentExemption(size uint64) uint64 {
	return (size + 128) * 3480 * 2
}
