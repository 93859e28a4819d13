package swap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"

	solanago "github.com/krazyTry/super-token-go/solana"
)

// Swap drives the token-swap program: pool creation, swaps and deposits.
type Swap struct {
	transport   solanago.Transport
	provisioner *solanago.Provisioner
	logger      *zap.Logger

	programID        solana.PublicKey
	feeOwner         solana.PublicKey
	fees             Fees
	bootstrapAmount  uint64
	minimumAmountOut uint64
}

func NewSwap(
	transport solanago.Transport,
	opts ...Option,
) *Swap {
	o := &Swap{
		transport:       transport,
		logger:          zap.NewNop(),
		programID:       ProgramID,
		feeOwner:        FeeOwner,
		fees:            DefaultFees,
		bootstrapAmount: DefaultBootstrapAmount,
	}
	for _, fn := range opts {
		fn(o)
	}
	o.provisioner = solanago.NewProvisioner(transport, o.logger)
	return o
}

type Option func(*Swap)

func WithProgramID(programID solana.PublicKey) Option {
	return func(s *Swap) {
		s.programID = programID
	}
}

func WithFeeOwner(feeOwner solana.PublicKey) Option {
	return func(s *Swap) {
		s.feeOwner = feeOwner
	}
}

func WithFees(fees Fees) Option {
	return func(s *Swap) {
		s.fees = fees
	}
}

// WithBootstrapAmount sets the base units moved into each reserve when a pool
// is created.
func WithBootstrapAmount(amount uint64) Option {
	return func(s *Swap) {
		s.bootstrapAmount = amount
	}
}

// WithMinimumAmountOut sets the slippage floor of every swap. The default of 0
// accepts any output.
func WithMinimumAmountOut(amount uint64) Option {
	return func(s *Swap) {
		s.minimumAmountOut = amount
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Swap) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func (s *Swap) ProgramID() solana.PublicKey {
	return s.programID
}

// GetPool fetches and decodes the pool at address.
func (s *Swap) GetPool(ctx context.Context, pool solana.PublicKey) (*PoolState, error) {
	data, err := s.transport.GetAccountData(ctx, pool)
	if errors.Is(err, solanago.ErrAccountNotFound) {
		return nil, solanago.Precondition("pool "+pool.String(), ErrPoolNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", pool, err)
	}

	state := new(PoolState)
	if err = state.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("decode pool %s: %w", pool, err)
	}
	return state, nil
}

type SwapResult struct {
	Pool             solana.PublicKey
	Source           solana.PublicKey
	Destination      solana.PublicKey
	ToMint           solana.PublicKey
	AmountIn         uint64
	MinimumAmountOut uint64
	Signature        solana.Signature
}

// Swap trades amount of fromMint for the pool's other mint. Owner's
// destination account is created in the same transaction when missing. A
// one-shot delegate approved for exactly amount signs the trade.
func (s *Swap) Swap(
	ctx context.Context,
	owner *solana.Wallet,
	pool solana.PublicKey,
	fromMint solana.PublicKey,
	amount uint64,
) (*SwapResult, error) {
	if amount == 0 {
		return nil, solanago.Precondition("swap", ErrInvalidAmount)
	}

	state, err := s.GetPool(ctx, pool)
	if err != nil {
		return nil, err
	}

	poolSource, poolDestination, toMint, err := state.Reserves(fromMint)
	if err != nil {
		return nil, solanago.Precondition("swap "+fromMint.String()+" on "+pool.String(), err)
	}

	authority, _, err := DerivePoolAuthority(s.programID, pool)
	if err != nil {
		return nil, fmt.Errorf("derive pool authority: %w", err)
	}

	source, err := s.provisioner.Require(ctx, owner.PublicKey(), fromMint)
	if err != nil {
		return nil, err
	}

	tx := new(solanago.Transaction)
	destination, err := s.provisioner.PrepareTokenAccount(ctx, tx, owner.PublicKey(), owner.PublicKey(), toMint)
	if err != nil {
		return nil, err
	}

	delegate := solanago.ApproveDelegate(tx, source.Address, owner.PublicKey(), amount)

	ix, err := NewSwapInstruction(s.programID, &SwapInstructionAccounts{
		Pool:                  pool,
		Authority:             authority,
		UserTransferAuthority: delegate.PublicKey(),
		Source:                source.Address,
		PoolSource:            poolSource,
		PoolDestination:       poolDestination,
		Destination:           destination,
		PoolMint:              state.PoolMint,
		FeeAccount:            state.FeeAccount,
		TokenProgram:          state.TokenProgramID,
	}, &SwapInstructionArgs{
		AmountIn:         amount,
		MinimumAmountOut: s.minimumAmountOut,
	})
	if err != nil {
		return nil, err
	}
	tx.Add(ix)

	sig, err := tx.Submit(ctx, s.transport, owner)
	if err != nil {
		return nil, fmt.Errorf("swap on pool %s: %w", pool, err)
	}

	s.logger.Info("swapped",
		zap.Stringer("pool", pool),
		zap.Stringer("fromMint", fromMint),
		zap.Stringer("toMint", toMint),
		zap.Uint64("amountIn", amount),
		zap.Uint64("minimumAmountOut", s.minimumAmountOut),
		zap.Stringer("signature", sig),
	)

	return &SwapResult{
		Pool:             pool,
		Source:           source.Address,
		Destination:      destination,
		ToMint:           toMint,
		AmountIn:         amount,
		MinimumAmountOut: s.minimumAmountOut,
		Signature:        sig,
	}, nil
}

type DepositLeg struct {
	Mint              solana.PublicKey
	Source            solana.PublicKey
	Reserve           solana.PublicKey
	MinimumPoolTokens uint64
}

type DepositResult struct {
	Pool        solana.PublicKey
	Destination solana.PublicKey
	Amount      uint64
	Legs        []DepositLeg
	Signature   solana.Signature
}

// Deposit adds amount of each of the pool's mints as two single-sided
// deposits in one transaction, both paying LP tokens into one account of
// owner. Each leg's LP floor is estimated from the state read before either
// leg runs, so the second leg lands on a pool the first has already moved.
func (s *Swap) Deposit(
	ctx context.Context,
	owner *solana.Wallet,
	pool solana.PublicKey,
	amount uint64,
) (*DepositResult, error) {
	if amount == 0 {
		return nil, solanago.Precondition("deposit", ErrInvalidAmount)
	}

	state, err := s.GetPool(ctx, pool)
	if err != nil {
		return nil, err
	}

	authority, _, err := DerivePoolAuthority(s.programID, pool)
	if err != nil {
		return nil, fmt.Errorf("derive pool authority: %w", err)
	}

	lpMint, err := solanago.GetToken(ctx, s.transport, state.PoolMint)
	if err != nil {
		return nil, err
	}

	tx := new(solanago.Transaction)
	destination, err := s.provisioner.PrepareTokenAccount(ctx, tx, owner.PublicKey(), owner.PublicKey(), state.PoolMint)
	if err != nil {
		return nil, err
	}

	legs := make([]DepositLeg, 0, 2)
	for _, side := range []struct {
		mint    solana.PublicKey
		reserve solana.PublicKey
	}{
		{mint: state.MintA, reserve: state.TokenAccountA},
		{mint: state.MintB, reserve: state.TokenAccountB},
	} {
		source, err := s.provisioner.Require(ctx, owner.PublicKey(), side.mint)
		if err != nil {
			return nil, err
		}

		reserve, err := solanago.GetTokenAccount(ctx, s.transport, side.reserve)
		if err != nil {
			return nil, err
		}

		minimum, err := PoolTokensForDeposit(
			amount,
			reserve.Amount,
			lpMint.Supply,
			state.Fees.TradeFeeNumerator,
			state.Fees.TradeFeeDenominator,
		)
		if err != nil {
			return nil, fmt.Errorf("estimate pool tokens for %s: %w", side.mint, err)
		}

		delegate := solanago.ApproveDelegate(tx, source.Address, owner.PublicKey(), amount)
		ix, err := NewDepositSingleInstruction(s.programID, &DepositSingleInstructionAccounts{
			Pool:                  pool,
			Authority:             authority,
			UserTransferAuthority: delegate.PublicKey(),
			Source:                source.Address,
			TokenA:                state.TokenAccountA,
			TokenB:                state.TokenAccountB,
			PoolMint:              state.PoolMint,
			Destination:           destination,
			TokenProgram:          state.TokenProgramID,
		}, &DepositSingleInstructionArgs{
			SourceTokenAmount:      amount,
			MinimumPoolTokenAmount: minimum,
		})
		if err != nil {
			return nil, err
		}
		tx.Add(ix)

		legs = append(legs, DepositLeg{
			Mint:              side.mint,
			Source:            source.Address,
			Reserve:           side.reserve,
			MinimumPoolTokens: minimum,
		})
	}

	sig, err := tx.Submit(ctx, s.transport, owner)
	if err != nil {
		return nil, fmt.Errorf("deposit to pool %s: %w", pool, err)
	}

	s.logger.Info("deposited",
		zap.Stringer("pool", pool),
		zap.Uint64("amount", amount),
		zap.Stringer("destination", destination),
		zap.Uint64("minimumPoolTokensA", legs[0].MinimumPoolTokens),
		zap.Uint64("minimumPoolTokensB", legs[1].MinimumPoolTokens),
		zap.Stringer("signature", sig),
	)

	return &DepositResult{
		Pool:        pool,
		Destination: destination,
		Amount:      amount,
		Legs:        legs,
		Signature:   sig,
	}, nil
}

// CreateSystemAccountInstruction allocates space bytes at account for owner.
func CreateSystemAccountInstruction(payer, account, owner solana.PublicKey, space, lamports uint64) solana.Instruction {
	return system.NewCreateAccountInstruction(lamports, space, owner, payer, account).Build()
}
