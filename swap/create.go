package swap

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	solanago "github.com/krazyTry/super-token-go/solana"
)

// Pool creation stages. Each is one atomic transaction.
const (
	StageReserves = "fund reserves"
	StageLPMint   = "create lp mint"
	StagePool     = "initialize pool"
)

// PartialPoolError reports a pool creation that failed after at least one
// stage committed. The reserves then hold the bootstrap funds under an
// authority no initialized pool uses.
type PartialPoolError struct {
	Pool      solana.PublicKey
	Stage     string
	ReserveA  solana.PublicKey
	ReserveB  solana.PublicKey
	Committed []solana.Signature
	Err       error
}

func (e *PartialPoolError) Error() string {
	return fmt.Sprintf("create liquidity pool %s: %s failed after %d committed transactions, reserves %s and %s stay funded: %v",
		e.Pool, e.Stage, len(e.Committed), e.ReserveA, e.ReserveB, e.Err)
}

func (e *PartialPoolError) Unwrap() error {
	return e.Err
}

type CreatePoolResult struct {
	Pool        solana.PublicKey
	Authority   solana.PublicKey
	Bump        uint8
	TokenA      solana.PublicKey
	TokenB      solana.PublicKey
	PoolMint    solana.PublicKey
	FeeAccount  solana.PublicKey
	Destination solana.PublicKey
	Signatures  []solana.Signature
}

type poolSide struct {
	mint     solana.PublicKey
	source   *solanago.Account
	decimals uint8
}

// CreateLiquidityPool creates a constant product pool for mintA and mintB,
// seeded with the bootstrap amount of each from owner's accounts. The work is
// split across three transactions since one would not fit a packet: funded
// reserves, then the LP mint with its fee and creator accounts, then the pool
// account and its Initialize.
func (s *Swap) CreateLiquidityPool(
	ctx context.Context,
	owner *solana.Wallet,
	mintA solana.PublicKey,
	mintB solana.PublicKey,
) (*CreatePoolResult, error) {
	if mintA.Equals(mintB) {
		return nil, solanago.Precondition("create liquidity pool", ErrRepeatedMint)
	}
	if s.bootstrapAmount == 0 {
		return nil, solanago.Precondition("create liquidity pool", ErrInvalidAmount)
	}

	sides := make([]poolSide, 0, 2)
	for _, mint := range []solana.PublicKey{mintA, mintB} {
		source, err := s.provisioner.Require(ctx, owner.PublicKey(), mint)
		if err != nil {
			return nil, err
		}
		if source.Amount < s.bootstrapAmount {
			return nil, solanago.Precondition(
				fmt.Sprintf("mint %s holds %d, needs %d", mint, source.Amount, s.bootstrapAmount),
				ErrInsufficientBootstrap,
			)
		}
		token, err := solanago.GetToken(ctx, s.transport, mint)
		if err != nil {
			return nil, err
		}
		sides = append(sides, poolSide{mint: mint, source: source, decimals: token.Decimals})
	}

	pool := solana.NewWallet()
	authority, bump, err := DerivePoolAuthority(s.programID, pool.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("derive pool authority: %w", err)
	}

	result := &CreatePoolResult{
		Pool:      pool.PublicKey(),
		Authority: authority,
		Bump:      bump,
	}
	payer := owner.PublicKey()

	// reserves
	tx := new(solanago.Transaction)
	reserves := make([]solana.PublicKey, 0, 2)
	for _, side := range sides {
		reserve, err := s.provisioner.CreateTokenAccount(ctx, tx, payer, authority, side.mint)
		if err != nil {
			return nil, err
		}
		tx.Add(solanago.TransferCheckedInstruction(
			side.source.Address,
			reserve,
			side.mint,
			owner.PublicKey(),
			side.decimals,
			s.bootstrapAmount,
		))
		reserves = append(reserves, reserve)
	}
	result.TokenA, result.TokenB = reserves[0], reserves[1]

	sig, err := tx.Submit(ctx, s.transport, owner)
	if err != nil {
		return nil, fmt.Errorf("create liquidity pool %s: %s: %w", pool.PublicKey(), StageReserves, err)
	}
	result.Signatures = append(result.Signatures, sig)
	s.logger.Debug("pool reserves funded",
		zap.Stringer("pool", pool.PublicKey()),
		zap.Stringer("tokenA", result.TokenA),
		zap.Stringer("tokenB", result.TokenB),
		zap.Uint64("amount", s.bootstrapAmount),
	)

	partial := func(stage string, err error) error {
		return &PartialPoolError{
			Pool:      pool.PublicKey(),
			Stage:     stage,
			ReserveA:  result.TokenA,
			ReserveB:  result.TokenB,
			Committed: result.Signatures,
			Err:       err,
		}
	}

	// lp mint, fee account and the creator's lp account
	tx = new(solanago.Transaction)
	lpMint := solana.NewWallet()
	mintRent, err := s.transport.MinimumBalanceForRentExemption(ctx, solanago.MintSize)
	if err != nil {
		return nil, partial(StageLPMint, fmt.Errorf("get rent exemption: %w", err))
	}
	tx.Add(solanago.CreateMintInstructions(payer, lpMint.PublicKey(), authority, LPTokenDecimals, mintRent)...)
	tx.AddSigner(lpMint)

	if result.FeeAccount, err = s.provisioner.CreateTokenAccount(ctx, tx, payer, s.feeOwner, lpMint.PublicKey()); err != nil {
		return nil, partial(StageLPMint, err)
	}
	if result.Destination, err = s.provisioner.CreateTokenAccount(ctx, tx, payer, owner.PublicKey(), lpMint.PublicKey()); err != nil {
		return nil, partial(StageLPMint, err)
	}
	result.PoolMint = lpMint.PublicKey()

	if sig, err = tx.Submit(ctx, s.transport, owner); err != nil {
		return nil, partial(StageLPMint, err)
	}
	result.Signatures = append(result.Signatures, sig)

	// pool account
	poolRent, err := s.transport.MinimumBalanceForRentExemption(ctx, PoolAccountSize)
	if err != nil {
		return nil, partial(StagePool, fmt.Errorf("get rent exemption: %w", err))
	}
	initialize, err := NewInitializeInstruction(s.programID, &InitializeInstructionAccounts{
		Pool:        pool.PublicKey(),
		Authority:   authority,
		TokenA:      result.TokenA,
		TokenB:      result.TokenB,
		PoolMint:    result.PoolMint,
		FeeAccount:  result.FeeAccount,
		Destination: result.Destination,
	}, &InitializeInstructionArgs{
		Fees:      s.fees,
		CurveType: CurveTypeConstantProduct,
	})
	if err != nil {
		return nil, partial(StagePool, err)
	}

	tx = new(solanago.Transaction)
	tx.Add(
		CreateSystemAccountInstruction(payer, pool.PublicKey(), s.programID, PoolAccountSize, poolRent),
		initialize,
	)
	tx.AddSigner(pool)

	if sig, err = tx.Submit(ctx, s.transport, owner); err != nil {
		return nil, partial(StagePool, err)
	}
	result.Signatures = append(result.Signatures, sig)

	s.logger.Info("liquidity pool created",
		zap.Stringer("pool", result.Pool),
		zap.Stringer("tokenA", result.TokenA),
		zap.Stringer("tokenB", result.TokenB),
		zap.Stringer("poolMint", result.PoolMint),
		zap.Stringer("feeAccount", result.FeeAccount),
		zap.Stringer("destination", result.Destination),
	)
	return result, nil
}
