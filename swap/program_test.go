package swap_test

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/krazyTry/super-token-go/solana/memory"
	"github.com/krazyTry/super-token-go/swap"
)

// initialSupply is minted to the creator when a pool is initialized.
const initialSupply uint64 = 1_000_000_000

// Program error messages, as the deployed program reports them.
var (
	errAlreadyInUse         = errors.New("Swap account already in use")
	errInvalidProgramAddr   = errors.New("Invalid program address generated from bump seed and key")
	errInvalidOwner         = errors.New("Input account owner is not the program address")
	errInvalidSupply        = errors.New("Pool token mint has a non-zero supply")
	errEmptySupply          = errors.New("Input token account empty")
	errRepeatedMint         = errors.New("Swap input token accounts have the same mint")
	errIncorrectFeeAccount  = errors.New("Pool fee token account incorrect")
	errIncorrectSwapAccount = errors.New("Address of the provided swap token account is incorrect")
	errIncorrectPoolMint    = errors.New("Address of the provided pool token mint is incorrect")
	errExceededSlippage     = errors.New("Swap instruction exceeds desired slippage limit")
	errZeroTradingTokens    = errors.New("Given pool token amount results in zero trading tokens")
)

// swapProgram emulates the constant product curve of the token-swap program
// on the in-memory ledger.
func swapProgram(programID, feeOwner solana.PublicKey) memory.Processor {
	return func(state *memory.State, accounts []*solana.AccountMeta, data []byte) error {
		if len(data) < 1 {
			return fmt.Errorf("instruction data too short")
		}
		payload := bin.NewBorshDecoder(data[1:])
		switch swap.InstructionType(data[0]) {
		case swap.InstructionTypeInitialize:
			var args swap.InitializeInstructionArgs
			if err := payload.Decode(&args); err != nil {
				return err
			}
			return initialize(programID, feeOwner, state, accounts, &args)
		case swap.InstructionTypeSwap:
			var args swap.SwapInstructionArgs
			if err := payload.Decode(&args); err != nil {
				return err
			}
			return trade(programID, state, accounts, &args)
		case swap.InstructionTypeDepositSingleTokenTypeExactAmountIn:
			var args swap.DepositSingleInstructionArgs
			if err := payload.Decode(&args); err != nil {
				return err
			}
			return depositSingle(programID, state, accounts, &args)
		default:
			return fmt.Errorf("unsupported instruction %d", data[0])
		}
	}
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

func checkAuthority(programID, pool, authority solana.PublicKey) (uint8, error) {
	expected, bump, err := swap.DerivePoolAuthority(programID, pool)
	if err != nil || !expected.Equals(authority) {
		return 0, errInvalidProgramAddr
	}
	return bump, nil
}

func initialize(programID, feeOwner solana.PublicKey, state *memory.State, accounts []*solana.AccountMeta, args *swap.InitializeInstructionArgs) error {
	k, err := keys(accounts, 7)
	if err != nil {
		return err
	}
	pool, authority, tokenA, tokenB, poolMint, feeAccount, destination := k[0], k[1], k[2], k[3], k[4], k[5], k[6]

	account, ok := state.Account(pool)
	if !ok || !account.Owner.Equals(programID) || len(account.Data) != swap.PoolAccountSize {
		return errInvalidOwner
	}
	if account.Data[1] != 0 {
		return errAlreadyInUse
	}
	bump, err := checkAuthority(programID, pool, authority)
	if err != nil {
		return err
	}

	reserveA, err := state.TokenAccount(tokenA)
	if err != nil {
		return err
	}
	reserveB, err := state.TokenAccount(tokenB)
	if err != nil {
		return err
	}
	for _, reserve := range []*token.Account{reserveA, reserveB} {
		if !reserve.Owner.Equals(authority) {
			return errInvalidOwner
		}
		if reserve.Amount == 0 {
			return errEmptySupply
		}
	}
	if reserveA.Mint.Equals(reserveB.Mint) {
		return errRepeatedMint
	}

	mint, err := state.Mint(poolMint)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil || !mint.MintAuthority.Equals(authority) {
		return errInvalidOwner
	}
	if mint.Supply != 0 {
		return errInvalidSupply
	}

	feeToken, err := state.TokenAccount(feeAccount)
	if err != nil {
		return err
	}
	if !feeToken.Mint.Equals(poolMint) || !feeToken.Owner.Equals(feeOwner) {
		return errIncorrectFeeAccount
	}

	if err = state.Invoke(token.NewMintToInstruction(initialSupply, poolMint, destination, authority, nil).Build(), authority); err != nil {
		return err
	}

	record := &swap.PoolState{
		Version:         swap.CurrentVersion,
		IsInitialized:   true,
		BumpSeed:        bump,
		TokenProgramID:  solana.TokenProgramID,
		TokenAccountA:   tokenA,
		TokenAccountB:   tokenB,
		PoolMint:        poolMint,
		MintA:           reserveA.Mint,
		MintB:           reserveB.Mint,
		FeeAccount:      feeAccount,
		Fees:            args.Fees,
		CurveType:       args.CurveType,
		CurveParameters: args.CurveParameters,
	}
	data, err := record.Marshal()
	if err != nil {
		return err
	}
	account.Data = data
	return nil
}

func loadPool(programID solana.PublicKey, state *memory.State, pool, authority solana.PublicKey) (*swap.PoolState, error) {
	account, ok := state.Account(pool)
	if !ok || !account.Owner.Equals(programID) {
		return nil, errInvalidOwner
	}
	record := new(swap.PoolState)
	if err := record.Unmarshal(account.Data); err != nil {
		return nil, err
	}
	if _, err := checkAuthority(programID, pool, authority); err != nil {
		return nil, err
	}
	return record, nil
}

// fee rounds up, and is zero only for a zero numerator or denominator.
func fee(amount, numerator, denominator uint64) uint64 {
	if numerator == 0 || denominator == 0 || amount == 0 {
		return 0
	}
	f := (amount*numerator + denominator - 1) / denominator
	if f == 0 {
		return 1
	}
	return f
}

func trade(programID solana.PublicKey, state *memory.State, accounts []*solana.AccountMeta, args *swap.SwapInstructionArgs) error {
	k, err := keys(accounts, 9)
	if err != nil {
		return err
	}
	pool, authority, userAuthority, source, poolSource, poolDestination, destination, poolMint, feeAccount :=
		k[0], k[1], k[2], k[3], k[4], k[5], k[6], k[7], k[8]

	record, err := loadPool(programID, state, pool, authority)
	if err != nil {
		return err
	}
	reserves := []solana.PublicKey{record.TokenAccountA, record.TokenAccountB}
	if !(poolSource.Equals(reserves[0]) && poolDestination.Equals(reserves[1])) &&
		!(poolSource.Equals(reserves[1]) && poolDestination.Equals(reserves[0])) {
		return errIncorrectSwapAccount
	}
	if !poolMint.Equals(record.PoolMint) {
		return errIncorrectPoolMint
	}
	if !feeAccount.Equals(record.FeeAccount) {
		return errIncorrectFeeAccount
	}

	from, err := state.TokenAccount(poolSource)
	if err != nil {
		return err
	}
	to, err := state.TokenAccount(poolDestination)
	if err != nil {
		return err
	}

	tradeFee := fee(args.AmountIn, record.Fees.TradeFeeNumerator, record.Fees.TradeFeeDenominator)
	ownerFee := fee(args.AmountIn, record.Fees.OwnerTradeFeeNumerator, record.Fees.OwnerTradeFeeDenominator)
	if tradeFee+ownerFee >= args.AmountIn {
		return errZeroTradingTokens
	}
	in := args.AmountIn - tradeFee - ownerFee
	out := to.Amount * in / (from.Amount + in)
	if out == 0 {
		return errZeroTradingTokens
	}
	if out < args.MinimumAmountOut {
		return errExceededSlippage
	}

	if err = state.Invoke(token.NewTransferInstruction(args.AmountIn, source, poolSource, userAuthority, nil).Build()); err != nil {
		return err
	}
	if err = state.Invoke(token.NewTransferInstruction(out, poolDestination, destination, authority, nil).Build(), authority); err != nil {
		return err
	}

	if ownerFee > 0 {
		mint, err := state.Mint(poolMint)
		if err != nil {
			return err
		}
		lp, err := swap.PoolTokensForDeposit(ownerFee, from.Amount+args.AmountIn-ownerFee, mint.Supply, 0, 0)
		if err != nil {
			return err
		}
		if lp > 0 {
			return state.Invoke(token.NewMintToInstruction(lp, poolMint, feeAccount, authority, nil).Build(), authority)
		}
	}
	return nil
}

func depositSingle(programID solana.PublicKey, state *memory.State, accounts []*solana.AccountMeta, args *swap.DepositSingleInstructionArgs) error {
	k, err := keys(accounts, 8)
	if err != nil {
		return err
	}
	pool, authority, userAuthority, source, tokenA, tokenB, poolMint, destination :=
		k[0], k[1], k[2], k[3], k[4], k[5], k[6], k[7]

	record, err := loadPool(programID, state, pool, authority)
	if err != nil {
		return err
	}
	if !tokenA.Equals(record.TokenAccountA) || !tokenB.Equals(record.TokenAccountB) {
		return errIncorrectSwapAccount
	}
	if !poolMint.Equals(record.PoolMint) {
		return errIncorrectPoolMint
	}

	from, err := state.TokenAccount(source)
	if err != nil {
		return err
	}
	reserveAddress := tokenA
	if from.Mint.Equals(record.MintB) {
		reserveAddress = tokenB
	} else if !from.Mint.Equals(record.MintA) {
		return errIncorrectSwapAccount
	}
	reserve, err := state.TokenAccount(reserveAddress)
	if err != nil {
		return err
	}
	mint, err := state.Mint(poolMint)
	if err != nil {
		return err
	}

	lp, err := swap.PoolTokensForDeposit(
		args.SourceTokenAmount,
		reserve.Amount,
		mint.Supply,
		record.Fees.TradeFeeNumerator,
		record.Fees.TradeFeeDenominator,
	)
	if err != nil {
		return err
	}
	if lp == 0 {
		return errZeroTradingTokens
	}
	if lp < args.MinimumPoolTokenAmount {
		return errExceededSlippage
	}

	if err = state.Invoke(token.NewTransferInstruction(args.SourceTokenAmount, source, reserveAddress, userAuthority, nil).Build()); err != nil {
		return err
	}
	return state.Invoke(token.NewMintToInstruction(lp, poolMint, destination, authority, nil).Build(), authority)
}
