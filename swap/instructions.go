package swap

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type InitializeInstructionArgs struct {
	Fees            Fees
	CurveType       CurveType
	CurveParameters [32]byte
}

type InitializeInstructionAccounts struct {
	Pool        solana.PublicKey
	Authority   solana.PublicKey
	TokenA      solana.PublicKey
	TokenB      solana.PublicKey
	PoolMint    solana.PublicKey
	FeeAccount  solana.PublicKey
	Destination solana.PublicKey
}

func NewInitializeInstruction(
	programID solana.PublicKey,
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeInstruction(InstructionTypeInitialize, *args)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Pool, true, false),
		solana.NewAccountMeta(accounts.Authority, false, false),
		solana.NewAccountMeta(accounts.TokenA, false, false),
		solana.NewAccountMeta(accounts.TokenB, false, false),
		solana.NewAccountMeta(accounts.PoolMint, true, false),
		solana.NewAccountMeta(accounts.FeeAccount, false, false),
		solana.NewAccountMeta(accounts.Destination, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}, data), nil
}

type SwapInstructionArgs struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

type SwapInstructionAccounts struct {
	Pool                  solana.PublicKey
	Authority             solana.PublicKey
	UserTransferAuthority solana.PublicKey
	Source                solana.PublicKey
	PoolSource            solana.PublicKey
	PoolDestination       solana.PublicKey
	Destination           solana.PublicKey
	PoolMint              solana.PublicKey
	FeeAccount            solana.PublicKey
	TokenProgram          solana.PublicKey
}

func NewSwapInstruction(
	programID solana.PublicKey,
	accounts *SwapInstructionAccounts,
	args *SwapInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeInstruction(InstructionTypeSwap, *args)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Pool, false, false),
		solana.NewAccountMeta(accounts.Authority, false, false),
		solana.NewAccountMeta(accounts.UserTransferAuthority, false, true),
		solana.NewAccountMeta(accounts.Source, true, false),
		solana.NewAccountMeta(accounts.PoolSource, true, false),
		solana.NewAccountMeta(accounts.PoolDestination, true, false),
		solana.NewAccountMeta(accounts.Destination, true, false),
		solana.NewAccountMeta(accounts.PoolMint, true, false),
		solana.NewAccountMeta(accounts.FeeAccount, true, false),
		solana.NewAccountMeta(tokenProgramOrDefault(accounts.TokenProgram), false, false),
	}, data), nil
}

type DepositSingleInstructionArgs struct {
	SourceTokenAmount      uint64
	MinimumPoolTokenAmount uint64
}

type DepositSingleInstructionAccounts struct {
	Pool                  solana.PublicKey
	Authority             solana.PublicKey
	UserTransferAuthority solana.PublicKey
	Source                solana.PublicKey
	TokenA                solana.PublicKey
	TokenB                solana.PublicKey
	PoolMint              solana.PublicKey
	Destination           solana.PublicKey
	TokenProgram          solana.PublicKey
}

// NewDepositSingleInstruction builds DepositSingleTokenTypeExactAmountIn.
func NewDepositSingleInstruction(
	programID solana.PublicKey,
	accounts *DepositSingleInstructionAccounts,
	args *DepositSingleInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeInstruction(InstructionTypeDepositSingleTokenTypeExactAmountIn, *args)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Pool, false, false),
		solana.NewAccountMeta(accounts.Authority, false, false),
		solana.NewAccountMeta(accounts.UserTransferAuthority, false, true),
		solana.NewAccountMeta(accounts.Source, true, false),
		solana.NewAccountMeta(accounts.TokenA, true, false),
		solana.NewAccountMeta(accounts.TokenB, true, false),
		solana.NewAccountMeta(accounts.PoolMint, true, false),
		solana.NewAccountMeta(accounts.Destination, true, false),
		solana.NewAccountMeta(tokenProgramOrDefault(accounts.TokenProgram), false, false),
	}, data), nil
}

func tokenProgramOrDefault(programID solana.PublicKey) solana.PublicKey {
	if programID.IsZero() {
		return solana.TokenProgramID
	}
	return programID
}

// encodeInstruction writes the one-byte tag followed by args in little endian.
func encodeInstruction(tag InstructionType, args any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(tag))
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("encode instruction args: %w", err)
	}
	return buf.Bytes(), nil
}
