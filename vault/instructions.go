package vault

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	solanago "github.com/krazyTry/super-token-go/solana"
)

var (
	CreateVaultDiscriminator = solanago.InstructionDiscriminator(InstructionCreateVault)
	MintToDiscriminator      = solanago.InstructionDiscriminator(InstructionMintTo)
	RedeemDiscriminator      = solanago.InstructionDiscriminator(InstructionRedeem)
)

type CreateVaultInstructionArgs struct {
	Bump      uint8
	StartTime int64
	EndTime   int64
}

type CreateVaultInstructionAccounts struct {
	MintU  solana.PublicKey
	TokenU solana.PublicKey
	MintY  solana.PublicKey
	MintP  solana.PublicKey
	Vault  solana.PublicKey
	Payer  solana.PublicKey
}

func NewCreateVaultInstruction(
	programID solana.PublicKey,
	accounts *CreateVaultInstructionAccounts,
	args *CreateVaultInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeInstruction(CreateVaultDiscriminator, *args)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.MintU, false, false),
		solana.NewAccountMeta(accounts.TokenU, true, true),
		solana.NewAccountMeta(accounts.MintY, true, true),
		solana.NewAccountMeta(accounts.MintP, true, true),
		solana.NewAccountMeta(accounts.Vault, true, false),
		solana.NewAccountMeta(accounts.Payer, true, true),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}, data), nil
}

// MintToInstructionArgs carry the term so the program can re-derive the vault.
type MintToInstructionArgs struct {
	Bump      uint8
	StartTime int64
	EndTime   int64
	Amount    uint64
}

type MintToInstructionAccounts struct {
	Authority  solana.PublicKey
	Vault      solana.PublicKey
	MintU      solana.PublicKey
	MintP      solana.PublicKey
	MintY      solana.PublicKey
	TokenP     solana.PublicKey
	TokenY     solana.PublicKey
	TokenU     solana.PublicKey
	TokenUFrom solana.PublicKey
}

func NewMintToInstruction(
	programID solana.PublicKey,
	accounts *MintToInstructionAccounts,
	args *MintToInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeInstruction(MintToDiscriminator, *args)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Authority, false, true),
		solana.NewAccountMeta(accounts.Vault, false, false),
		solana.NewAccountMeta(accounts.MintU, true, false),
		solana.NewAccountMeta(accounts.MintP, true, false),
		solana.NewAccountMeta(accounts.MintY, true, false),
		solana.NewAccountMeta(accounts.TokenP, true, false),
		solana.NewAccountMeta(accounts.TokenY, true, false),
		solana.NewAccountMeta(accounts.TokenU, true, false),
		solana.NewAccountMeta(accounts.TokenUFrom, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}, data), nil
}

type RedeemInstructionArgs struct {
	Bump      uint8
	StartTime int64
	EndTime   int64
	Amount    uint64
}

type RedeemInstructionAccounts struct {
	Authority solana.PublicKey
	Vault     solana.PublicKey
	MintU     solana.PublicKey
	MintP     solana.PublicKey
	MintY     solana.PublicKey
	TokenP    solana.PublicKey
	TokenY    solana.PublicKey
	TokenU    solana.PublicKey
	TokenUTo  solana.PublicKey
}

func NewRedeemInstruction(
	programID solana.PublicKey,
	accounts *RedeemInstructionAccounts,
	args *RedeemInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeInstruction(RedeemDiscriminator, *args)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Authority, false, true),
		solana.NewAccountMeta(accounts.Vault, false, false),
		solana.NewAccountMeta(accounts.MintU, true, false),
		solana.NewAccountMeta(accounts.MintP, true, false),
		solana.NewAccountMeta(accounts.MintY, true, false),
		solana.NewAccountMeta(accounts.TokenP, true, false),
		solana.NewAccountMeta(accounts.TokenY, true, false),
		solana.NewAccountMeta(accounts.TokenU, true, false),
		solana.NewAccountMeta(accounts.TokenUTo, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}, data), nil
}

func encodeInstruction(discriminator [8]byte, args any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("encode instruction args: %w", err)
	}
	return buf.Bytes(), nil
}
