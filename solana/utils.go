package solana

import (
	"context"
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

func GetLatestBlockhash(ctx context.Context, rpcClient *rpc.Client, commitment rpc.CommitmentType) (solana.Hash, error) {
	recent, err := rpcClient.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return solana.Hash{}, err
	}
	return recent.Value.Blockhash, nil
}

func discriminator(namespace, name string) [8]byte {
	hash := sha256.Sum256([]byte(namespace + ":" + name))
	var out [8]byte
	copy(out[:], hash[:8])
	return out
}

// AccountDiscriminator is the 8-byte Anchor prefix of an account named name.
func AccountDiscriminator(name string) [8]byte {
	return discriminator("account", name)
}

// InstructionDiscriminator is the 8-byte Anchor prefix of instruction name.
func InstructionDiscriminator(name string) [8]byte {
	return discriminator("global", name)
}
