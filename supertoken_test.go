package supertoken

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	solanago "github.com/krazyTry/super-token-go/solana"
	"github.com/krazyTry/super-token-go/swap"
	"github.com/krazyTry/super-token-go/vault"
)

// Devnet tests run only when SUPER_TOKEN_DEVNET_KEYPAIR names a funded
// solana-keygen file.
func testInit(t *testing.T) (context.Context, *solana.Wallet, *solanago.RPCTransport) {
	t.Helper()

	keypair := os.Getenv("SUPER_TOKEN_DEVNET_KEYPAIR")
	if keypair == "" {
		t.Skip("SUPER_TOKEN_DEVNET_KEYPAIR not set")
	}
	privateKey, err := solana.PrivateKeyFromSolanaKeygenFile(keypair)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	wsClient, err := ws.Connect(ctx, rpc.DevNet_WS)
	require.NoError(t, err)
	t.Cleanup(wsClient.Close)

	rpcClient := rpc.New(rpc.DevNet_RPC)
	return ctx, &solana.Wallet{PrivateKey: privateKey}, solanago.NewRPCTransport(rpcClient, wsClient)
}

func TestDevnetTokenAccounts(t *testing.T) {
	ctx, owner, transport := testInit(t)

	accounts, err := transport.FindTokenAccounts(ctx, owner.PublicKey(), solana.WrappedSol)
	require.NoError(t, err)
	for _, account := range accounts {
		assert.Equal(t, owner.PublicKey(), account.Owner)
		assert.Equal(t, solana.WrappedSol, account.Mint)
	}

	mint, err := solanago.GetToken(ctx, transport, solana.WrappedSol)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), mint.Decimals)
}

func TestDevnetMissingState(t *testing.T) {
	ctx, owner, transport := testInit(t)

	_, err := NewSwapClient(transport).GetPool(ctx, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, swap.ErrPoolNotFound)

	_, err = NewVaultClient(transport).GetVault(ctx, solana.NewWallet().PublicKey(), 1704067200, 1714521600)
	assert.ErrorIs(t, err, vault.ErrVaultNotFound)

	// nothing is submitted for an unknown pool
	_, err = NewSwapClient(transport).Swap(ctx, owner, solana.NewWallet().PublicKey(), solana.WrappedSol, 1)
	assert.True(t, solanago.IsPrecondition(err))
}
