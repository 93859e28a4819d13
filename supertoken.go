package supertoken

import (
	"github.com/krazyTry/super-token-go/swap"
	"github.com/krazyTry/super-token-go/vault"
)

// NewVaultClient creates a new vault client.
//
// Example:
//
// transport := solana.NewRPCTransport(rpcClient, wsClient)
//
// vaultClient := NewVaultClient(transport)
//
// vaultClient.CreateVault(ctx, owner, underlyingMint, term.Start, term.End)
//
// vaultClient.Mint(ctx, owner, underlyingMint, term.Start, term.End, 100)
var NewVaultClient = vault.NewVault

// NewSwapClient creates a new token-swap client.
//
// Example:
//
// swapClient := NewSwapClient(transport, swap.WithMinimumAmountOut(1))
//
// pool, _ := swapClient.CreateLiquidityPool(ctx, owner, mintA, mintB)
//
// swapClient.Swap(ctx, owner, pool.Pool, mintA, 1000)
//
// swapClient.Deposit(ctx, owner, pool.Pool, 1000)
var NewSwapClient = swap.NewSwap
