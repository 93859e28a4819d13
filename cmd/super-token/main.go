package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/krazyTry/super-token-go/internal/config"
	solanago "github.com/krazyTry/super-token-go/solana"
	"github.com/krazyTry/super-token-go/swap"
	"github.com/krazyTry/super-token-go/vault"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "super-token",
		Short:         "Principal/yield vaults and token-swap pools on Solana",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("rpc", rpc.DevNet_RPC, "Solana JSON-RPC URL")
	flags.String("ws", rpc.DevNet_WS, "Solana websocket URL, empty to poll for confirmations")
	flags.String("keypair", config.DefaultKeypairPath(), "payer keypair file")
	flags.String("commitment", string(rpc.CommitmentConfirmed), "commitment (processed, confirmed, finalized)")
	flags.Duration("timeout", 90*time.Second, "overall timeout of the operation")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("vault-program", vault.ProgramID.String(), "vault program id")
	flags.String("swap-program", swap.ProgramID.String(), "token-swap program id")
	flags.String("fee-owner", swap.FeeOwner.String(), "owner of new pools' fee accounts")
	flags.Uint64("bootstrap-amount", swap.DefaultBootstrapAmount, "base units moved into each reserve of a new pool")
	flags.Uint64("swap-minimum-out", 0, "minimum output of a swap, 0 accepts any")

	root.AddCommand(
		newCreateVaultCommand(),
		newMintCommand(),
		newRedeemCommand(),
		newCreateLiquidityPoolCommand(),
		newSwapCommand(),
		newDepositCommand(),
	)
	return root
}

// env is what every subcommand runs with.
type env struct {
	cfg       config.Config
	logger    *zap.Logger
	owner     *solana.Wallet
	transport solanago.Transport
}

// run loads configuration, connects to the cluster and calls fn under the
// configured timeout.
func run(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	privateKey, err := solana.PrivateKeyFromSolanaKeygenFile(cfg.Keypair)
	if err != nil {
		return fmt.Errorf("load keypair %s: %w", cfg.Keypair, err)
	}
	owner := &solana.Wallet{PrivateKey: privateKey}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	rpcClient := rpc.New(cfg.RPCURL)
	defer rpcClient.Close()

	var wsClient *ws.Client
	if cfg.WSURL != "" {
		if wsClient, err = ws.Connect(ctx, cfg.WSURL); err != nil {
			logger.Warn("websocket unavailable, polling for confirmations", zap.String("ws", cfg.WSURL), zap.Error(err))
			wsClient = nil
		} else {
			defer wsClient.Close()
		}
	}

	logger.Debug("connected",
		zap.String("rpc", cfg.RPCURL),
		zap.Stringer("payer", owner.PublicKey()),
		zap.String("commitment", string(cfg.Commitment)),
	)

	transport := solanago.NewRPCTransport(rpcClient, wsClient,
		solanago.WithCommitment(cfg.Commitment),
		solanago.WithRPCLogger(logger),
	)

	return fn(ctx, &env{
		cfg:       cfg,
		logger:    logger,
		owner:     owner,
		transport: transport,
	})
}

func (e *env) vault() *vault.Vault {
	return vault.NewVault(e.transport,
		vault.WithProgramID(e.cfg.VaultProgram),
		vault.WithLogger(e.logger),
	)
}

func (e *env) swap() *swap.Swap {
	return swap.NewSwap(e.transport,
		swap.WithProgramID(e.cfg.SwapProgram),
		swap.WithFeeOwner(e.cfg.FeeOwner),
		swap.WithBootstrapAmount(e.cfg.BootstrapAmount),
		swap.WithMinimumAmountOut(e.cfg.SwapMinimumOut),
		swap.WithLogger(e.logger),
	)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}
