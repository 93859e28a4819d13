package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/krazyTry/super-token-go/swap"
	"github.com/krazyTry/super-token-go/vault"
)

// EnvPrefix namespaces every environment variable, e.g. SUPER_TOKEN_RPC.
const EnvPrefix = "SUPER_TOKEN"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	WSURL           string
	Keypair         string
	Commitment      rpc.CommitmentType
	Timeout         time.Duration
	LogLevel        string
	VaultProgram    solana.PublicKey
	SwapProgram     solana.PublicKey
	FeeOwner        solana.PublicKey
	BootstrapAmount uint64
	SwapMinimumOut  uint64
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", rpc.DevNet_RPC)
	v.SetDefault("ws", rpc.DevNet_WS)
	v.SetDefault("keypair", DefaultKeypairPath())
	v.SetDefault("commitment", string(rpc.CommitmentConfirmed))
	v.SetDefault("timeout", 90*time.Second)
	v.SetDefault("log-level", "info")
	v.SetDefault("vault-program", vault.ProgramID.String())
	v.SetDefault("swap-program", swap.ProgramID.String())
	v.SetDefault("fee-owner", swap.FeeOwner.String())
	v.SetDefault("bootstrap-amount", swap.DefaultBootstrapAmount)
	v.SetDefault("swap-minimum-out", uint64(0))

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	commitment, err := parseCommitment(v.GetString("commitment"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		WSURL:           v.GetString("ws"),
		Keypair:         expandHome(v.GetString("keypair")),
		Commitment:      commitment,
		Timeout:         v.GetDuration("timeout"),
		LogLevel:        v.GetString("log-level"),
		BootstrapAmount: v.GetUint64("bootstrap-amount"),
		SwapMinimumOut:  v.GetUint64("swap-minimum-out"),
	}

	for key, dst := range map[string]*solana.PublicKey{
		"vault-program": &cfg.VaultProgram,
		"swap-program":  &cfg.SwapProgram,
		"fee-owner":     &cfg.FeeOwner,
	} {
		if *dst, err = solana.PublicKeyFromBase58(v.GetString(key)); err != nil {
			return Config{}, fmt.Errorf("%s: invalid public key %q: %w", key, v.GetString(key), err)
		}
	}

	if cfg.RPCURL == "" {
		return Config{}, fmt.Errorf("rpc url is required")
	}
	if cfg.BootstrapAmount == 0 {
		return Config{}, fmt.Errorf("bootstrap-amount must be greater than 0")
	}

	return cfg, nil
}

// DefaultKeypairPath is where solana-keygen writes the default wallet.
func DefaultKeypairPath() string {
	return filepath.Join("~", ".config", "solana", "id.json")
}

func parseCommitment(value string) (rpc.CommitmentType, error) {
	switch c := rpc.CommitmentType(strings.ToLower(strings.TrimSpace(value))); c {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return c, nil
	default:
		return "", fmt.Errorf("unsupported commitment %q", value)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
