package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/super-token-go/swap"
	"github.com/krazyTry/super-token-go/vault"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.String("commitment", "", "")
	flags.Uint64("bootstrap-amount", 0, "")
	return flags
}

// chdir moves into dir so no ./config.* of the working tree is picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, rpc.DevNet_RPC, cfg.RPCURL)
	assert.Equal(t, rpc.DevNet_WS, cfg.WSURL)
	assert.Equal(t, rpc.CommitmentConfirmed, cfg.Commitment)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, vault.ProgramID, cfg.VaultProgram)
	assert.Equal(t, swap.ProgramID, cfg.SwapProgram)
	assert.Equal(t, swap.FeeOwner, cfg.FeeOwner)
	assert.Equal(t, swap.DefaultBootstrapAmount, cfg.BootstrapAmount)
	assert.Zero(t, cfg.SwapMinimumOut)
	assert.True(t, filepath.IsAbs(cfg.Keypair) || cfg.Keypair == DefaultKeypairPath())
	assert.Equal(t, "id.json", filepath.Base(cfg.Keypair))
}

func TestLoadPrecedence(t *testing.T) {
	chdir(t, t.TempDir())

	owner := solana.NewWallet().PublicKey()
	path := filepath.Join(t.TempDir(), "super-token.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"rpc: http://file:8899\n"+
			"commitment: finalized\n"+
			"fee-owner: "+owner.String()+"\n"+
			"swap-minimum-out: 42\n",
	), 0o600))

	t.Setenv("SUPER_TOKEN_COMMITMENT", "processed")
	t.Setenv("SUPER_TOKEN_TIMEOUT", "5s")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--rpc", "http://flag:8899"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	// flag over file
	assert.Equal(t, "http://flag:8899", cfg.RPCURL)
	// env over file
	assert.Equal(t, rpc.CommitmentProcessed, cfg.Commitment)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, owner, cfg.FeeOwner)
	assert.Equal(t, uint64(42), cfg.SwapMinimumOut)
	// unset flags keep the default
	assert.Equal(t, swap.DefaultBootstrapAmount, cfg.BootstrapAmount)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("SUPER_TOKEN_COMMITMENT", "eventually")
	_, err := Load("", nil)
	assert.ErrorContains(t, err, "unsupported commitment")

	t.Setenv("SUPER_TOKEN_COMMITMENT", "confirmed")
	t.Setenv("SUPER_TOKEN_FEE_OWNER", "not-a-key")
	_, err = Load("", nil)
	assert.ErrorContains(t, err, "fee-owner")

	t.Setenv("SUPER_TOKEN_FEE_OWNER", swap.FeeOwner.String())
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "read config")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "solana", "id.json"), expandHome(DefaultKeypairPath()))
	assert.Equal(t, "/tmp/id.json", expandHome("/tmp/id.json"))
	assert.Equal(t, "~user/id.json", expandHome("~user/id.json"))
}
