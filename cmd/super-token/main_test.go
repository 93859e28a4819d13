package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	solanago "github.com/krazyTry/super-token-go/solana"
	"github.com/krazyTry/super-token-go/swap"
)

func execute(args ...string) error {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	return root.Execute()
}

func TestCommandsRejectBadArguments(t *testing.T) {
	mint := solana.NewWallet().PublicKey().String()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"create-vault", mint, "2024-01-01"}, "accepts 3 arg(s)"},
		{[]string{"mint", "not-a-key", "2024-01-01", "2024-05-01", "1"}, "invalid mint"},
		{[]string{"mint", mint, "2024-01-01", "2024-05-01", "1.5"}, "invalid amount"},
		{[]string{"redeem", mint, "2024-05-01", "2024-01-01", "1"}, "end"},
		{[]string{"create-liquidity-pool", mint}, "accepts 2 arg(s)"},
		{[]string{"swap", mint, "bad", "1"}, "invalid fromMint"},
		{[]string{"deposit", mint, "ten"}, "invalid amount"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			err := execute(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, solanago.Precondition("mint "+solana.SystemProgramID.String(), solanago.ErrTokenAccountNotFound))
	assert.Contains(t, buf.String(), "precondition not met")
	assert.Contains(t, buf.String(), solanago.ErrTokenAccountNotFound.Error())

	buf.Reset()
	printError(&buf, fmt.Errorf("swap on pool: %w", &solanago.RejectionError{
		Reason: "Swap instruction exceeds desired slippage limit",
		Logs:   []string{"Program log: Error: ExceededSlippage"},
	}))
	assert.Contains(t, buf.String(), "exceeds desired slippage")
	assert.Contains(t, buf.String(), "Program log: Error: ExceededSlippage")

	buf.Reset()
	pool := solana.NewWallet().PublicKey()
	printError(&buf, &swap.PartialPoolError{
		Pool:      pool,
		Stage:     swap.StagePool,
		Committed: make([]solana.Signature, 2),
		Err:       errors.New("boom"),
	})
	assert.Contains(t, buf.String(), pool.String())
	assert.Contains(t, buf.String(), swap.StagePool)
}
