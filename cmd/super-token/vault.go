package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/krazyTry/super-token-go/vault"
)

func newCreateVaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-vault <mint> <start> <end>",
		Short: "Create the vault of an underlying mint for a term",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, term, err := parseVaultArgs(args)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, e *env) error {
				result, err := e.vault().CreateVault(ctx, e.owner, mint, term.Start, term.End)
				if err != nil {
					return err
				}
				render(cmd.OutOrStdout(), "Vault created",
					row{"Vault", result.Vault.String()},
					row{"Bump", result.Bump},
					row{"Term", termString(term)},
					row{"Principal mint", result.MintP.String()},
					row{"Yield mint", result.MintY.String()},
					row{"Custody", result.TokenU.String()},
					row{"Signature", result.Signature.String()},
				)
				return nil
			})
		},
	}
}

func newMintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mint <mint> <start> <end> <amount>",
		Short: "Deposit underlying tokens for principal and yield tokens",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, term, err := parseVaultArgs(args)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[3])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, e *env) error {
				result, err := e.vault().Mint(ctx, e.owner, mint, term.Start, term.End, amount)
				if err != nil {
					return err
				}
				render(cmd.OutOrStdout(), "Minted",
					row{"Vault", result.Vault.String()},
					row{"Amount", result.Amount},
					row{"From", result.TokenUFrom.String()},
					row{"Custody", result.TokenU.String()},
					row{"Principal account", result.TokenP.String()},
					row{"Yield account", result.TokenY.String()},
					row{"Signature", result.Signature.String()},
				)
				return nil
			})
		},
	}
}

func newRedeemCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "redeem <mint> <start> <end> <amount>",
		Short: "Burn principal and yield tokens for underlying tokens",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, term, err := parseVaultArgs(args)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[3])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, e *env) error {
				result, err := e.vault().Redeem(ctx, e.owner, mint, term.Start, term.End, amount)
				if err != nil {
					return err
				}
				render(cmd.OutOrStdout(), "Redeemed",
					row{"Vault", result.Vault.String()},
					row{"Amount", result.Amount},
					row{"To", result.TokenUTo.String()},
					row{"Custody", result.TokenU.String()},
					row{"Principal account", result.TokenP.String()},
					row{"Yield account", result.TokenY.String()},
					row{"Signature", result.Signature.String()},
				)
				return nil
			})
		},
	}
}

func parseVaultArgs(args []string) (solana.PublicKey, vault.Term, error) {
	mint, err := parsePublicKey("mint", args[0])
	if err != nil {
		return solana.PublicKey{}, vault.Term{}, err
	}
	term, err := vault.ParseTerm(args[1], args[2])
	if err != nil {
		return solana.PublicKey{}, vault.Term{}, err
	}
	return mint, term, nil
}

func parsePublicKey(name, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return key, nil
}

// parseAmount reads an amount in the mint's base units.
func parseAmount(value string) (uint64, error) {
	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: must be an integer number of base units", value)
	}
	return amount, nil
}

func termString(term vault.Term) string {
	return fmt.Sprintf("%d - %d", term.Start, term.End)
}
