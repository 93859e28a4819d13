package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newCreateLiquidityPoolCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-liquidity-pool <mintA> <mintB>",
		Short: "Create a constant product pool seeded from your accounts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, err := parsePublicKey("mintA", args[0])
			if err != nil {
				return err
			}
			mintB, err := parsePublicKey("mintB", args[1])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, e *env) error {
				result, err := e.swap().CreateLiquidityPool(ctx, e.owner, mintA, mintB)
				if err != nil {
					return err
				}
				render(cmd.OutOrStdout(), "Liquidity pool created",
					row{"Pool", result.Pool.String()},
					row{"Authority", result.Authority.String()},
					row{"Reserve A", result.TokenA.String()},
					row{"Reserve B", result.TokenB.String()},
					row{"LP mint", result.PoolMint.String()},
					row{"Fee account", result.FeeAccount.String()},
					row{"LP account", result.Destination.String()},
					signatures(result.Signatures),
				)
				return nil
			})
		},
	}
}

func newSwapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <pool> <fromMint> <amount>",
		Short: "Trade one side of a pool for the other",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := parsePublicKey("pool", args[0])
			if err != nil {
				return err
			}
			fromMint, err := parsePublicKey("fromMint", args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, e *env) error {
				result, err := e.swap().Swap(ctx, e.owner, pool, fromMint, amount)
				if err != nil {
					return err
				}
				render(cmd.OutOrStdout(), "Swapped",
					row{"Pool", result.Pool.String()},
					row{"Amount in", result.AmountIn},
					row{"Minimum out", result.MinimumAmountOut},
					row{"Source", result.Source.String()},
					row{"Destination", result.Destination.String()},
					row{"To mint", result.ToMint.String()},
					row{"Signature", result.Signature.String()},
				)
				return nil
			})
		},
	}
}

func newDepositCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <pool> <amount>",
		Short: "Deposit the same amount of both pool tokens for LP tokens",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := parsePublicKey("pool", args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, e *env) error {
				result, err := e.swap().Deposit(ctx, e.owner, pool, amount)
				if err != nil {
					return err
				}
				rows := []row{
					{"Pool", result.Pool.String()},
					{"Amount", result.Amount},
					{"LP account", result.Destination.String()},
				}
				for _, leg := range result.Legs {
					rows = append(rows, row{"Minimum LP for " + leg.Mint.String(), leg.MinimumPoolTokens})
				}
				rows = append(rows, row{"Signature", result.Signature.String()})
				render(cmd.OutOrStdout(), "Deposited", rows...)
				return nil
			})
		},
	}
}
