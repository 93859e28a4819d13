package swap_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/super-token-go/swap"
)

func TestPoolTokensForDeposit(t *testing.T) {
	tests := []struct {
		name                         string
		amount, reserve, supply      uint64
		feeNumerator, feeDenominator uint64
		want                         uint64
	}{
		{"trade fee on half", 1000, 10000, 2000, 25, 10000, 97},
		{"no fee", 10000, 10000, 1000000, 0, 0, 414213},
		{"zero denominator is no fee", 10000, 10000, 1000000, 25, 0, 414213},
		{"zero supply", 1000, 10000, 0, 25, 10000, 0},
		{"dust", 1, 1_000_000_000, 1000, 25, 10000, 0},
		{"just below an integer", 621192284, 683898095637, 823249972480, 25, 10000, 373331570},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := swap.PoolTokensForDeposit(tt.amount, tt.reserve, tt.supply, tt.feeNumerator, tt.feeDenominator)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPoolTokensForDepositEmptyReserve(t *testing.T) {
	_, err := swap.PoolTokensForDeposit(1000, 0, 2000, 25, 10000)
	assert.ErrorIs(t, err, swap.ErrEmptyReserve)
}

func TestPoolTokensForDepositOverflow(t *testing.T) {
	_, err := swap.PoolTokensForDeposit(math.MaxUint64, 1, math.MaxUint64, 0, 0)
	assert.Error(t, err)
}

func TestPoolTokensForDepositFeeLowersResult(t *testing.T) {
	withFee, err := swap.PoolTokensForDeposit(10000, 10000, 1000000, 25, 10000)
	require.NoError(t, err)
	withoutFee, err := swap.PoolTokensForDeposit(10000, 10000, 1000000, 0, 0)
	require.NoError(t, err)
	assert.Less(t, withFee, withoutFee)
}

func TestSqrt(t *testing.T) {
	got, err := swap.Sqrt(decimal.NewFromInt(144), 128)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(12)), got.String())

	root, err := swap.Sqrt(decimal.NewFromInt(2), 128)
	require.NoError(t, err)
	assert.True(t, root.Mul(root).LessThanOrEqual(decimal.NewFromInt(2)), root.String())

	_, err = swap.Sqrt(decimal.NewFromInt(-1), 128)
	assert.Error(t, err)
}
