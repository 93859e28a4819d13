package swap

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// sqrtPrecision is the mantissa size, in bits, of square roots.
const sqrtPrecision = 256

var one = decimal.NewFromInt(1)

func Sqrt(x decimal.Decimal, prec uint) (decimal.Decimal, error) {
	return sqrtRat(x.Rat(), prec)
}

// sqrtRat rounds toward zero at every step, so the result never exceeds the
// exact root.
func sqrtRat(x *big.Rat, prec uint) (decimal.Decimal, error) {
	if x.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("sqrt of negative value %s", x.FloatString(18))
	}
	f := new(big.Float).SetPrec(prec).SetMode(big.ToZero).SetRat(x)
	root := new(big.Float).SetPrec(prec).SetMode(big.ToZero).Sqrt(f)
	// prec fractional digits print any root >= 1 exactly
	return decimal.NewFromString(root.Text('f', int(prec)))
}

// PoolTokensForDeposit estimates the LP tokens minted for a single-sided
// deposit of sourceAmount into a reserve holding reserveBalance, with
// poolTokenSupply LP tokens outstanding. Half of the deposit is charged the
// trade fee; a zero feeDenominator means no fee. The result is a floor and
// never exceeds the exact value.
//
//	fee     = (sourceAmount / 2) * (feeNumerator / feeDenominator)
//	ratio   = sqrt((sourceAmount - fee) / reserveBalance + 1)
//	result  = floor(poolTokenSupply * (ratio - 1))
func PoolTokensForDeposit(
	sourceAmount uint64,
	reserveBalance uint64,
	poolTokenSupply uint64,
	feeNumerator uint64,
	feeDenominator uint64,
) (uint64, error) {
	if reserveBalance == 0 {
		return 0, ErrEmptyReserve
	}

	// ratio^2 = sourceAmount * (2*feeDenominator - feeNumerator) / (2*feeDenominator * reserveBalance) + 1
	numerator := new(big.Int).SetUint64(sourceAmount)
	denominator := new(big.Int).SetUint64(reserveBalance)
	if feeDenominator != 0 {
		twiceDenominator := new(big.Int).Lsh(new(big.Int).SetUint64(feeDenominator), 1)
		numerator.Mul(numerator, new(big.Int).Sub(twiceDenominator, new(big.Int).SetUint64(feeNumerator)))
		denominator.Mul(denominator, twiceDenominator)
	}
	squared := new(big.Rat).SetFrac(numerator, denominator)
	squared.Add(squared, big.NewRat(1, 1))

	ratio, err := sqrtRat(squared, sqrtPrecision)
	if err != nil {
		return 0, err
	}

	result := decimal.NewFromUint64(poolTokenSupply).Mul(ratio.Sub(one)).Floor()
	if result.Sign() < 0 {
		return 0, nil
	}
	out := result.BigInt()
	if !out.IsUint64() {
		return 0, fmt.Errorf("pool token amount %s overflows u64", out)
	}
	return out.Uint64(), nil
}
