// Package barrier implements the barrier-linked principal repayment of
// a reverse convertible note: a pure final-principal calculation and
// the price-authority note record that feeds an oracle observation into
// the product's principal payment.
package barrier

import "github.com/holiman/uint256"

// FinalPrincipal computes the principal repaid at maturity.
//
// If the final price is at or below the barrier the knock-in has
// occurred and the principal is scaled by finalPrice/initialPrice,
// truncating toward zero (the division never overpays). Otherwise the
// full initial principal is returned. The intermediate product is
// computed at 256-bit width, so two 64-bit inputs cannot overflow
// before the division.
func FinalPrincipal(initialPrincipal, initialPrice, barrier, finalPrice uint64) (uint64, error) {
	if finalPrice > barrier {
		return initialPrincipal, nil
	}
	if initialPrice == 0 {
		return 0, ErrZeroInitialPrice
	}

	p := new(uint256.Int).Mul(
		uint256.NewInt(initialPrincipal),
		uint256.NewInt(finalPrice),
	)
	p.Div(p, uint256.NewInt(initialPrice))
	if !p.IsUint64() {
		return 0, ErrOverflow
	}
	return p.Uint64(), nil
}

// BarrierFromBasisPoints scales an initial fixing price by a barrier
// level expressed in basis points (10000 = 100%).
func BarrierFromBasisPoints(initialPrice, basisPoints uint64) (uint64, error) {
	b := new(uint256.Int).Mul(uint256.NewInt(initialPrice), uint256.NewInt(basisPoints))
	b.Div(b, uint256.NewInt(10000))
	if !b.IsUint64() {
		return 0, ErrOverflow
	}
	return b.Uint64(), nil
}
