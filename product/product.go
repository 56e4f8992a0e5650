// Package product implements the lifecycle controller of a tokenized
// structured product: one record per product moving Draft -> Funded ->
// Issued, with payment registration, issuance, funding proceeds, and
// settlement as atomic ledger operations.
package product

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/brcfi/libbrc-go/ledger"
)

// Product is the root record of one structured product.
//
// Signer is the product's own identity: it is the authority of the
// product mint and the owner of every custody account, so funds move
// only when the controller signs. Authority administers the payment
// schedule, Issuer funds obligations and collects proceeds, Investor
// receives the supply at issuance.
type Product struct {
	ID        ledger.ID
	Authority ledger.Key
	Issuer    ledger.Key
	Investor  ledger.Key
	Signer    ledger.Key

	Mint           ledger.ID // product token mint
	FundingMint    ledger.ID // currency the product is paid in
	FundingPerUnit uint64
	Supply         uint64
	Custody        ledger.ID // funding custody account

	Funded            bool
	ProceedsWithdrawn bool
	PaymentCount      int
	IssuedAt          *int64 // unix seconds, nil while draft
}

// Issued reports whether the product has been issued.
func (p *Product) Issued() bool { return p.IssuedAt != nil }

// FundingTotal returns the full funding obligation,
// Supply * FundingPerUnit.
func (p *Product) FundingTotal() (uint64, error) {
	total := new(uint256.Int).Mul(
		uint256.NewInt(p.Supply),
		uint256.NewInt(p.FundingPerUnit),
	)
	if !total.IsUint64() {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, p.Supply, p.FundingPerUnit)
	}
	return total.Uint64(), nil
}

// ProductID derives the product record ID from its mint.
func ProductID(mint ledger.ID) ledger.ID {
	return ledger.DeriveID([]byte("product"), mint[:])
}

// ScheduleID derives the snapshot schedule record ID of a product.
func ScheduleID(product ledger.ID) ledger.ID {
	return ledger.DeriveID([]byte("schedule"), product[:])
}

// RegistryID derives the payment registry record ID of a product.
func RegistryID(product ledger.ID) ledger.ID {
	return ledger.DeriveID([]byte("payments"), product[:])
}

// BalanceID derives the snapshot balance record ID of a token account.
func BalanceID(account ledger.ID) ledger.ID {
	return ledger.DeriveID([]byte("balances"), account[:])
}
