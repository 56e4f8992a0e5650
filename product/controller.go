package product

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/brcfi/libbrc-go/barrier"
	"github.com/brcfi/libbrc-go/ledger"
	"github.com/brcfi/libbrc-go/payment"
	"github.com/brcfi/libbrc-go/schedule"
	"github.com/brcfi/libbrc-go/snapshot"
	"github.com/brcfi/libbrc-go/token"
	"github.com/brcfi/libbrc-go/treasury"
)

// Controller drives product lifecycles. Every operation runs as one
// ledger transaction: checks first, then mutations, so a failed
// operation leaves no partial state behind.
type Controller struct {
	store   ledger.Ledger
	tokens  *token.Engine
	journal *ledger.Journal
	log     *zap.Logger

	mu      sync.Mutex
	signers map[ledger.ID]*ledger.Keypair
}

// NewController creates a controller over the given record store and
// token engine. The journal is optional; a nil logger disables logging.
func NewController(store ledger.Ledger, tokens *token.Engine, journal *ledger.Journal, log *zap.Logger) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store", ErrNilParam)
	}
	if tokens == nil {
		return nil, fmt.Errorf("%w: token engine", ErrNilParam)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		store:   store,
		tokens:  tokens,
		journal: journal,
		log:     log,
		signers: make(map[ledger.ID]*ledger.Keypair),
	}, nil
}

// CreateParams describes a new product.
type CreateParams struct {
	Authority      ledger.Key
	Issuer         ledger.Key
	Investor       ledger.Key
	Supply         uint64
	FundingMint    ledger.ID
	FundingPerUnit uint64
	MaxSnapshots   int
	Seed           []byte // product mint seed
}

// Create allocates a draft product: its mint, funding custody account,
// empty schedule, and empty payment registry.
func (c *Controller) Create(params CreateParams) (Product, error) {
	if params.Supply == 0 {
		return Product{}, ErrZeroSupply
	}
	// Fund, withdrawals, and settlements transfer the funding mint while
	// the product record is held open, so its hook (if any) would
	// re-enter the store. Product mints cannot fund other products.
	if c.tokens.Hooked(params.FundingMint) {
		return Product{}, fmt.Errorf("%w: %s", ErrHookedFundingMint, params.FundingMint)
	}
	sched, err := schedule.New(params.Authority, params.MaxSnapshots)
	if err != nil {
		return Product{}, err
	}

	signer, err := ledger.NewKeypair()
	if err != nil {
		return Product{}, err
	}
	mint, err := c.tokens.CreateMint(signer.Key(), 0, params.Seed)
	if err != nil {
		return Product{}, err
	}
	custody, err := c.tokens.CreateSubAccount(params.FundingMint, signer.Key(), []byte("funding"))
	if err != nil {
		return Product{}, err
	}

	prod := Product{
		ID:             ProductID(mint),
		Authority:      params.Authority,
		Issuer:         params.Issuer,
		Investor:       params.Investor,
		Signer:         signer.Key(),
		Mint:           mint,
		FundingMint:    params.FundingMint,
		FundingPerUnit: params.FundingPerUnit,
		Supply:         params.Supply,
		Custody:        custody,
	}

	err = c.store.Update(func(tx ledger.Tx) error {
		if err := tx.Create(prod.ID, prod); err != nil {
			return err
		}
		if err := tx.Create(ScheduleID(prod.ID), sched); err != nil {
			return err
		}
		return tx.Create(RegistryID(prod.ID), payment.NewRegistry(prod.ID))
	})
	if err != nil {
		return Product{}, err
	}

	if err := c.tokens.SetTransferHook(mint, &mintHook{controller: c, product: prod.ID}); err != nil {
		return Product{}, err
	}

	c.mu.Lock()
	c.signers[prod.ID] = signer
	c.mu.Unlock()

	c.journalOp("product.create", prod.ID, ScheduleID(prod.ID), RegistryID(prod.ID))
	c.log.Info("product created",
		zap.String("product", prod.ID.String()),
		zap.String("mint", mint.String()),
		zap.Uint64("supply", prod.Supply))
	return prod, nil
}

// Get returns the product record.
func (c *Controller) Get(id ledger.ID) (Product, error) {
	var prod Product
	err := c.store.View(func(tx ledger.Tx) error {
		return tx.Get(id, &prod)
	})
	return prod, err
}

// Schedule returns the product's snapshot schedule record.
func (c *Controller) Schedule(id ledger.ID) (schedule.Schedule, error) {
	var sched schedule.Schedule
	err := c.store.View(func(tx ledger.Tx) error {
		return tx.Get(ScheduleID(id), &sched)
	})
	return sched, err
}

// Payments returns the product's payment registry record.
func (c *Controller) Payments(id ledger.ID) (payment.Registry, error) {
	var reg payment.Registry
	err := c.store.View(func(tx ledger.Tx) error {
		return tx.Get(RegistryID(id), &reg)
	})
	return reg, err
}

// BalanceRecord returns the snapshot balance record of a token account.
func (c *Controller) BalanceRecord(account ledger.ID) (snapshot.BalanceRecord, error) {
	var rec snapshot.BalanceRecord
	err := c.store.View(func(tx ledger.Tx) error {
		return tx.Get(BalanceID(account), &rec)
	})
	return rec, err
}

// AddFixedPayment registers a payment priced at creation. Only the
// product authority may add payments, and only before issuance.
func (c *Controller) AddFixedPayment(productID ledger.ID, caller ledger.Key, principal bool, offset int64, pricePerUnit uint64) (ledger.ID, error) {
	return c.addPayment(productID, caller, func(reg *payment.Registry, sched *schedule.Schedule) (*payment.Payment, error) {
		return reg.AddFixed(sched, principal, offset, pricePerUnit)
	})
}

// AddVariablePayment registers a payment priced later by
// priceAuthority.
func (c *Controller) AddVariablePayment(productID ledger.ID, caller ledger.Key, principal bool, offset int64, priceAuthority ledger.Key) (ledger.ID, error) {
	return c.addPayment(productID, caller, func(reg *payment.Registry, sched *schedule.Schedule) (*payment.Payment, error) {
		return reg.AddVariable(sched, principal, offset, priceAuthority)
	})
}

func (c *Controller) addPayment(productID ledger.ID, caller ledger.Key, add func(*payment.Registry, *schedule.Schedule) (*payment.Payment, error)) (ledger.ID, error) {
	var paymentID ledger.ID
	err := c.store.Update(func(tx ledger.Tx) error {
		var prod Product
		if err := tx.Get(productID, &prod); err != nil {
			return err
		}
		if caller != prod.Authority {
			return fmt.Errorf("%w: %s is not the product authority", ErrUnauthorized, caller)
		}
		if prod.Issued() {
			return fmt.Errorf("%w: at %d", ErrAlreadyIssued, *prod.IssuedAt)
		}

		var sched schedule.Schedule
		if err := tx.Get(ScheduleID(productID), &sched); err != nil {
			return err
		}
		var reg payment.Registry
		if err := tx.Get(RegistryID(productID), &reg); err != nil {
			return err
		}

		p, err := add(&reg, &sched)
		if err != nil {
			return err
		}
		paymentID = p.ID
		prod.PaymentCount++

		if err := tx.Put(productID, prod); err != nil {
			return err
		}
		if err := tx.Put(ScheduleID(productID), sched); err != nil {
			return err
		}
		return tx.Put(RegistryID(productID), reg)
	})
	if err != nil {
		return ledger.ID{}, err
	}
	c.journalOp("product.add_payment", productID, paymentID)
	return paymentID, nil
}

// Fund pays the full funding obligation into the product's custody
// account. The payer signs the token transfer from src; sig is over
// token.TransferDigest(src, custody, Supply*FundingPerUnit).
func (c *Controller) Fund(productID ledger.ID, payer ledger.Key, sig []byte, src ledger.ID, now int64) error {
	err := c.store.Update(func(tx ledger.Tx) error {
		var prod Product
		if err := tx.Get(productID, &prod); err != nil {
			return err
		}
		if prod.Funded {
			return ErrAlreadyFunded
		}
		total, err := prod.FundingTotal()
		if err != nil {
			return err
		}
		if err := c.tokens.Transfer(payer, sig, src, prod.Custody, total, now); err != nil {
			return err
		}
		prod.Funded = true
		return tx.Put(productID, prod)
	})
	if err != nil {
		return err
	}
	c.journalOp("product.fund", productID)
	c.log.Info("product funded", zap.String("product", productID.String()))
	return nil
}

// Issue activates the product: the schedule is frozen at now, the full
// supply is minted to the investor, and the investor's snapshot record
// is seeded with the supply at slot 0. Only the issuer may issue, only
// once, only after funding, and only with a principal payment defined.
func (c *Controller) Issue(productID ledger.ID, caller ledger.Key, now int64) error {
	signer, err := c.signerFor(productID)
	if err != nil {
		return err
	}

	var investorAcc ledger.ID
	err = c.store.Update(func(tx ledger.Tx) error {
		var prod Product
		if err := tx.Get(productID, &prod); err != nil {
			return err
		}
		if caller != prod.Issuer {
			return fmt.Errorf("%w: %s is not the issuer", ErrUnauthorized, caller)
		}
		if prod.Issued() {
			return fmt.Errorf("%w: at %d", ErrAlreadyIssued, *prod.IssuedAt)
		}
		if !prod.Funded {
			return ErrUnfunded
		}

		var sched schedule.Schedule
		if err := tx.Get(ScheduleID(productID), &sched); err != nil {
			return err
		}
		var reg payment.Registry
		if err := tx.Get(RegistryID(productID), &reg); err != nil {
			return err
		}
		if reg.Principal() == nil {
			return ErrPrincipalUndefined
		}

		if err := sched.Activate(now); err != nil {
			return err
		}

		// Account creation is permissionless and engine state survives a
		// rolled-back update, so an account that already exists is fine;
		// the ID is deterministic either way.
		investorAcc = token.AccountID(prod.Mint, prod.Investor)
		if _, err := c.tokens.CreateAccount(prod.Mint, prod.Investor); err != nil && !errors.Is(err, token.ErrAccountExists) {
			return err
		}
		mintSig, err := signer.SignOp(token.MintDigest(investorAcc, prod.Supply))
		if err != nil {
			return err
		}
		if err := c.tokens.MintTo(signer.Key(), mintSig, investorAcc, prod.Supply, now); err != nil {
			return err
		}

		// Seed the issuance balance at slot 0. The hook rejects all
		// transfers before the first boundary, so this observation is
		// the only way balances enter the snapshot store pre-window.
		rec, err := snapshot.NewRecord(&sched)
		if err != nil {
			return err
		}
		if err := rec.Observe(0, prod.Supply); err != nil {
			return err
		}
		if err := tx.Put(BalanceID(investorAcc), rec); err != nil {
			return err
		}

		prod.IssuedAt = &now
		if err := tx.Put(productID, prod); err != nil {
			return err
		}
		return tx.Put(ScheduleID(productID), sched)
	})
	if err != nil {
		return err
	}
	c.journalOp("product.issue", productID, investorAcc)
	c.log.Info("product issued",
		zap.String("product", productID.String()),
		zap.String("investor_account", investorAcc.String()),
		zap.Int64("at", now))
	return nil
}

// WithdrawFundingProceeds pays the funding obligation out of custody to
// dest. Only the issuer, only after issuance, only once.
func (c *Controller) WithdrawFundingProceeds(productID ledger.ID, caller ledger.Key, dest ledger.ID, now int64) error {
	signer, err := c.signerFor(productID)
	if err != nil {
		return err
	}
	err = c.store.Update(func(tx ledger.Tx) error {
		var prod Product
		if err := tx.Get(productID, &prod); err != nil {
			return err
		}
		if caller != prod.Issuer {
			return fmt.Errorf("%w: %s is not the issuer", ErrUnauthorized, caller)
		}
		if !prod.Issued() {
			return ErrNotIssued
		}
		if prod.ProceedsWithdrawn {
			return ErrProceedsWithdrawn
		}
		total, err := prod.FundingTotal()
		if err != nil {
			return err
		}
		transferSig, err := signer.SignOp(token.TransferDigest(prod.Custody, dest, total))
		if err != nil {
			return err
		}
		if err := c.tokens.Transfer(signer.Key(), transferSig, prod.Custody, dest, total, now); err != nil {
			return err
		}
		prod.ProceedsWithdrawn = true
		return tx.Put(productID, prod)
	})
	if err != nil {
		return err
	}
	c.journalOp("product.withdraw_proceeds", productID)
	return nil
}

// PullPayment funds a priced payment's custody account with the full
// obligation (Supply * PricePerUnit) from the issuer's treasury. The
// product's signer must hold a withdraw grant on the wallet. Pulling is
// one-shot per payment.
func (c *Controller) PullPayment(productID, paymentID ledger.ID, wallet *treasury.Wallet, src ledger.ID, now int64) error {
	if wallet == nil {
		return fmt.Errorf("%w: wallet", ErrNilParam)
	}
	signer, err := c.signerFor(productID)
	if err != nil {
		return err
	}

	var custody ledger.ID
	err = c.store.Update(func(tx ledger.Tx) error {
		var prod Product
		if err := tx.Get(productID, &prod); err != nil {
			return err
		}
		if !prod.Issued() {
			return ErrNotIssued
		}
		var reg payment.Registry
		if err := tx.Get(RegistryID(productID), &reg); err != nil {
			return err
		}
		pay, err := reg.Find(paymentID)
		if err != nil {
			return err
		}
		if !pay.Priced() {
			return payment.ErrPriceNotSet
		}
		if pay.Pulled {
			return payment.ErrAlreadyPulled
		}

		total := new(uint256.Int).Mul(
			uint256.NewInt(prod.Supply),
			uint256.NewInt(*pay.PricePerUnit),
		)
		if !total.IsUint64() {
			return fmt.Errorf("%w: %d * %d", ErrOverflow, prod.Supply, *pay.PricePerUnit)
		}

		// A sub-account left over from a failed pull is reused; the
		// engine's accounts are not covered by the ledger rollback.
		custody = token.SubAccountID(prod.FundingMint, signer.Key(), paymentID[:])
		if _, err := c.tokens.CreateSubAccount(prod.FundingMint, signer.Key(), paymentID[:]); err != nil && !errors.Is(err, token.ErrAccountExists) {
			return err
		}
		withdrawSig, err := signer.SignOp(treasury.WithdrawDigest(src, custody, total.Uint64()))
		if err != nil {
			return err
		}
		if err := wallet.Withdraw(c.tokens, signer.Key(), withdrawSig, src, custody, total.Uint64(), now); err != nil {
			return err
		}

		if err := pay.MarkPulled(custody); err != nil {
			return err
		}
		return tx.Put(RegistryID(productID), reg)
	})
	if err != nil {
		return err
	}
	c.journalOp("product.pull_payment", productID, paymentID, custody)
	return nil
}

// SetPaymentPrice prices a variable payment. The caller must be the
// payment's bound price authority; this is the entry point a barrier
// note's fixing drives.
func (c *Controller) SetPaymentPrice(productID ledger.ID, paymentID ledger.ID, caller ledger.Key, pricePerUnit uint64, now int64) error {
	err := c.store.Update(func(tx ledger.Tx) error {
		var sched schedule.Schedule
		if err := tx.Get(ScheduleID(productID), &sched); err != nil {
			return err
		}
		var reg payment.Registry
		if err := tx.Get(RegistryID(productID), &reg); err != nil {
			return err
		}
		pay, err := reg.Find(paymentID)
		if err != nil {
			return err
		}
		snapshotTime, err := sched.SnapshotTime(pay.SnapshotIndex)
		if err != nil {
			return err
		}
		if err := pay.SetPrice(caller, pricePerUnit, snapshotTime, now); err != nil {
			return err
		}
		return tx.Put(RegistryID(productID), reg)
	})
	if err != nil {
		return err
	}
	c.journalOp("product.set_price", productID, paymentID)
	return nil
}

// priceSetter binds SetPaymentPrice to one product so a barrier note
// can drive it without knowing about products.
type priceSetter struct {
	controller *Controller
	product    ledger.ID
}

var _ barrier.PriceSetter = (*priceSetter)(nil)

func (s *priceSetter) SetPrice(paymentID ledger.ID, caller ledger.Key, pricePerUnit uint64, now int64) error {
	return s.controller.SetPaymentPrice(s.product, paymentID, caller, pricePerUnit, now)
}

// PriceSetter returns the product-bound price setter a barrier note
// fixes through.
func (c *Controller) PriceSetter(productID ledger.ID) barrier.PriceSetter {
	return &priceSetter{controller: c, product: productID}
}

// SettlePayment pays a beneficiary their share of a funded payment:
// snapshot balance times price per unit, from the payment's custody
// into the beneficiary's funding account. Each beneficiary settles at
// most once per payment.
func (c *Controller) SettlePayment(productID, paymentID ledger.ID, beneficiary ledger.Key, now int64) (uint64, error) {
	signer, err := c.signerFor(productID)
	if err != nil {
		return 0, err
	}

	var amount uint64
	err = c.store.Update(func(tx ledger.Tx) error {
		var prod Product
		if err := tx.Get(productID, &prod); err != nil {
			return err
		}
		var reg payment.Registry
		if err := tx.Get(RegistryID(productID), &reg); err != nil {
			return err
		}
		pay, err := reg.Find(paymentID)
		if err != nil {
			return err
		}
		if !pay.Pulled {
			return fmt.Errorf("%w: %s", ErrPaymentNotFunded, paymentID)
		}

		balance, err := c.snapshotBalance(tx, prod.Mint, beneficiary, pay.SnapshotIndex)
		if err != nil {
			return err
		}
		amount, err = pay.Settle(beneficiary, balance)
		if err != nil {
			return err
		}

		dest := token.AccountID(prod.FundingMint, beneficiary)
		if _, err := c.tokens.CreateAccount(prod.FundingMint, beneficiary); err != nil && !errors.Is(err, token.ErrAccountExists) {
			return err
		}
		transferSig, err := signer.SignOp(token.TransferDigest(pay.Custody, dest, amount))
		if err != nil {
			return err
		}
		if err := c.tokens.Transfer(signer.Key(), transferSig, pay.Custody, dest, amount, now); err != nil {
			return err
		}
		return tx.Put(RegistryID(productID), reg)
	})
	if err != nil {
		return 0, err
	}
	c.journalOp("product.settle", productID, paymentID)
	c.log.Info("payment settled",
		zap.String("product", productID.String()),
		zap.String("payment", paymentID.String()),
		zap.String("beneficiary", beneficiary.String()),
		zap.Uint64("amount", amount))
	return amount, nil
}

// snapshotBalance reads beneficiary's reconstructed balance at the
// given snapshot. A holder with no balance record reconstructs to 0.
func (c *Controller) snapshotBalance(tx ledger.Tx, mint ledger.ID, holder ledger.Key, idx int) (uint64, error) {
	var rec snapshot.BalanceRecord
	err := tx.Get(BalanceID(token.AccountID(mint, holder)), &rec)
	if errors.Is(err, ledger.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.BalanceAt(idx)
}

func (c *Controller) signerFor(productID ledger.ID) (*ledger.Keypair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	signer, ok := c.signers[productID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	return signer, nil
}

func (c *Controller) journalOp(name string, records ...ledger.ID) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Append(name, records...); err != nil {
		c.log.Warn("journal append failed", zap.String("op", name), zap.Error(err))
	}
}

// mintHook routes a product mint's transfers into the snapshot store.
type mintHook struct {
	controller *Controller
	product    ledger.ID
}

var _ token.TransferHook = (*mintHook)(nil)

// OnTokenTransfer applies delta accounting for one transfer. It runs
// inside the token engine's transfer, with both accounts in-flight; an
// error here aborts the transfer.
func (h *mintHook) OnTokenTransfer(src, dst ledger.ID, amount uint64, now int64) error {
	c := h.controller
	return c.store.Update(func(tx ledger.Tx) error {
		var sched schedule.Schedule
		if err := tx.Get(ScheduleID(h.product), &sched); err != nil {
			return err
		}
		hook, err := snapshot.NewHook(&sched, c.tokens, c.log)
		if err != nil {
			return err
		}

		srcRec, err := loadOrNewRecord(tx, src, &sched)
		if err != nil {
			return err
		}
		dstRec, err := loadOrNewRecord(tx, dst, &sched)
		if err != nil {
			return err
		}

		if err := hook.OnTransfer(srcRec, dstRec, src, dst, amount, now); err != nil {
			return err
		}

		if err := tx.Put(BalanceID(src), srcRec); err != nil {
			return err
		}
		return tx.Put(BalanceID(dst), dstRec)
	})
}

func loadOrNewRecord(tx ledger.Tx, account ledger.ID, sched *schedule.Schedule) (*snapshot.BalanceRecord, error) {
	var rec snapshot.BalanceRecord
	err := tx.Get(BalanceID(account), &rec)
	if errors.Is(err, ledger.ErrRecordNotFound) {
		return snapshot.NewRecord(sched)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
