package wallet

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"xbooking/internal/database"
)

var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrDuplicateReference = errors.New("transaction reference already used")
)

// Service is the single point of balance mutation. Every credit or debit
// locks the wallet row, captures balance before/after and appends one
// ledger entry, all inside one transaction.
type Service struct {
	db       *gorm.DB
	currency string
}

func NewService(db *gorm.DB, currency string) *Service {
	if currency == "" {
		currency = "NGN"
	}
	return &Service{db: db, currency: currency}
}

func (s *Service) GetOrCreateWallet(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) (*Wallet, error) {
	wallet, err := s.getWalletByOwner(ctx, ownerType, ownerID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = &Wallet{OwnerType: ownerType, OwnerID: ownerID, Balance: 0, Currency: s.currency}
	if err := s.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if isUniqueConstraintError(err) {
			return s.getWalletByOwner(ctx, ownerType, ownerID)
		}
		return nil, err
	}
	return wallet, nil
}

// Credit moves amount into the owner's wallet.
func (s *Service) Credit(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID, amount int64, reference, description string) (*Transaction, error) {
	return s.applyCtx(ctx, ownerType, ownerID, TransactionCredit, amount, reference, description)
}

// Debit moves amount out of the owner's wallet. Fails with
// ErrInsufficientFunds when the balance cannot cover it.
func (s *Service) Debit(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID, amount int64, reference, description string) (*Transaction, error) {
	return s.applyCtx(ctx, ownerType, ownerID, TransactionDebit, amount, reference, description)
}

// Refund is a credit recorded with the refund type, so cancellation
// settlements stay distinguishable in the ledger.
func (s *Service) Refund(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID, amount int64, reference, description string) (*Transaction, error) {
	return s.applyCtx(ctx, ownerType, ownerID, TransactionRefund, amount, reference, description)
}

// Withdraw is a debit recorded with the withdrawal type.
func (s *Service) Withdraw(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID, amount int64, reference, description string) (*Transaction, error) {
	return s.applyCtx(ctx, ownerType, ownerID, TransactionWithdrawal, amount, reference, description)
}

func (s *Service) applyCtx(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID, txnType TransactionType, amount int64, reference, description string) (*Transaction, error) {
	var txn *Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.ApplyTx(tx, ownerType, ownerID, txnType, amount, reference, description)
		return err
	})
	if err != nil {
		return txn, err
	}
	return txn, nil
}

// ApplyTx runs a balance mutation inside a caller-owned transaction, so a
// settlement can commit booking state and money movement as one unit.
//
// Idempotency: a reference is burned the moment any transaction row holds
// it, whatever its status. If one exists, ApplyTx returns that row together
// with ErrDuplicateReference, before touching the balance. The check runs
// under the wallet row lock; a same-reference row committed by a concurrent
// transaction after the check fails the whole transaction instead, so the
// balance update never outlives its ledger entry.
func (s *Service) ApplyTx(tx *gorm.DB, ownerType OwnerType, ownerID uuid.UUID, txnType TransactionType, amount int64, reference, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if reference == "" {
		reference = NewReference()
	}

	var wallet Wallet
	if err := getOrCreateWalletForUpdate(tx, ownerType, ownerID, s.currency, &wallet); err != nil {
		return nil, err
	}

	var existing Transaction
	err := tx.Where("reference = ?", reference).First(&existing).Error
	if err == nil {
		return &existing, ErrDuplicateReference
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	balanceBefore := wallet.Balance
	if txnType.IsCredit() {
		wallet.Balance += amount
	} else {
		if wallet.Balance < amount {
			return nil, ErrInsufficientFunds
		}
		wallet.Balance -= amount
	}

	if err := tx.Model(&Wallet{}).Where("id = ?", wallet.ID).Update("balance", wallet.Balance).Error; err != nil {
		return nil, err
	}

	txn := &Transaction{
		WalletID:      wallet.ID,
		Type:          txnType,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  wallet.Balance,
		Status:        TransactionCompleted,
		Reference:     reference,
		Description:   description,
	}
	if err := tx.Create(txn).Error; err != nil {
		if isUniqueConstraintError(err) {
			// The reference landed between the check and the insert.
			// Returning a non-duplicate error rolls the balance update
			// back with the rest of the transaction; a retry sees the
			// committed row and gets ErrDuplicateReference cleanly.
			return nil, database.ErrConflict
		}
		return nil, err
	}
	return txn, nil
}

// Balance returns the current wallet balance without creating a wallet.
func (s *Service) Balance(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) (int64, error) {
	wallet, err := s.getWalletByOwner(ctx, ownerType, ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// CompletedSum recomputes the balance from the ledger. Used by tests and
// consistency checks; must always agree with Wallet.Balance.
func (s *Service) CompletedSum(ctx context.Context, walletID uuid.UUID) (int64, error) {
	var txns []Transaction
	if err := s.db.WithContext(ctx).Where("wallet_id = ? AND status = ?", walletID, TransactionCompleted).Find(&txns).Error; err != nil {
		return 0, err
	}
	var sum int64
	for _, t := range txns {
		if t.Type.IsCredit() {
			sum += t.Amount
		} else {
			sum -= t.Amount
		}
	}
	return sum, nil
}

func (s *Service) ListTransactions(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) ([]Transaction, error) {
	wallet, err := s.GetOrCreateWallet(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	var txns []Transaction
	if err := s.db.WithContext(ctx).Where("wallet_id = ?", wallet.ID).Order("created_at desc").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *Service) getWalletByOwner(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) (*Wallet, error) {
	var wallet Wallet
	if err := s.db.WithContext(ctx).Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func getOrCreateWalletForUpdate(tx *gorm.DB, ownerType OwnerType, ownerID uuid.UUID, currency string, wallet *Wallet) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).First(wallet).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		*wallet = Wallet{OwnerType: ownerType, OwnerID: ownerID, Balance: 0, Currency: currency}
		if err := tx.Create(wallet).Error; err != nil {
			if isUniqueConstraintError(err) {
				return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).First(wallet).Error
			}
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
