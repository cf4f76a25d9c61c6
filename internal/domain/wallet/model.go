package wallet

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OwnerType string

const (
	OwnerUser      OwnerType = "user"
	OwnerWorkspace OwnerType = "workspace"
)

type TransactionType string

const (
	TransactionCredit     TransactionType = "credit"
	TransactionDebit      TransactionType = "debit"
	TransactionRefund     TransactionType = "refund"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// IsCredit reports whether the type moves money into the wallet.
func (t TransactionType) IsCredit() bool {
	return t == TransactionCredit || t == TransactionRefund
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// Wallet holds the running balance for a user or a workspace, in minor
// currency units. The balance must always equal the sum of completed
// transactions; both are only ever changed inside the same transaction.
type Wallet struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerType OwnerType `json:"owner_type" gorm:"type:varchar(16);not null;uniqueIndex:idx_wallet_owner;check:owner_type IN ('user','workspace')"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;uniqueIndex:idx_wallet_owner"`
	Balance   int64     `json:"balance" gorm:"not null;default:0"`
	Currency  string    `json:"currency" gorm:"type:varchar(3);not null;default:'NGN'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Transaction is an immutable ledger entry. Rows are appended, never
// updated; corrections are new entries. Reference is the idempotency key.
type Transaction struct {
	ID            uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	WalletID      uuid.UUID         `json:"wallet_id" gorm:"type:uuid;not null;index"`
	Type          TransactionType   `json:"type" gorm:"type:varchar(16);not null;index;check:type IN ('credit','debit','refund','withdrawal')"`
	Amount        int64             `json:"amount" gorm:"not null"`
	BalanceBefore int64             `json:"balance_before" gorm:"not null"`
	BalanceAfter  int64             `json:"balance_after" gorm:"not null"`
	Status        TransactionStatus `json:"status" gorm:"type:varchar(16);not null;default:'completed';index"`
	Reference     string            `json:"reference" gorm:"type:varchar(100);not null;uniqueIndex"`
	Description   string            `json:"description" gorm:"type:text"`
	CreatedAt     time.Time         `json:"created_at" gorm:"autoCreateTime;index"`

	Wallet *Wallet `json:"wallet,omitempty" gorm:"foreignKey:WalletID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Transaction) TableName() string {
	return "wallet_transactions"
}

func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// NewReference generates a reference for ad-hoc ledger entries. Settlement
// operations use deterministic references derived from the booking instead.
func NewReference() string {
	return fmt.Sprintf("TXN-%s", strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12]))
}
