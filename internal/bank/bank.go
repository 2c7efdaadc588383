// Package bank provides the in-memory banking collaborator. The market core
// only depends on the Transfer method; accounts, authorization secrets and
// the transaction log live here.
package bank

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/mwolff/settlex/internal/domain"
)

// Account is a single-currency bank account. Balance mutations go through
// the owning Bank, which holds the lock.
type Account struct {
	ID       domain.AccountID
	Owner    domain.AgentID
	Currency domain.Currency
	Balance  float64
	Frozen   bool

	// secret is the authorization token required for outgoing transfers.
	secret string
}

// Transaction records one executed money transfer.
type Transaction struct {
	ID       string
	From     domain.AccountID
	To       domain.AccountID
	Amount   float64
	Currency domain.Currency
	Memo     string
	At       time.Time
}

// Bank is a thread-safe in-memory bank. All accounts of the simulation are
// held by one bank, so intra-bank transfers settle immediately.
type Bank struct {
	mu       sync.Mutex
	accounts map[domain.AccountID]*Account
	journal  []Transaction
}

// New creates an empty Bank.
func New() *Bank {
	return &Bank{
		accounts: make(map[domain.AccountID]*Account),
	}
}

// OpenAccount creates an account for the given owner and currency with the
// given opening balance. It returns the account ID and the authorization
// secret required for outgoing transfers from it.
func (b *Bank) OpenAccount(owner domain.AgentID, currency domain.Currency, balance float64) (domain.AccountID, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := domain.AccountID(uuid.New().String())
	secret := uuid.New().String()
	b.accounts[id] = &Account{
		ID:       id,
		Owner:    owner,
		Currency: currency,
		Balance:  balance,
		secret:   secret,
	}
	return id, secret
}

// Balance returns the current balance and currency of an account.
func (b *Bank) Balance(id domain.AccountID) (float64, domain.Currency, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[id]
	if !ok {
		return 0, "", domain.ErrAccountNotFound
	}
	return acc.Balance, acc.Currency, nil
}

// Owner returns the owning agent of an account.
func (b *Bank) Owner(id domain.AccountID) (domain.AgentID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[id]
	if !ok {
		return "", domain.ErrAccountNotFound
	}
	return acc.Owner, nil
}

// Freeze marks an account as frozen. Frozen accounts decline any transfer,
// incoming or outgoing.
func (b *Bank) Freeze(id domain.AccountID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Frozen = true
	return nil
}

// Transfer moves amount from one account to another, authorized by the
// source account's secret and tagged with a human-readable memo. Both
// accounts must be denominated in the same currency. Transfers fail fast;
// nothing is moved unless every check passes.
func (b *Bank) Transfer(from, to domain.AccountID, amount float64, authorization, memo string) error {
	if amount <= 0 {
		return domain.ErrNonPositiveAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	src, ok := b.accounts[from]
	if !ok {
		return domain.ErrAccountNotFound
	}
	dst, ok := b.accounts[to]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if src.secret != authorization {
		return domain.ErrBadAuthorization
	}
	if src.Frozen || dst.Frozen {
		return domain.ErrAccountFrozen
	}
	if src.Currency != dst.Currency {
		return domain.ErrCurrencyMismatch
	}
	if domain.Lesser(src.Balance, amount) {
		return fmt.Errorf("%w: have %s, need %s %s", domain.ErrInsufficientFunds,
			humanize.CommafWithDigits(src.Balance, 2),
			humanize.CommafWithDigits(amount, 2), src.Currency)
	}

	src.Balance -= amount
	dst.Balance += amount

	b.journal = append(b.journal, Transaction{
		ID:       uuid.New().String(),
		From:     from,
		To:       to,
		Amount:   amount,
		Currency: src.Currency,
		Memo:     memo,
		At:       time.Now(),
	})
	return nil
}

// Journal returns a copy of all executed transactions in chronological order.
func (b *Bank) Journal() []Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Transaction, len(b.journal))
	copy(out, b.journal)
	return out
}
