package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"raffler/database"
	"raffler/service"
)

// CustodyRepository implements the CustodyLedger interface over the
// token_balances, token_allowances and collectibles tables. Every
// movement appends a custody_transfers journal row.
type CustodyRepository struct {
	q queryable
}

// NewCustodyRepository creates a new custody repository
func NewCustodyRepository(db *database.DB) *CustodyRepository {
	return &CustodyRepository{q: db.Pool}
}

// newCustodyRepositoryWithTx creates a new custody repository with a transaction
func newCustodyRepositoryWithTx(tx queryable) *CustodyRepository {
	return &CustodyRepository{q: tx}
}

// OwnerOf returns the current owner of a collectible
func (r *CustodyRepository) OwnerOf(ctx context.Context, collection string, itemID int64) (string, error) {
	query := `SELECT owner FROM collectibles WHERE collection = $1 AND item_id = $2`

	var owner string
	err := r.q.QueryRow(ctx, query, collection, itemID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: collectible %s/%d does not exist", service.ErrInvalidReference, collection, itemID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up owner of %s/%d: %w", collection, itemID, err)
	}

	return owner, nil
}

// CustodialTransfer reassigns a collectible from one account to another.
// Fails if from is not the current owner.
func (r *CustodyRepository) CustodialTransfer(ctx context.Context, collection string, itemID int64, from, to string) error {
	owner, err := r.OwnerOf(ctx, collection, itemID)
	if err != nil {
		return err
	}
	if owner != from {
		return fmt.Errorf("%w: collectible %s/%d is owned by %q, not %q", service.ErrOwnershipMismatch, collection, itemID, owner, from)
	}

	query := `UPDATE collectibles SET owner = $3 WHERE collection = $1 AND item_id = $2`
	if _, err := r.q.Exec(ctx, query, collection, itemID, to); err != nil {
		return fmt.Errorf("failed to transfer collectible %s/%d: %w", collection, itemID, err)
	}

	return r.journalItem(ctx, collection, itemID, from, to)
}

// BalanceOf returns the account's balance for asset, zero if unknown
func (r *CustodyRepository) BalanceOf(ctx context.Context, asset, account string) (int64, error) {
	query := `SELECT balance FROM token_balances WHERE asset = $1 AND account = $2`

	var balance int64
	err := r.q.QueryRow(ctx, query, asset, account).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance of %s for %s: %w", asset, account, err)
	}

	return balance, nil
}

// Allowance returns how much of asset the spender may pull from owner
func (r *CustodyRepository) Allowance(ctx context.Context, asset, owner, spender string) (int64, error) {
	query := `SELECT amount FROM token_allowances WHERE asset = $1 AND owner = $2 AND spender = $3`

	var amount int64
	err := r.q.QueryRow(ctx, query, asset, owner, spender).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get allowance of %s from %s to %s: %w", asset, owner, spender, err)
	}

	return amount, nil
}

// Approve sets the spender's allowance over the owner's asset balance
func (r *CustodyRepository) Approve(ctx context.Context, owner, asset, spender string, amount int64) error {
	query := `
		INSERT INTO token_allowances (asset, owner, spender, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (asset, owner, spender) DO UPDATE SET amount = $4
	`

	if _, err := r.q.Exec(ctx, query, asset, owner, spender, amount); err != nil {
		return fmt.Errorf("failed to set allowance of %s from %s to %s: %w", asset, owner, spender, err)
	}

	return nil
}

// TransferFrom pulls amount of asset from the owner to the recipient,
// consuming the recipient's allowance.
func (r *CustodyRepository) TransferFrom(ctx context.Context, asset, from, to string, amount int64) error {
	consume := `
		UPDATE token_allowances SET amount = amount - $4
		WHERE asset = $1 AND owner = $2 AND spender = $3 AND amount >= $4
	`

	tag, err := r.q.Exec(ctx, consume, asset, from, to, amount)
	if err != nil {
		return fmt.Errorf("failed to consume allowance of %s from %s: %w", asset, from, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: allowance of %s from %s to %s covers less than %d", service.ErrInsufficientAuthorization, asset, from, to, amount)
	}

	return r.moveBalance(ctx, asset, from, to, amount)
}

// Transfer moves amount of asset between accounts with no allowance involved
func (r *CustodyRepository) Transfer(ctx context.Context, asset, from, to string, amount int64) error {
	return r.moveBalance(ctx, asset, from, to, amount)
}

func (r *CustodyRepository) moveBalance(ctx context.Context, asset, from, to string, amount int64) error {
	debit := `
		UPDATE token_balances SET balance = balance - $3
		WHERE asset = $1 AND account = $2 AND balance >= $3
	`

	tag, err := r.q.Exec(ctx, debit, asset, from, amount)
	if err != nil {
		return fmt.Errorf("failed to debit %d %s from %s: %w", amount, asset, from, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s holds less than %d %s", service.ErrInsufficientAuthorization, from, amount, asset)
	}

	credit := `
		INSERT INTO token_balances (asset, account, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset, account) DO UPDATE SET balance = token_balances.balance + $3
	`

	if _, err := r.q.Exec(ctx, credit, asset, to, amount); err != nil {
		return fmt.Errorf("failed to credit %d %s to %s: %w", amount, asset, to, err)
	}

	return r.journalFunds(ctx, asset, from, to, amount)
}

// Credit mints amount of asset into the holder's balance
func (r *CustodyRepository) Credit(ctx context.Context, asset, holder string, amount int64) error {
	query := `
		INSERT INTO token_balances (asset, account, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset, account) DO UPDATE SET balance = token_balances.balance + $3
	`

	if _, err := r.q.Exec(ctx, query, asset, holder, amount); err != nil {
		return fmt.Errorf("failed to credit %d %s to %s: %w", amount, asset, holder, err)
	}

	return r.journalFunds(ctx, asset, "mint", holder, amount)
}

// MintCollectible registers a new collectible under the given owner
func (r *CustodyRepository) MintCollectible(ctx context.Context, collection string, itemID int64, owner string) error {
	query := `INSERT INTO collectibles (collection, item_id, owner) VALUES ($1, $2, $3)`

	if _, err := r.q.Exec(ctx, query, collection, itemID, owner); err != nil {
		return fmt.Errorf("failed to mint collectible %s/%d: %w", collection, itemID, err)
	}

	return r.journalItem(ctx, collection, itemID, "mint", owner)
}

func (r *CustodyRepository) journalFunds(ctx context.Context, asset, from, to string, amount int64) error {
	query := `
		INSERT INTO custody_transfers (asset, from_account, to_account, amount)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.q.Exec(ctx, query, asset, from, to, amount); err != nil {
		return fmt.Errorf("failed to journal transfer: %w", err)
	}

	return nil
}

func (r *CustodyRepository) journalItem(ctx context.Context, collection string, itemID int64, from, to string) error {
	query := `
		INSERT INTO custody_transfers (collection, item_id, from_account, to_account)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.q.Exec(ctx, query, collection, itemID, from, to); err != nil {
		return fmt.Errorf("failed to journal transfer: %w", err)
	}

	return nil
}
