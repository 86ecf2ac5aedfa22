package service

import (
	"context"
	"fmt"
)

// custodyService exposes the ledger's funding and minting surface for
// setup tooling: seeding balances, approving the custody spender, and
// minting collectibles before they go up as prizes.
type custodyService struct {
	uowFactory UnitOfWorkFactory
}

func NewCustodyService(uowFactory UnitOfWorkFactory) CustodyService {
	return &custodyService{uowFactory: uowFactory}
}

func (s *custodyService) Approve(ctx context.Context, owner, asset, spender string, amount int64) error {
	if owner == "" || spender == "" {
		return fmt.Errorf("%w: owner and spender must be set", ErrInvalidReference)
	}
	if amount < 0 {
		return fmt.Errorf("%w: allowance must not be negative", ErrInvalidArgument)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.CustodyLedger().Approve(ctx, owner, asset, spender, amount); err != nil {
		return fmt.Errorf("failed to set allowance: %w", err)
	}
	return uow.Commit()
}

func (s *custodyService) Credit(ctx context.Context, asset, holder string, amount int64) error {
	if holder == "" {
		return fmt.Errorf("%w: holder address is empty", ErrInvalidReference)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", ErrInvalidArgument)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.CustodyLedger().Credit(ctx, asset, holder, amount); err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	return uow.Commit()
}

func (s *custodyService) MintCollectible(ctx context.Context, collection string, itemID int64, owner string) error {
	if collection == "" || owner == "" {
		return fmt.Errorf("%w: collection and owner must be set", ErrInvalidReference)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.CustodyLedger().MintCollectible(ctx, collection, itemID, owner); err != nil {
		return fmt.Errorf("failed to mint collectible: %w", err)
	}
	return uow.Commit()
}

func (s *custodyService) BalanceOf(ctx context.Context, asset, holder string) (int64, error) {
	if holder == "" {
		return 0, fmt.Errorf("%w: holder address is empty", ErrInvalidReference)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.CustodyLedger().BalanceOf(ctx, asset, holder)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}
