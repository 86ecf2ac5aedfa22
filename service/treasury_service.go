package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"raffler/config"
	"raffler/events"
)

type treasuryService struct {
	uowFactory UnitOfWorkFactory
	gate       OperatorGate
	guard      *ReentryGuard
	cfg        *config.Config
}

// NewTreasuryService creates a new treasury service
func NewTreasuryService(uowFactory UnitOfWorkFactory, gate OperatorGate, guard *ReentryGuard, cfg *config.Config) TreasuryService {
	return &treasuryService{
		uowFactory: uowFactory,
		gate:       gate,
		guard:      guard,
		cfg:        cfg,
	}
}

// Withdraw moves amount of asset out of custody; operator only. The
// destination is governed by the WithdrawToOperator policy: off, the
// transfer targets the custody address itself and the balance never
// moves anywhere.
func (s *treasuryService) Withdraw(ctx context.Context, caller, asset string, amount int64) error {
	if err := s.gate.RequireOperator(caller); err != nil {
		return err
	}
	if asset == "" {
		return fmt.Errorf("%w: asset is empty", ErrInvalidReference)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: withdrawal amount must be positive", ErrInvalidArgument)
	}

	if err := s.guard.Acquire(treasuryLockKey); err != nil {
		return err
	}
	defer s.guard.Release(treasuryLockKey)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	target := s.cfg.CustodyAddress
	if s.cfg.Policy.WithdrawToOperator {
		target = s.gate.Operator()
	}

	if err := uow.CustodyLedger().Transfer(ctx, asset, s.cfg.CustodyAddress, target, amount); err != nil {
		return fmt.Errorf("failed to transfer funds: %w", err)
	}

	uow.EventBus().Publish(events.FundsWithdrawnEvent{
		Asset:  asset,
		Amount: amount,
		To:     target,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"asset":  asset,
		"amount": amount,
		"to":     target,
	}).Info("Treasury withdrawal completed")

	return nil
}

// BalanceOf returns the custody balance for asset
func (s *treasuryService) BalanceOf(ctx context.Context, asset string) (int64, error) {
	if asset == "" {
		return 0, fmt.Errorf("%w: asset is empty", ErrInvalidReference)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.CustodyLedger().BalanceOf(ctx, asset, s.cfg.CustodyAddress)
	if err != nil {
		return 0, fmt.Errorf("failed to get custody balance: %w", err)
	}
	return balance, nil
}
