package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"raffler/config"
	"raffler/events"
	"raffler/models"
)

type raffleService struct {
	uowFactory UnitOfWorkFactory
	gate       OperatorGate
	guard      *ReentryGuard
	picker     WinnerPicker
	cfg        *config.Config
	now        func() time.Time
}

// NewRaffleService creates a new raffle lifecycle service
func NewRaffleService(uowFactory UnitOfWorkFactory, gate OperatorGate, guard *ReentryGuard, picker WinnerPicker, cfg *config.Config) RaffleService {
	return &raffleService{
		uowFactory: uowFactory,
		gate:       gate,
		guard:      guard,
		picker:     picker,
		cfg:        cfg,
		now:        time.Now,
	}
}

// CreateRaffle escrows the prize and opens a new raffle; operator only
func (s *raffleService) CreateRaffle(ctx context.Context, caller string, params CreateRaffleParams) (*models.Raffle, error) {
	if err := s.gate.RequireOperator(caller); err != nil {
		return nil, err
	}
	if params.PrizeCollection == "" {
		return nil, fmt.Errorf("%w: prize collection is empty", ErrInvalidReference)
	}

	now := s.now()
	endsAt := time.Unix(params.EndsAt, 0)
	if !endsAt.After(now) {
		return nil, fmt.Errorf("%w: end timestamp %d is not in the future", ErrInvalidArgument, params.EndsAt)
	}

	// Create unit of work
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	raffle := &models.Raffle{
		PrizeCollection:   params.PrizeCollection,
		PrizeItemID:       params.PrizeItemID,
		MaxEntriesPerUser: params.MaxEntriesPerUser,
		EntryCost:         params.EntryCost,
		MaxEntries:        params.MaxEntries,
		TotalEntriesSold:  0,
		EndsAt:            endsAt,
		IsOpen:            true,
	}

	if err := uow.RaffleRepository().Create(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to create raffle record: %w", err)
	}

	// Escrow-in: the declared prize moves from the operator into custody.
	// An ownership failure reverts the record insert with the transaction.
	ledger := uow.CustodyLedger()
	owner, err := ledger.OwnerOf(ctx, params.PrizeCollection, params.PrizeItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve prize owner: %w", err)
	}
	if owner != caller {
		return nil, fmt.Errorf("%w: prize %s/%d is owned by %q, not the operator", ErrOwnershipMismatch, params.PrizeCollection, params.PrizeItemID, owner)
	}
	if err := ledger.CustodialTransfer(ctx, params.PrizeCollection, params.PrizeItemID, caller, s.cfg.CustodyAddress); err != nil {
		return nil, fmt.Errorf("failed to escrow prize: %w", err)
	}

	uow.EventBus().Publish(events.RaffleCreatedEvent{RaffleID: raffle.ID})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return raffle, nil
}

// JoinRaffle sells ticketCount entries to the caller. Membership-asset
// holders enter free; everyone else pays entryCost per ticket from a
// pre-approved allowance.
func (s *raffleService) JoinRaffle(ctx context.Context, caller string, raffleID, ticketCount int64, paymentAsset string) (*models.EntryResult, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: caller address is empty", ErrInvalidReference)
	}

	if err := s.guard.Acquire(raffleID); err != nil {
		return nil, err
	}
	defer s.guard.Release(raffleID)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, fmt.Errorf("%w: raffle %d", ErrNotFound, raffleID)
	}

	// Preconditions, in contract order, each a distinct failure.
	now := s.now()
	if raffle.HasEnded(now) {
		return nil, fmt.Errorf("%w: raffle %d ended at %s", ErrTemporalViolation, raffleID, raffle.EndsAt.Format(time.RFC3339))
	}
	if ticketCount <= 0 {
		return nil, fmt.Errorf("%w: ticket count must be positive", ErrInvalidArgument)
	}
	if !s.capacityAllows(raffle, ticketCount) {
		return nil, fmt.Errorf("%w: %d tickets requested with %d of %d sold", ErrCapacityExceeded, ticketCount, raffle.TotalEntriesSold, raffle.MaxEntries)
	}
	if s.cfg.Policy.EnforceEntryLimit && raffle.MaxEntriesPerUser > 0 {
		held, err := uow.RaffleRepository().CountTicketsByParticipant(ctx, raffleID, caller)
		if err != nil {
			return nil, fmt.Errorf("failed to count participant tickets: %w", err)
		}
		if ticketCount > raffle.MaxEntriesPerUser-held {
			return nil, fmt.Errorf("%w: %d tickets would exceed the per-user cap of %d", ErrCapacityExceeded, ticketCount, raffle.MaxEntriesPerUser)
		}
	}

	// Track branch: membership-asset holders ride free, one roster record
	// per call. Everyone else pays from a pre-approved allowance.
	ledger := uow.CustodyLedger()
	membershipBalance, err := ledger.BalanceOf(ctx, s.cfg.MembershipAsset, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership balance: %w", err)
	}

	freeTrack := membershipBalance > 0
	var amountPaid int64

	if freeTrack {
		if err := uow.RaffleRepository().AddFreeParticipant(ctx, raffleID, caller); err != nil {
			return nil, fmt.Errorf("failed to record free entry: %w", err)
		}
	} else {
		if paymentAsset == "" {
			return nil, fmt.Errorf("%w: payment asset is empty", ErrInvalidReference)
		}
		if raffle.EntryCost > 0 && ticketCount > math.MaxInt64/raffle.EntryCost {
			return nil, fmt.Errorf("%w: cost of %d tickets at %d each overflows", ErrInvalidArgument, ticketCount, raffle.EntryCost)
		}
		cost := raffle.EntryCost * ticketCount
		allowance, err := ledger.Allowance(ctx, paymentAsset, caller, s.cfg.CustodyAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to check allowance: %w", err)
		}
		if allowance < cost {
			return nil, fmt.Errorf("%w: allowance %d covers less than cost %d", ErrInsufficientAuthorization, allowance, cost)
		}
		if err := ledger.TransferFrom(ctx, paymentAsset, caller, s.cfg.CustodyAddress, cost); err != nil {
			return nil, fmt.Errorf("failed to collect entry payment: %w", err)
		}
		amountPaid = cost
	}

	// Both tracks: ticketCount draw-pool slots and a bumped counter.
	if err := uow.RaffleRepository().AddTicketHolders(ctx, raffleID, caller, ticketCount); err != nil {
		return nil, fmt.Errorf("failed to append ticket holders: %w", err)
	}
	raffle.TotalEntriesSold += ticketCount
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to update raffle counters: %w", err)
	}

	uow.EventBus().Publish(events.EntrySubmittedEvent{
		RaffleID:    raffleID,
		Participant: caller,
		TicketCount: ticketCount,
		FreeTrack:   freeTrack,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.EntryResult{
		RaffleID:         raffleID,
		Participant:      caller,
		TicketCount:      ticketCount,
		FreeTrack:        freeTrack,
		AmountPaid:       amountPaid,
		TotalEntriesSold: raffle.TotalEntriesSold,
	}, nil
}

// capacityAllows applies the ticket-cap check. The legacy strict inequality
// bars selling the final ticket; the SellFinalTicket policy lifts that.
// Compared against the remaining headroom rather than the running sum so an
// absurd ticketCount cannot wrap int64 past the cap.
func (s *raffleService) capacityAllows(raffle *models.Raffle, ticketCount int64) bool {
	remaining := raffle.MaxEntries - raffle.TotalEntriesSold
	if s.cfg.Policy.SellFinalTicket {
		return ticketCount <= remaining
	}
	return ticketCount < remaining
}

// SelectWinner draws a winner from the ticket pool; operator only. The
// winner is stored once and never reassigned; selection moves no assets.
func (s *raffleService) SelectWinner(ctx context.Context, caller string, raffleID int64) (string, error) {
	if err := s.gate.RequireOperator(caller); err != nil {
		return "", err
	}

	if err := s.guard.Acquire(raffleID); err != nil {
		return "", err
	}
	defer s.guard.Release(raffleID)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.RaffleRepository().GetDetailByID(ctx, raffleID)
	if err != nil {
		return "", fmt.Errorf("failed to get raffle detail: %w", err)
	}
	if detail == nil {
		return "", fmt.Errorf("%w: raffle %d", ErrNotFound, raffleID)
	}

	raffle := detail.Raffle
	if raffle.HasWinner() {
		return "", fmt.Errorf("%w: winner already drawn for raffle %d", ErrInvalidArgument, raffleID)
	}
	if len(detail.TicketHolders) == 0 {
		return "", fmt.Errorf("%w: no tickets sold for raffle %d", ErrInvalidArgument, raffleID)
	}
	if raffle.PrizeCollection == "" {
		return "", fmt.Errorf("%w: raffle %d has no prize reference", ErrInvalidReference, raffleID)
	}

	idx, err := s.picker.Pick(ctx, detail.TicketHolders, len(detail.FreeParticipants))
	if err != nil {
		return "", fmt.Errorf("failed to pick winner: %w", err)
	}
	winner := detail.TicketHolders[idx]

	raffle.Winner = &winner
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return "", fmt.Errorf("failed to store winner: %w", err)
	}

	uow.EventBus().Publish(events.WinnerDrawnEvent{
		RaffleID:         raffleID,
		Winner:           winner,
		TotalEntriesSold: raffle.TotalEntriesSold,
	})

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return winner, nil
}

// EndRaffle force-closes the raffle: ends_at snaps to now and the open
// flag flips, one way, exactly once. Callable by anyone.
func (s *raffleService) EndRaffle(ctx context.Context, caller string, raffleID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return fmt.Errorf("%w: raffle %d", ErrNotFound, raffleID)
	}
	if !raffle.IsOpen {
		return fmt.Errorf("%w: raffle %d is already closed", ErrTemporalViolation, raffleID)
	}

	now := s.now()
	if s.cfg.Policy.CloseAfterEnd {
		if now.Before(raffle.EndsAt) {
			return fmt.Errorf("%w: raffle %d has not ended yet", ErrTemporalViolation, raffleID)
		}
	} else {
		// Legacy check runs the other way round: a raffle whose end time
		// already passed cannot be explicitly closed.
		if raffle.EndsAt.Before(now) {
			return fmt.Errorf("%w: raffle %d end time already passed", ErrTemporalViolation, raffleID)
		}
	}

	raffle.EndsAt = now
	raffle.IsOpen = false
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return fmt.Errorf("failed to close raffle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ClaimPrize hands the escrowed prize to the stored winner. Callable by
// anyone; succeeds only for the winner.
func (s *raffleService) ClaimPrize(ctx context.Context, caller string, raffleID int64) error {
	if caller == "" {
		return fmt.Errorf("%w: caller address is empty", ErrInvalidReference)
	}

	if err := s.guard.Acquire(raffleID); err != nil {
		return err
	}
	defer s.guard.Release(raffleID)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.RaffleRepository().GetDetailByID(ctx, raffleID)
	if err != nil {
		return fmt.Errorf("failed to get raffle detail: %w", err)
	}
	if detail == nil {
		return fmt.Errorf("%w: raffle %d", ErrNotFound, raffleID)
	}
	raffle := detail.Raffle

	now := s.now()
	if !raffle.HasEnded(now) {
		return fmt.Errorf("%w: raffle %d has not ended", ErrTemporalViolation, raffleID)
	}

	if s.cfg.Policy.ClaimChecksWinner {
		if !raffle.HasWinner() {
			return fmt.Errorf("%w: no winner drawn for raffle %d", ErrNotFound, raffleID)
		}
	} else {
		// Legacy proxy for "a winner was drawn": the free-track roster is
		// non-empty. A paid-only raffle with a drawn winner fails here.
		if len(detail.FreeParticipants) == 0 {
			return fmt.Errorf("%w: no winners recorded for raffle %d", ErrNotFound, raffleID)
		}
	}

	var winner string
	if raffle.Winner != nil {
		winner = *raffle.Winner
	}
	if caller != winner {
		return fmt.Errorf("%w: caller %q is not the winner", ErrUnauthorized, caller)
	}

	if s.cfg.Policy.SingleClaim && raffle.IsClaimed() {
		return fmt.Errorf("%w: prize for raffle %d already claimed", ErrOwnershipMismatch, raffleID)
	}

	// Escrow-out. Without the SingleClaim policy a second claim reaches
	// this transfer and fails the ownership check, since custody no longer
	// holds the item.
	prize := raffle.PrizeRef()
	if err := uow.CustodyLedger().CustodialTransfer(ctx, prize.Collection, prize.ItemID, s.cfg.CustodyAddress, caller); err != nil {
		return fmt.Errorf("failed to release prize: %w", err)
	}

	raffle.ClaimedAt = &now
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return fmt.Errorf("failed to record claim: %w", err)
	}

	uow.EventBus().Publish(events.PrizeClaimedEvent{RaffleID: raffleID, Winner: winner})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRaffle returns the raffle record
func (s *raffleService) GetRaffle(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, fmt.Errorf("%w: raffle %d", ErrNotFound, raffleID)
	}
	return raffle, nil
}

// GetRaffleDetail returns the record with its draw pool and free roster
func (s *raffleService) GetRaffleDetail(ctx context.Context, raffleID int64) (*models.RaffleDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.RaffleRepository().GetDetailByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle detail: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: raffle %d", ErrNotFound, raffleID)
	}
	return detail, nil
}

// ActiveRaffleIDs returns every raffle identifier in creation order. The
// listing never shrinks; closing a raffle does not drop it.
func (s *raffleService) ActiveRaffleIDs(ctx context.Context) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ids, err := uow.RaffleRepository().GetActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active raffle ids: %w", err)
	}
	return ids, nil
}

// IsOpen reports the raffle's open flag
func (s *raffleService) IsOpen(ctx context.Context, raffleID int64) (bool, error) {
	raffle, err := s.GetRaffle(ctx, raffleID)
	if err != nil {
		return false, err
	}
	return raffle.IsOpen, nil
}

// MembershipBalance returns the caller's membership-asset balance
func (s *raffleService) MembershipBalance(ctx context.Context, caller string) (int64, error) {
	if caller == "" {
		return 0, fmt.Errorf("%w: caller address is empty", ErrInvalidReference)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.CustodyLedger().BalanceOf(ctx, s.cfg.MembershipAsset, caller)
	if err != nil {
		return 0, fmt.Errorf("failed to get membership balance: %w", err)
	}
	return balance, nil
}
