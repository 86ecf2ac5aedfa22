package service

import (
	"context"

	"raffler/events"
	"raffler/models"
)

// RaffleRepository defines the interface for raffle data access
type RaffleRepository interface {
	// Create inserts a new raffle record and assigns its identifier
	Create(ctx context.Context, raffle *models.Raffle) error

	// GetByID retrieves a raffle by its identifier, nil if unknown
	GetByID(ctx context.Context, id int64) (*models.Raffle, error)

	// GetDetailByID retrieves a raffle with its draw pool and free roster
	GetDetailByID(ctx context.Context, id int64) (*models.RaffleDetail, error)

	// Update persists mutable raffle fields (counter, end time, winner,
	// open flag, claim time)
	Update(ctx context.Context, raffle *models.Raffle) error

	// GetActiveIDs returns every raffle identifier in creation order; the
	// listing only ever grows, closed raffles stay on it
	GetActiveIDs(ctx context.Context) ([]int64, error)

	// AddTicketHolders appends count draw-pool slots for a participant
	AddTicketHolders(ctx context.Context, raffleID int64, participant string, count int64) error

	// AddFreeParticipant appends one free-track roster record
	AddFreeParticipant(ctx context.Context, raffleID int64, participant string) error

	// CountTicketsByParticipant returns how many pool slots a participant
	// holds in a raffle
	CountTicketsByParticipant(ctx context.Context, raffleID int64, participant string) (int64, error)
}

// AssetCustodyGateway is the boundary to the asset-transfer primitives the
// raffle core depends on. Implementations must fail without side effects
// when ownership or authorization checks do not hold.
type AssetCustodyGateway interface {
	// OwnerOf returns the current owner of a collectible
	OwnerOf(ctx context.Context, collection string, itemID int64) (string, error)

	// CustodialTransfer moves a collectible, failing with
	// ErrOwnershipMismatch unless from is the current owner
	CustodialTransfer(ctx context.Context, collection string, itemID int64, from, to string) error

	// Allowance returns how much of asset the owner has pre-approved the
	// spender to move
	Allowance(ctx context.Context, asset, owner, spender string) (int64, error)

	// TransferFrom moves amount of asset from the owner to the recipient,
	// consuming the recipient's allowance; fails with
	// ErrInsufficientAuthorization when the allowance does not cover it
	TransferFrom(ctx context.Context, asset, from, to string, amount int64) error

	// Transfer moves amount of asset between accounts with only a balance
	// check
	Transfer(ctx context.Context, asset, from, to string, amount int64) error

	// BalanceOf returns an account's balance of a fungible asset
	BalanceOf(ctx context.Context, asset, account string) (int64, error)
}

// CustodyLedger is the in-house ledger implementing the gateway plus the
// issuance operations the gateway contract deliberately leaves out.
type CustodyLedger interface {
	AssetCustodyGateway

	// Approve sets the spender's allowance over the owner's asset
	Approve(ctx context.Context, owner, asset, spender string, amount int64) error

	// Credit mints amount of a fungible asset to an account
	Credit(ctx context.Context, asset, account string, amount int64) error

	// MintCollectible creates a collectible owned by the given account
	MintCollectible(ctx context.Context, collection string, itemID int64, owner string) error
}

// OperatorGate restricts privileged operations to the single registered
// operator identity
type OperatorGate interface {
	// RequireOperator fails with ErrUnauthorized unless caller is the
	// current operator
	RequireOperator(caller string) error

	// Operator returns the current operator identity
	Operator() string

	// TransferOperator hands the privileged identity to another address;
	// only the current operator may do so
	TransferOperator(caller, newOperator string) error
}

// WinnerPicker selects an index into a raffle's draw pool
type WinnerPicker interface {
	Pick(ctx context.Context, ticketHolders []string, freeEntrants int) (int, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// CreateRaffleParams carries the operator-declared parameters of a new raffle
type CreateRaffleParams struct {
	PrizeCollection   string
	PrizeItemID       int64
	MaxEntriesPerUser int64
	EntryCost         int64
	MaxEntries        int64
	EndsAt            int64 // unix seconds
}

// RaffleService drives a raffle through creation, entry, winner selection,
// closure and claim
type RaffleService interface {
	// CreateRaffle escrows the prize and opens a new raffle; operator only
	CreateRaffle(ctx context.Context, caller string, params CreateRaffleParams) (*models.Raffle, error)

	// JoinRaffle sells ticketCount entries to the caller, free of charge
	// for membership-asset holders
	JoinRaffle(ctx context.Context, caller string, raffleID, ticketCount int64, paymentAsset string) (*models.EntryResult, error)

	// SelectWinner draws a winner from the ticket pool; operator only
	SelectWinner(ctx context.Context, caller string, raffleID int64) (string, error)

	// EndRaffle force-closes the raffle, setting its end time to now
	EndRaffle(ctx context.Context, caller string, raffleID int64) error

	// ClaimPrize hands the escrowed prize to the stored winner
	ClaimPrize(ctx context.Context, caller string, raffleID int64) error

	// GetRaffle returns the raffle record
	GetRaffle(ctx context.Context, raffleID int64) (*models.Raffle, error)

	// GetRaffleDetail returns the record with pool and roster
	GetRaffleDetail(ctx context.Context, raffleID int64) (*models.RaffleDetail, error)

	// ActiveRaffleIDs returns the grow-only raffle listing in creation order
	ActiveRaffleIDs(ctx context.Context) ([]int64, error)

	// IsOpen reports the raffle's open flag
	IsOpen(ctx context.Context, raffleID int64) (bool, error)

	// MembershipBalance returns the caller's membership-asset balance
	MembershipBalance(ctx context.Context, caller string) (int64, error)
}

// TreasuryService is the operator-only withdrawal path over custody funds
type TreasuryService interface {
	// Withdraw moves amount of asset out of contract custody
	Withdraw(ctx context.Context, caller, asset string, amount int64) error

	// BalanceOf returns the custody balance of a fungible asset
	BalanceOf(ctx context.Context, asset string) (int64, error)
}

// CustodyService exposes the ledger operations participants need before
// they can enter a raffle (allowance approval, balance reads) and the
// issuance hooks used for seeding
type CustodyService interface {
	// Approve lets the caller pre-authorize the custody address (or any
	// spender) over their payment asset
	Approve(ctx context.Context, caller, asset, spender string, amount int64) error

	// BalanceOf returns an account's balance of a fungible asset
	BalanceOf(ctx context.Context, asset, account string) (int64, error)

	// Credit mints fungible funds to an account
	Credit(ctx context.Context, asset, account string, amount int64) error

	// MintCollectible creates a collectible owned by the given account
	MintCollectible(ctx context.Context, collection string, itemID int64, owner string) error
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// RaffleRepository returns the raffle repository bound to this transaction
	RaffleRepository() RaffleRepository

	// CustodyLedger returns the custody ledger bound to this transaction
	CustodyLedger() CustodyLedger

	// EventBus returns the transactional event publisher; events are
	// flushed after commit and discarded on rollback
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
