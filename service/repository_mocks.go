package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"raffler/events"
	"raffler/models"
)

// MockRaffleRepository is a mock implementation of RaffleRepository
type MockRaffleRepository struct {
	mock.Mock
}

func (m *MockRaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	args := m.Called(ctx, raffle)
	return args.Error(0)
}

func (m *MockRaffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetDetailByID(ctx context.Context, id int64) (*models.RaffleDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaffleDetail), args.Error(1)
}

func (m *MockRaffleRepository) Update(ctx context.Context, raffle *models.Raffle) error {
	args := m.Called(ctx, raffle)
	return args.Error(0)
}

func (m *MockRaffleRepository) GetActiveIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRaffleRepository) AddTicketHolders(ctx context.Context, raffleID int64, participant string, count int64) error {
	args := m.Called(ctx, raffleID, participant, count)
	return args.Error(0)
}

func (m *MockRaffleRepository) AddFreeParticipant(ctx context.Context, raffleID int64, participant string) error {
	args := m.Called(ctx, raffleID, participant)
	return args.Error(0)
}

func (m *MockRaffleRepository) CountTicketsByParticipant(ctx context.Context, raffleID int64, participant string) (int64, error) {
	args := m.Called(ctx, raffleID, participant)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustodyLedger is a mock implementation of CustodyLedger
type MockCustodyLedger struct {
	mock.Mock
}

func (m *MockCustodyLedger) OwnerOf(ctx context.Context, collection string, itemID int64) (string, error) {
	args := m.Called(ctx, collection, itemID)
	return args.String(0), args.Error(1)
}

func (m *MockCustodyLedger) CustodialTransfer(ctx context.Context, collection string, itemID int64, from, to string) error {
	args := m.Called(ctx, collection, itemID, from, to)
	return args.Error(0)
}

func (m *MockCustodyLedger) Allowance(ctx context.Context, asset, owner, spender string) (int64, error) {
	args := m.Called(ctx, asset, owner, spender)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustodyLedger) TransferFrom(ctx context.Context, asset, from, to string, amount int64) error {
	args := m.Called(ctx, asset, from, to, amount)
	return args.Error(0)
}

func (m *MockCustodyLedger) Transfer(ctx context.Context, asset, from, to string, amount int64) error {
	args := m.Called(ctx, asset, from, to, amount)
	return args.Error(0)
}

func (m *MockCustodyLedger) BalanceOf(ctx context.Context, asset, account string) (int64, error) {
	args := m.Called(ctx, asset, account)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustodyLedger) Approve(ctx context.Context, owner, asset, spender string, amount int64) error {
	args := m.Called(ctx, owner, asset, spender, amount)
	return args.Error(0)
}

func (m *MockCustodyLedger) Credit(ctx context.Context, asset, holder string, amount int64) error {
	args := m.Called(ctx, asset, holder, amount)
	return args.Error(0)
}

func (m *MockCustodyLedger) MintCollectible(ctx context.Context, collection string, itemID int64, owner string) error {
	args := m.Called(ctx, collection, itemID, owner)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockWinnerPicker is a mock implementation of WinnerPicker
type MockWinnerPicker struct {
	mock.Mock
}

func (m *MockWinnerPicker) Pick(ctx context.Context, ticketHolders []string, freeEntrants int) (int, error) {
	args := m.Called(ctx, ticketHolders, freeEntrants)
	return args.Int(0), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetDependencies rather than mocked per call.
type MockUnitOfWork struct {
	mock.Mock
	raffleRepo    RaffleRepository
	custodyLedger CustodyLedger
	eventBus      EventPublisher
}

// SetDependencies wires the repositories this unit of work hands out
func (m *MockUnitOfWork) SetDependencies(raffleRepo RaffleRepository, ledger CustodyLedger, bus EventPublisher) {
	m.raffleRepo = raffleRepo
	m.custodyLedger = ledger
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) RaffleRepository() RaffleRepository {
	return m.raffleRepo
}

func (m *MockUnitOfWork) CustodyLedger() CustodyLedger {
	return m.custodyLedger
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
