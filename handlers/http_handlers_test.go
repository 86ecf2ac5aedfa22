package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"raffler/models"
	"raffler/service"
)

type mockRaffleService struct {
	mock.Mock
}

func (m *mockRaffleService) CreateRaffle(ctx context.Context, caller string, params service.CreateRaffleParams) (*models.Raffle, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *mockRaffleService) JoinRaffle(ctx context.Context, caller string, raffleID, ticketCount int64, paymentAsset string) (*models.EntryResult, error) {
	args := m.Called(ctx, caller, raffleID, ticketCount, paymentAsset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntryResult), args.Error(1)
}

func (m *mockRaffleService) SelectWinner(ctx context.Context, caller string, raffleID int64) (string, error) {
	args := m.Called(ctx, caller, raffleID)
	return args.String(0), args.Error(1)
}

func (m *mockRaffleService) EndRaffle(ctx context.Context, caller string, raffleID int64) error {
	args := m.Called(ctx, caller, raffleID)
	return args.Error(0)
}

func (m *mockRaffleService) ClaimPrize(ctx context.Context, caller string, raffleID int64) error {
	args := m.Called(ctx, caller, raffleID)
	return args.Error(0)
}

func (m *mockRaffleService) GetRaffle(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *mockRaffleService) GetRaffleDetail(ctx context.Context, raffleID int64) (*models.RaffleDetail, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaffleDetail), args.Error(1)
}

func (m *mockRaffleService) ActiveRaffleIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockRaffleService) IsOpen(ctx context.Context, raffleID int64) (bool, error) {
	args := m.Called(ctx, raffleID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRaffleService) MembershipBalance(ctx context.Context, caller string) (int64, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(int64), args.Error(1)
}

type mockTreasuryService struct {
	mock.Mock
}

func (m *mockTreasuryService) Withdraw(ctx context.Context, caller, asset string, amount int64) error {
	args := m.Called(ctx, caller, asset, amount)
	return args.Error(0)
}

func (m *mockTreasuryService) BalanceOf(ctx context.Context, asset string) (int64, error) {
	args := m.Called(ctx, asset)
	return args.Get(0).(int64), args.Error(1)
}

type mockCustodyService struct {
	mock.Mock
}

func (m *mockCustodyService) Approve(ctx context.Context, caller, asset, spender string, amount int64) error {
	args := m.Called(ctx, caller, asset, spender, amount)
	return args.Error(0)
}

func (m *mockCustodyService) BalanceOf(ctx context.Context, asset, account string) (int64, error) {
	args := m.Called(ctx, asset, account)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCustodyService) Credit(ctx context.Context, asset, account string, amount int64) error {
	args := m.Called(ctx, asset, account, amount)
	return args.Error(0)
}

func (m *mockCustodyService) MintCollectible(ctx context.Context, collection string, itemID int64, owner string) error {
	args := m.Called(ctx, collection, itemID, owner)
	return args.Error(0)
}

type handlerFixture struct {
	raffles  *mockRaffleService
	treasury *mockTreasuryService
	custody  *mockCustodyService
	router   *gin.Engine
}

func newHandlerFixture() *handlerFixture {
	gin.SetMode(gin.TestMode)
	f := &handlerFixture{
		raffles:  new(mockRaffleService),
		treasury: new(mockTreasuryService),
		custody:  new(mockCustodyService),
	}
	f.router = gin.New()
	NewHTTPHandler(f.raffles, f.treasury, f.custody, service.NewOperatorGate("operator")).RegisterRoutes(f.router)
	return f
}

func (f *handlerFixture) do(method, path, callerAddr, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if callerAddr != "" {
		req.Header.Set("X-Caller-Address", callerAddr)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHTTPHandler_JoinRaffle(t *testing.T) {
	f := newHandlerFixture()

	f.raffles.On("JoinRaffle", mock.Anything, "alice", int64(1), int64(3), "gold").
		Return(&models.EntryResult{RaffleID: 1, Participant: "alice", TicketCount: 3, AmountPaid: 300, TotalEntriesSold: 3}, nil)

	w := f.do(http.MethodPost, "/raffles/1/entries", "alice", `{"ticketCount":3,"paymentAsset":"gold"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var result models.EntryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(300), result.AmountPaid)
	f.raffles.AssertExpectations(t)
}

func TestHTTPHandler_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", service.ErrUnauthorized, http.StatusForbidden},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"temporal violation", service.ErrTemporalViolation, http.StatusConflict},
		{"capacity exceeded", service.ErrCapacityExceeded, http.StatusConflict},
		{"insufficient authorization", service.ErrInsufficientAuthorization, http.StatusPaymentRequired},
		{"ownership mismatch", service.ErrOwnershipMismatch, http.StatusConflict},
		{"invalid argument", service.ErrInvalidArgument, http.StatusBadRequest},
		{"invalid reference", service.ErrInvalidReference, http.StatusBadRequest},
		{"reentrant call", service.ErrReentrantCall, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newHandlerFixture()
			f.raffles.On("JoinRaffle", mock.Anything, "alice", int64(1), int64(1), "gold").
				Return(nil, fmt.Errorf("wrapped: %w", tc.err))

			w := f.do(http.MethodPost, "/raffles/1/entries", "alice", `{"ticketCount":1,"paymentAsset":"gold"}`)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestHTTPHandler_GetRaffle_BadID(t *testing.T) {
	f := newHandlerFixture()

	w := f.do(http.MethodGet, "/raffles/abc", "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.raffles.AssertNotCalled(t, "GetRaffle", mock.Anything, mock.Anything)
}

func TestHTTPHandler_ListActiveRaffles_EmptyIsArray(t *testing.T) {
	f := newHandlerFixture()
	f.raffles.On("ActiveRaffleIDs", mock.Anything).Return([]int64(nil), nil)

	w := f.do(http.MethodGet, "/raffles", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"raffleIds":[]}`, w.Body.String())
}

func TestHTTPHandler_Withdraw(t *testing.T) {
	f := newHandlerFixture()
	f.treasury.On("Withdraw", mock.Anything, "operator", "gold", int64(250)).Return(nil)

	w := f.do(http.MethodPost, "/treasury/withdrawals", "operator", `{"asset":"gold","amount":250}`)

	assert.Equal(t, http.StatusOK, w.Code)
	f.treasury.AssertExpectations(t)
}

func TestHTTPHandler_TransferOperator(t *testing.T) {
	f := newHandlerFixture()

	w := f.do(http.MethodPost, "/operator/transfer", "mallory", `{"newOperator":"mallory"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/operator/transfer", "operator", `{"newOperator":"successor"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
