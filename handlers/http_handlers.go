package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"raffler/service"
)

// HTTPHandler holds the dependencies for the HTTP handlers
type HTTPHandler struct {
	raffles  service.RaffleService
	treasury service.TreasuryService
	custody  service.CustodyService
	gate     service.OperatorGate
}

// NewHTTPHandler creates a new HTTPHandler
func NewHTTPHandler(raffles service.RaffleService, treasury service.TreasuryService, custody service.CustodyService, gate service.OperatorGate) *HTTPHandler {
	return &HTTPHandler{
		raffles:  raffles,
		treasury: treasury,
		custody:  custody,
		gate:     gate,
	}
}

// RegisterRoutes registers all the application routes
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/raffles", h.CreateRaffle)
	router.GET("/raffles", h.ListActiveRaffles)
	router.GET("/raffles/:id", h.GetRaffle)
	router.GET("/raffles/:id/detail", h.GetRaffleDetail)
	router.GET("/raffles/:id/open", h.GetRaffleOpen)
	router.POST("/raffles/:id/entries", h.JoinRaffle)
	router.POST("/raffles/:id/winner", h.SelectWinner)
	router.POST("/raffles/:id/close", h.EndRaffle)
	router.POST("/raffles/:id/claim", h.ClaimPrize)
	router.GET("/membership/balance", h.GetMembershipBalance)
	router.POST("/operator/transfer", h.TransferOperator)
	router.GET("/treasury/balance", h.GetTreasuryBalance)
	router.POST("/treasury/withdrawals", h.Withdraw)

	// Ledger setup surface for funding accounts and registering prizes.
	router.POST("/custody/credits", h.CreditBalance)
	router.POST("/custody/approvals", h.Approve)
	router.POST("/custody/collectibles", h.MintCollectible)
	router.GET("/custody/balance", h.GetCustodyBalance)
}

// caller extracts the calling account identity from the request
func caller(c *gin.Context) string {
	return c.GetHeader("X-Caller-Address")
}

// statusFor maps service error kinds to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientAuthorization):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrTemporalViolation),
		errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrOwnershipMismatch),
		errors.Is(err, service.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrInvalidReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func raffleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid raffle id"})
		return 0, false
	}
	return id, true
}

type createRaffleRequest struct {
	PrizeCollection   string `json:"prizeCollection" binding:"required"`
	PrizeItemID       int64  `json:"prizeItemId"`
	MaxEntriesPerUser int64  `json:"maxEntriesPerUser"`
	EntryCost         int64  `json:"entryCost"`
	MaxEntries        int64  `json:"maxEntries"`
	EndsAt            int64  `json:"endsAt" binding:"required"`
}

// CreateRaffle opens a new raffle with its prize escrowed; operator only
func (h *HTTPHandler) CreateRaffle(c *gin.Context) {
	var req createRaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raffle, err := h.raffles.CreateRaffle(c.Request.Context(), caller(c), service.CreateRaffleParams{
		PrizeCollection:   req.PrizeCollection,
		PrizeItemID:       req.PrizeItemID,
		MaxEntriesPerUser: req.MaxEntriesPerUser,
		EntryCost:         req.EntryCost,
		MaxEntries:        req.MaxEntries,
		EndsAt:            req.EndsAt,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, raffle)
}

// ListActiveRaffles returns the grow-only raffle id listing
func (h *HTTPHandler) ListActiveRaffles(c *gin.Context) {
	ids, err := h.raffles.ActiveRaffleIDs(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"raffleIds": ids})
}

// GetRaffle returns a single raffle record
func (h *HTTPHandler) GetRaffle(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	raffle, err := h.raffles.GetRaffle(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, raffle)
}

// GetRaffleDetail returns a raffle with its draw pool and free roster
func (h *HTTPHandler) GetRaffleDetail(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	detail, err := h.raffles.GetRaffleDetail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetRaffleOpen reports the raffle's open flag
func (h *HTTPHandler) GetRaffleOpen(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	open, err := h.raffles.IsOpen(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"open": open})
}

type joinRaffleRequest struct {
	TicketCount  int64  `json:"ticketCount"`
	PaymentAsset string `json:"paymentAsset"`
}

// JoinRaffle sells entries to the caller
func (h *HTTPHandler) JoinRaffle(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	var req joinRaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.raffles.JoinRaffle(c.Request.Context(), caller(c), id, req.TicketCount, req.PaymentAsset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SelectWinner draws the winner; operator only
func (h *HTTPHandler) SelectWinner(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	winner, err := h.raffles.SelectWinner(c.Request.Context(), caller(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winner": winner})
}

// EndRaffle force-closes the raffle
func (h *HTTPHandler) EndRaffle(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	if err := h.raffles.EndRaffle(c.Request.Context(), caller(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": true})
}

// ClaimPrize releases the escrowed prize to the stored winner
func (h *HTTPHandler) ClaimPrize(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	if err := h.raffles.ClaimPrize(c.Request.Context(), caller(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claimed": true})
}

// GetMembershipBalance returns the caller's membership-asset balance
func (h *HTTPHandler) GetMembershipBalance(c *gin.Context) {
	balance, err := h.raffles.MembershipBalance(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

type transferOperatorRequest struct {
	NewOperator string `json:"newOperator" binding:"required"`
}

// TransferOperator hands the privileged identity to a new address
func (h *HTTPHandler) TransferOperator(c *gin.Context) {
	var req transferOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gate.TransferOperator(caller(c), req.NewOperator); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operator": req.NewOperator})
}

// GetTreasuryBalance returns the custody balance for the queried asset
func (h *HTTPHandler) GetTreasuryBalance(c *gin.Context) {
	balance, err := h.treasury.BalanceOf(c.Request.Context(), c.Query("asset"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

type withdrawRequest struct {
	Asset  string `json:"asset" binding:"required"`
	Amount int64  `json:"amount"`
}

// Withdraw moves funds out of custody; operator only
func (h *HTTPHandler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.treasury.Withdraw(c.Request.Context(), caller(c), req.Asset, req.Amount); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": true})
}

type creditRequest struct {
	Asset  string `json:"asset" binding:"required"`
	Holder string `json:"holder" binding:"required"`
	Amount int64  `json:"amount"`
}

// CreditBalance mints funds into an account
func (h *HTTPHandler) CreditBalance(c *gin.Context) {
	var req creditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.custody.Credit(c.Request.Context(), req.Asset, req.Holder, req.Amount); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credited": true})
}

type approveRequest struct {
	Asset   string `json:"asset" binding:"required"`
	Spender string `json:"spender" binding:"required"`
	Amount  int64  `json:"amount"`
}

// Approve sets the caller's allowance toward a spender
func (h *HTTPHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.custody.Approve(c.Request.Context(), caller(c), req.Asset, req.Spender, req.Amount); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": true})
}

type mintCollectibleRequest struct {
	Collection string `json:"collection" binding:"required"`
	ItemID     int64  `json:"itemId"`
	Owner      string `json:"owner" binding:"required"`
}

// MintCollectible registers a new collectible
func (h *HTTPHandler) MintCollectible(c *gin.Context) {
	var req mintCollectibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.custody.MintCollectible(c.Request.Context(), req.Collection, req.ItemID, req.Owner); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"minted": true})
}

// GetCustodyBalance returns any account's balance for an asset
func (h *HTTPHandler) GetCustodyBalance(c *gin.Context) {
	balance, err := h.custody.BalanceOf(c.Request.Context(), c.Query("asset"), c.Query("holder"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
