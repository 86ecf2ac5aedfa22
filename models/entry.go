package models

import "time"

// TicketEntry is one slot in a raffle's weighted draw pool
type TicketEntry struct {
	ID          int64     `db:"id"`
	RaffleID    int64     `db:"raffle_id"`
	Participant string    `db:"participant"`
	CreatedAt   time.Time `db:"created_at"`
}

// FreeEntry is one free-track roster record, appended once per join call
// made by a membership-asset holder
type FreeEntry struct {
	ID          int64     `db:"id"`
	RaffleID    int64     `db:"raffle_id"`
	Participant string    `db:"participant"`
	CreatedAt   time.Time `db:"created_at"`
}

// EntryResult represents the outcome of a join call (returned to the caller)
type EntryResult struct {
	RaffleID         int64  `json:"raffleId"`
	Participant      string `json:"participant"`
	TicketCount      int64  `json:"ticketCount"`
	FreeTrack        bool   `json:"freeTrack"`
	AmountPaid       int64  `json:"amountPaid"`
	TotalEntriesSold int64  `json:"totalEntriesSold"`
}
