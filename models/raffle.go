package models

import "time"

// Raffle represents one lottery round over a single escrowed prize
type Raffle struct {
	ID                int64      `db:"id" json:"id"`
	PrizeCollection   string     `db:"prize_collection" json:"prizeCollection"`
	PrizeItemID       int64      `db:"prize_item_id" json:"prizeItemId"`
	MaxEntriesPerUser int64      `db:"max_entries_per_user" json:"maxEntriesPerUser"`
	EntryCost         int64      `db:"entry_cost" json:"entryCost"`
	MaxEntries        int64      `db:"max_entries" json:"maxEntries"`
	TotalEntriesSold  int64      `db:"total_entries_sold" json:"totalEntriesSold"`
	EndsAt            time.Time  `db:"ends_at" json:"endsAt"`
	Winner            *string    `db:"winner" json:"winner"`
	IsOpen            bool       `db:"is_open" json:"isOpen"`
	ClaimedAt         *time.Time `db:"claimed_at" json:"claimedAt"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
}

// PrizeRef returns the (collection, item) pair identifying the escrowed prize
func (r *Raffle) PrizeRef() ItemRef {
	return ItemRef{Collection: r.PrizeCollection, ItemID: r.PrizeItemID}
}

// HasEnded checks whether the raffle's entry window has passed
func (r *Raffle) HasEnded(now time.Time) bool {
	return !now.Before(r.EndsAt)
}

// HasWinner checks whether a winner has been drawn
func (r *Raffle) HasWinner() bool {
	return r.Winner != nil && *r.Winner != ""
}

// IsClaimed checks whether the prize has been handed out
func (r *Raffle) IsClaimed() bool {
	return r.ClaimedAt != nil
}

// RaffleDetail combines a raffle with its draw pool and free-track roster.
// TicketHolders carries one slot per ticket sold across both tracks, in
// issuance order; FreeParticipants carries one slot per free-track join call.
type RaffleDetail struct {
	Raffle           *Raffle  `json:"raffle"`
	TicketHolders    []string `json:"ticketHolders"`
	FreeParticipants []string `json:"freeParticipants"`
}
