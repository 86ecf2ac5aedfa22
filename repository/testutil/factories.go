package testutil

import (
	"time"

	"raffler/models"
)

// CreateTestRaffle creates an open raffle with default values
func CreateTestRaffle() *models.Raffle {
	return &models.Raffle{
		PrizeCollection:   "test-collection",
		PrizeItemID:       1,
		MaxEntriesPerUser: 3,
		EntryCost:         100,
		MaxEntries:        10,
		TotalEntriesSold:  0,
		EndsAt:            time.Now().Add(24 * time.Hour),
		IsOpen:            true,
	}
}

// CreateTestRaffleWithCapacity creates a test raffle with a specific ticket cap
func CreateTestRaffleWithCapacity(maxEntries int64) *models.Raffle {
	raffle := CreateTestRaffle()
	raffle.MaxEntries = maxEntries
	return raffle
}

// CreateEndedTestRaffle creates a raffle whose end time already passed
func CreateEndedTestRaffle() *models.Raffle {
	raffle := CreateTestRaffle()
	raffle.EndsAt = time.Now().Add(-time.Hour)
	raffle.IsOpen = false
	return raffle
}
