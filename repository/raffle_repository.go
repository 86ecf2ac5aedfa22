package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"raffler/database"
	"raffler/models"
)

// RaffleRepository implements the RaffleRepository interface
type RaffleRepository struct {
	q queryable
}

// NewRaffleRepository creates a new raffle repository
func NewRaffleRepository(db *database.DB) *RaffleRepository {
	return &RaffleRepository{q: db.Pool}
}

// newRaffleRepositoryWithTx creates a new raffle repository with a transaction
func newRaffleRepositoryWithTx(tx queryable) *RaffleRepository {
	return &RaffleRepository{q: tx}
}

// Create inserts a new raffle and populates its generated fields
func (r *RaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	query := `
		INSERT INTO raffles
		(prize_collection, prize_item_id, max_entries_per_user, entry_cost, max_entries, total_entries_sold, ends_at, is_open)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		raffle.PrizeCollection,
		raffle.PrizeItemID,
		raffle.MaxEntriesPerUser,
		raffle.EntryCost,
		raffle.MaxEntries,
		raffle.TotalEntriesSold,
		raffle.EndsAt,
		raffle.IsOpen,
	).Scan(&raffle.ID, &raffle.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create raffle: %w", err)
	}

	return nil
}

// GetByID returns a raffle by ID, nil if not found
func (r *RaffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	query := `
		SELECT id, prize_collection, prize_item_id, max_entries_per_user, entry_cost,
		       max_entries, total_entries_sold, ends_at, winner, is_open, claimed_at, created_at
		FROM raffles
		WHERE id = $1
	`

	raffle := &models.Raffle{}
	err := r.q.QueryRow(ctx, query, id).Scan(
		&raffle.ID,
		&raffle.PrizeCollection,
		&raffle.PrizeItemID,
		&raffle.MaxEntriesPerUser,
		&raffle.EntryCost,
		&raffle.MaxEntries,
		&raffle.TotalEntriesSold,
		&raffle.EndsAt,
		&raffle.Winner,
		&raffle.IsOpen,
		&raffle.ClaimedAt,
		&raffle.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle %d: %w", id, err)
	}

	return raffle, nil
}

// GetDetailByID returns a raffle with its draw pool and free-track roster,
// both in issuance order, nil if not found
func (r *RaffleRepository) GetDetailByID(ctx context.Context, id int64) (*models.RaffleDetail, error) {
	raffle, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, nil
	}

	holders, err := r.listParticipants(ctx, "raffle_tickets", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket holders for raffle %d: %w", id, err)
	}

	free, err := r.listParticipants(ctx, "raffle_free_entries", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load free participants for raffle %d: %w", id, err)
	}

	return &models.RaffleDetail{
		Raffle:           raffle,
		TicketHolders:    holders,
		FreeParticipants: free,
	}, nil
}

func (r *RaffleRepository) listParticipants(ctx context.Context, table string, raffleID int64) ([]string, error) {
	query := fmt.Sprintf(`SELECT participant FROM %s WHERE raffle_id = $1 ORDER BY id`, table)

	rows, err := r.q.Query(ctx, query, raffleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// Update persists the raffle's mutable fields
func (r *RaffleRepository) Update(ctx context.Context, raffle *models.Raffle) error {
	query := `
		UPDATE raffles
		SET total_entries_sold = $2, ends_at = $3, winner = $4, is_open = $5, claimed_at = $6
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		raffle.ID,
		raffle.TotalEntriesSold,
		raffle.EndsAt,
		raffle.Winner,
		raffle.IsOpen,
		raffle.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update raffle %d: %w", raffle.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("raffle %d not found", raffle.ID)
	}

	return nil
}

// GetActiveIDs returns every raffle ID in creation order. The listing only
// ever grows: closing a raffle does not remove it.
func (r *RaffleRepository) GetActiveIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM raffles ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active raffles: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan raffle id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// AddTicketHolders appends count pool slots for the participant
func (r *RaffleRepository) AddTicketHolders(ctx context.Context, raffleID int64, participant string, count int64) error {
	query := `
		INSERT INTO raffle_tickets (raffle_id, participant)
		SELECT $1, $2 FROM generate_series(1, $3)
	`

	if _, err := r.q.Exec(ctx, query, raffleID, participant, count); err != nil {
		return fmt.Errorf("failed to add %d tickets for %s: %w", count, participant, err)
	}

	return nil
}

// AddFreeParticipant appends one free-track roster record
func (r *RaffleRepository) AddFreeParticipant(ctx context.Context, raffleID int64, participant string) error {
	query := `INSERT INTO raffle_free_entries (raffle_id, participant) VALUES ($1, $2)`

	if _, err := r.q.Exec(ctx, query, raffleID, participant); err != nil {
		return fmt.Errorf("failed to add free participant %s: %w", participant, err)
	}

	return nil
}

// CountTicketsByParticipant returns how many pool slots the participant holds
func (r *RaffleRepository) CountTicketsByParticipant(ctx context.Context, raffleID int64, participant string) (int64, error) {
	query := `SELECT COUNT(*) FROM raffle_tickets WHERE raffle_id = $1 AND participant = $2`

	var count int64
	if err := r.q.QueryRow(ctx, query, raffleID, participant).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickets for %s: %w", participant, err)
	}

	return count, nil
}
