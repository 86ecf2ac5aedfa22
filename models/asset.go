package models

// ItemRef identifies a single collectible by collection and item identifier
type ItemRef struct {
	Collection string
	ItemID     int64
}

// CustodyTransfer is one row of the append-only custody journal. Fungible
// moves set Asset and Amount; collectible moves set Collection and ItemID.
type CustodyTransfer struct {
	ID          int64   `db:"id"`
	Asset       *string `db:"asset"`
	Collection  *string `db:"collection"`
	ItemID      *int64  `db:"item_id"`
	FromAccount string  `db:"from_account"`
	ToAccount   string  `db:"to_account"`
	Amount      int64   `db:"amount"`
}
