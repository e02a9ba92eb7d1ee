package snapshot

import "time"

// Snapshot is a point-in-time dump of every resting order. Together
// with the WAL records after Seq it reconstructs the book exactly.
type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

// OrderEntry preserves ingress order via Seq so a restore keeps FIFO
// priority within each level.
type OrderEntry struct {
	ID     uint64
	Trader uint64
	Side   uint8
	Price  int64
	Qty    int64
	Seq    uint64
}
