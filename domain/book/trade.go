package book

// Trade is emitted for every fill. The book never stores trades; they
// are returned from Place in execution order and consumed downstream.
type Trade struct {
	MakerID uint64
	TakerID uint64
	Price   int64
	Qty     int64
	Seq     uint64
	At      int64
}
