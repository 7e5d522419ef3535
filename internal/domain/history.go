package domain

// Purchase is one entry in a user's purchase history: the global sequence
// number assigned at arrival and the purchase amount. Sequence numbers are
// strictly increasing within a history, so each history is sorted by
// recency without ever being re-sorted.
type Purchase struct {
	Seq    uint64
	Amount float64
}
