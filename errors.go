package vest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput reports malformed orders or configuration.
	ErrInvalidInput = errors.New("invalid input")
	// ErrState reports a query the ledger cannot answer in its current state.
	ErrState = errors.New("invalid state")
	// ErrIntegrity reports FIFO matching that does not add up. It is never tolerated.
	ErrIntegrity = fmt.Errorf("%w: integrity failure", ErrState)
	// ErrSingular reports a division by zero.
	ErrSingular = fmt.Errorf("%w: arithmetic singularity", ErrState)
	// ErrDiverged reports an order sizing search that exceeded its iteration cap.
	ErrDiverged = errors.New("computation diverged")
)

// Anomaly flags a singular computation that was recovered with a safe default.
type Anomaly uint8

const (
	// AnomalyBreakeven is set when the break-even price could not be computed.
	AnomalyBreakeven Anomaly = 1 << iota
	// AnomalyReserve is set when the reserve requirement had a zero interval.
	AnomalyReserve
	// AnomalySharePrice is set when the synthetic share count dropped to zero.
	AnomalySharePrice
)

// Has reports whether all flags of a are set.
func (a Anomaly) Has(flag Anomaly) bool { return a&flag == flag }

func (a Anomaly) String() string {
	if a == 0 {
		return "none"
	}
	var names []string
	if a.Has(AnomalyBreakeven) {
		names = append(names, "break-even")
	}
	if a.Has(AnomalyReserve) {
		names = append(names, "reserve")
	}
	if a.Has(AnomalySharePrice) {
		names = append(names, "share-price")
	}
	return strings.Join(names, ",")
}
