package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNotReady      = errors.New("venue not ready")
	ErrSigningFailed = errors.New("signing failed")
	ErrEmptyLadder   = errors.New("kalshi strike ladder is empty")
)

// VetoReason classifies why the dispatcher refused to place an order.
type VetoReason string

const (
	VetoHourBoundary  VetoReason = "hour_boundary"
	VetoNotProfitable VetoReason = "not_profitable"
	VetoBelowMinimum  VetoReason = "below_min_margin"
	VetoVenueNotReady VetoReason = "venue_not_ready"
)

// ExecutionVeto is the structured rejection returned when a trade request
// fails a pre-trade gate. Vetoes are expected control flow, distinguishable
// from detection errors and from venue failures.
type ExecutionVeto struct {
	Reason VetoReason
	Detail string
}

func (v *ExecutionVeto) Error() string {
	return fmt.Sprintf("execution vetoed (%s): %s", v.Reason, v.Detail)
}

// AsVeto unwraps err into an *ExecutionVeto if it is one.
func AsVeto(err error) (*ExecutionVeto, bool) {
	var v *ExecutionVeto
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
