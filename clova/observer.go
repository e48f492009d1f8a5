package clova

import "time"

// Outcome summarises how a call ended.
type Outcome string

const (
	OutcomeHandled   Outcome = "handled"
	OutcomeNoHandler Outcome = "no_handler"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// DefaultIntentLabel stands in for the intent name when the default intent
// served the call, so observers never see client-chosen names.
const DefaultIntentLabel = "default"

// Observer receives dispatch events, e.g. for metrics. The intent passed to
// ObserveConvertError is a registered name or DefaultIntentLabel.
type Observer interface {
	ObserveCall(kind Kind, outcome Outcome, elapsed time.Duration)
	ObserveConvertError(intent, param string)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(Kind, Outcome, time.Duration) {}
func (nopObserver) ObserveConvertError(string, string)       {}
