package models

// Outcome tells whether a persistence step replaced a reference.
type Outcome int

const (
	Unchanged Outcome = iota
	Persisted
)

func (o Outcome) String() string {
	if o == Persisted {
		return "persisted"
	}
	return "unchanged"
}

// PersistResult is the outcome of persisting one image or file. URI is the
// reference to store; on Unchanged it is the original one and Reason says why
// (empty when the reference needed no work).
type PersistResult struct {
	Outcome Outcome
	URI     string
	Reason  string
}

func PersistedAs(uri string) PersistResult {
	return PersistResult{Outcome: Persisted, URI: uri}
}

func UnchangedBecause(uri, reason string) PersistResult {
	return PersistResult{Outcome: Unchanged, URI: uri, Reason: reason}
}

func (r PersistResult) Changed() bool {
	return r.Outcome == Persisted
}
