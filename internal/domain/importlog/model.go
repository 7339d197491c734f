package importlog

import "time"

// Source names the upstream a failed unit came from.
const (
	SourceSL = "sl"
	SourceLP = "lp"
)

// Record is one failed import unit: the external id that failed, the error
// text, and a serialized snapshot of the offending payload.
type Record struct {
	ID         string
	Source     string
	ExternalID int64
	Message    string
	Payload    []byte
	CreatedAt  time.Time
}
