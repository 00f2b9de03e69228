package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recorder buffers audit entries for one analysis run. Log does no I/O;
// Flush persists the whole buffer in step order, all or nothing. One
// recorder serves exactly one run: step order restarts at 1 for each new
// recorder.
type Recorder struct {
	agreementID string
	entries     []Entry
}

// NewRecorder constructs a Recorder for one run over one agreement.
func NewRecorder(agreementID string) *Recorder {
	return &Recorder{agreementID: agreementID}
}

// Log buffers an entry, assigning the next step order.
func (r *Recorder) Log(entry Entry) {
	entry.ID = uuid.NewString()
	entry.AgreementID = r.agreementID
	entry.StepOrder = len(r.entries) + 1
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, entry)
}

// Len returns the number of buffered entries.
func (r *Recorder) Len() int { return len(r.entries) }

// Flush persists all buffered entries. On error nothing is considered
// persisted and the run counts as not-fully-audited.
func (r *Recorder) Flush(ctx context.Context, repo Repo) error {
	if len(r.entries) == 0 || repo == nil {
		return nil
	}
	return repo.BulkInsert(ctx, r.entries)
}
