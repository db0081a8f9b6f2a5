package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// ExistsFunc reports whether the remote event behind id still exists. An
// error means the answer is unknown (transport failure), which is distinct
// from (false, nil): failure never implies the event is gone.
type ExistsFunc func(ctx context.Context, id model.EventID) (bool, error)

// Reconcile returns a copy of led that keeps only sub-events whose remote
// event still exists. Sessions left with zero sub-events are dropped.
// Completion and missed marks are left untouched: they record what the user
// did, and that record outlives the calendar events behind it.
//
// Probe failures are conservative: the sub-event is retained and the failure
// is folded into the returned error for the caller to retry later. The
// operation is idempotent; reconciling an already-reconciled ledger reports
// changed == false.
func Reconcile(ctx context.Context, led model.Ledger, exists ExistsFunc) (model.Ledger, bool, error) {
	out := led.Clone()
	changed := false
	var errs []error

	sessions := out.CreatedSessions[:0]
	for _, sess := range out.CreatedSessions {
		kept := sess.SubEvents[:0]
		for _, se := range sess.SubEvents {
			present, err := exists(ctx, se.ID)
			switch {
			case err != nil:
				errs = append(errs, fmt.Errorf("existence check for %s: %w", se.ID, err))
				kept = append(kept, se)
			case present:
				kept = append(kept, se)
			default:
				changed = true
			}
		}
		sess.SubEvents = kept
		if len(kept) == 0 {
			changed = true
			continue
		}
		sessions = append(sessions, sess)
	}
	out.CreatedSessions = sessions

	return out, changed, errors.Join(errs...)
}
