package model

import "time"

// EventID identifies an event on the remote calendar. IDs are assigned by
// the remote store on creation and are never minted locally.
type EventID string

// ColorID is a remote calendar color identifier ("1".."11" in Google's palette).
type ColorID string

// BusyWindow is a half-open interval [Start, End) during which the calendar
// owner is unavailable. Windows are fetched fresh for every scheduling
// decision and never cached across unrelated calls.
type BusyWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ReviewInterval is one row of a review timing table: a session is due
// OffsetDays after the anchor date.
type ReviewInterval struct {
	OffsetDays int    `json:"offset_days"`
	Label      string `json:"label"`
}

// ScheduledOccurrence is a single proposed review block within a series.
type ScheduledOccurrence struct {
	OffsetDays int       `json:"offset_days"`
	Label      string    `json:"label"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// SubEvent is one review occurrence inside a session, mirroring one remote
// calendar event. OriginalColorID is captured lazily the first time the
// sub-event is marked complete so the color can be restored on un-complete.
type SubEvent struct {
	ID              EventID  `json:"id"`
	Name            string   `json:"name"`
	Completed       bool     `json:"completed"`
	OriginalColorID *ColorID `json:"originalColorId,omitempty"`
}

// Session is a scheduled review series for one subject. Its ID is the ID of
// the first sub-event created for it.
type Session struct {
	ID        EventID    `json:"id"`
	Title     string     `json:"title"`
	Date      Date       `json:"date"`
	SubEvents []SubEvent `json:"sub_events"`
}

// Mark records that a sub-event was completed or missed at a point in time.
type Mark struct {
	ID        EventID   `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger is the locally persisted record of everything the scheduler has
// created and observed. The remote calendar stays authoritative for
// existence; the ledger is reconciled against it.
type Ledger struct {
	CreatedSessions []Session `json:"created_events"`
	CompletedMarks  []Mark    `json:"completed_events"`
	MissedMarks     []Mark    `json:"missed_events"`
}

// Clone returns a deep copy. Mutating the copy never aliases the original.
func (l Ledger) Clone() Ledger {
	out := Ledger{
		CreatedSessions: make([]Session, len(l.CreatedSessions)),
		CompletedMarks:  append([]Mark(nil), l.CompletedMarks...),
		MissedMarks:     append([]Mark(nil), l.MissedMarks...),
	}
	for i, s := range l.CreatedSessions {
		cs := s
		cs.SubEvents = make([]SubEvent, len(s.SubEvents))
		for j, se := range s.SubEvents {
			if se.OriginalColorID != nil {
				c := *se.OriginalColorID
				se.OriginalColorID = &c
			}
			cs.SubEvents[j] = se
		}
		out.CreatedSessions[i] = cs
	}
	return out
}

// Session returns the session with the given ID, or nil.
func (l Ledger) Session(id EventID) *Session {
	for i := range l.CreatedSessions {
		if l.CreatedSessions[i].ID == id {
			return &l.CreatedSessions[i]
		}
	}
	return nil
}
