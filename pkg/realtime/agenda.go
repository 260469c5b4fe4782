package realtime

import (
	"sort"
	"time"
)

// Agenda is a time-ordered list of pending jobs. Jobs due at the same instant
// run in the order they were scheduled.
type Agenda[J any] struct {
	entries []agendaEntry[J]
	seq     uint64
}

type agendaEntry[J any] struct {
	due time.Time
	seq uint64
	job J
}

// Schedule queues job to run at due.
func (a *Agenda[J]) Schedule(due time.Time, job J) {
	a.seq++
	entry := agendaEntry[J]{due: due, seq: a.seq, job: job}
	i := sort.Search(len(a.entries), func(i int) bool {
		return a.entries[i].due.After(due)
	})
	a.entries = append(a.entries, agendaEntry[J]{})
	copy(a.entries[i+1:], a.entries[i:])
	a.entries[i] = entry
}

// Next returns the due time of the earliest job.
func (a *Agenda[J]) Next() (time.Time, bool) {
	if len(a.entries) == 0 {
		return time.Time{}, false
	}
	return a.entries[0].due, true
}

// PopDue removes and returns the earliest job if it is due at or before now.
func (a *Agenda[J]) PopDue(now time.Time) (job J, due time.Time, ok bool) {
	if len(a.entries) == 0 || a.entries[0].due.After(now) {
		return job, time.Time{}, false
	}
	entry := a.entries[0]
	a.entries[0] = agendaEntry[J]{}
	a.entries = a.entries[1:]
	return entry.job, entry.due, true
}

// Len returns the number of pending jobs.
func (a *Agenda[J]) Len() int {
	return len(a.entries)
}

// Clear drops every pending job.
func (a *Agenda[J]) Clear() {
	a.entries = nil
}
