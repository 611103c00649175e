// Package report gathers a timetable overview and, optionally, resolution advice.
package report

import (
	"context"
	"errors"

	"github.com/javiermolinar/aula/internal/advisor"
	"github.com/javiermolinar/aula/internal/config"
	"github.com/javiermolinar/aula/internal/scheduler"
	"github.com/javiermolinar/aula/internal/timetable"
)

// Report holds everything shown by the report command and endpoint.
type Report struct {
	Sessions  []*timetable.Session       `json:"sessions"`
	Conflicts []timetable.Conflict       `json:"conflicts"`
	Workload  []timetable.InstructorLoad `json:"workload"`
	Rooms     []timetable.RoomUsage      `json:"rooms"`
	Totals    timetable.Totals           `json:"totals"`
	Unaligned []*timetable.Session       `json:"unaligned"`

	Advice *advisor.Advice `json:"advice,omitempty"`
	// AdviceError is set when advice was requested but could not be produced.
	AdviceError string `json:"advice_error,omitempty"`
}

// Options configures Build.
type Options struct {
	IncludeAdvice bool
	// Advisor selects the LLM provider when Client is nil.
	Advisor config.AdvisorConfig
	Client  advisor.Client
	// MaxConflicts bounds how many conflicts are sent for advice.
	MaxConflicts int
}

// Build snapshots sched and, if asked, requests advice for its conflicts.
// Advice failures are recorded in the report rather than returned.
func Build(ctx context.Context, sched *scheduler.Scheduler, opts Options) (*Report, error) {
	if sched == nil {
		return nil, errors.New("scheduler is required")
	}

	r := &Report{
		Sessions:  sched.All(),
		Conflicts: sched.Conflicts(),
		Workload:  sched.Workload(),
		Rooms:     sched.Rooms(),
		Totals:    sched.Totals(),
		Unaligned: sched.Grid().Unaligned(),
	}

	if !opts.IncludeAdvice || len(r.Conflicts) == 0 {
		return r, nil
	}

	advice, err := advise(ctx, sched, r.Conflicts, opts)
	if err != nil {
		r.AdviceError = err.Error()
		return r, nil
	}
	r.Advice = advice
	return r, nil
}

func advise(ctx context.Context, sched *scheduler.Scheduler, conflicts []timetable.Conflict, opts Options) (*advisor.Advice, error) {
	client := opts.Client
	if client == nil {
		var err error
		client, err = advisor.NewClient(opts.Advisor)
		if err != nil {
			return nil, err
		}
	}
	return advisor.New(client, advisor.Options{MaxConflicts: opts.MaxConflicts}).
		Advise(ctx, conflicts, Moves(sched, conflicts))
}

// Moves lists, for each conflict, the free slots the later session could move to on the
// same day.
func Moves(sched *scheduler.Scheduler, conflicts []timetable.Conflict) []advisor.Move {
	moves := make([]advisor.Move, 0, len(conflicts))
	for _, c := range conflicts {
		sess := c.Sessions[1]
		if sess == nil {
			continue
		}
		free := sched.FreeSlots(sess, c.Day)
		if len(free) == 0 {
			continue
		}
		moves = append(moves, advisor.Move{ConflictID: c.ID, Session: sess, Day: c.Day, Slots: free})
	}
	return moves
}
