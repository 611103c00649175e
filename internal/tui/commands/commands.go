// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/aula/internal/advisor"
	"github.com/javiermolinar/aula/internal/config"
	"github.com/javiermolinar/aula/internal/report"
	"github.com/javiermolinar/aula/internal/scheduler"
	"github.com/javiermolinar/aula/internal/timetable"
)

// SnapshotMsg carries the timetable after a load or mutation.
type SnapshotMsg struct {
	Sessions    []*timetable.Session
	Conflicts   []timetable.Conflict
	Departments []string
	Version     uint64
}

// SavedMsg is sent when a session was added or updated.
type SavedMsg struct {
	Session *timetable.Session
	Created bool
	// Warning explains why the session cannot be drawn on the grid, if it cannot.
	Warning  string
	Snapshot SnapshotMsg
}

// DeletedMsg is sent when a session was removed.
type DeletedMsg struct {
	ID       int64
	Snapshot SnapshotMsg
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// AdviceStartedMsg is sent when an advice request starts.
type AdviceStartedMsg struct{}

// AdviceMsg is sent when an advice request completes.
type AdviceMsg struct {
	Advice *advisor.Advice
	Err    error
}

// Snapshot reads the current timetable from sched.
func Snapshot(sched *scheduler.Scheduler) SnapshotMsg {
	return SnapshotMsg{
		Sessions:    sched.All(),
		Conflicts:   sched.Conflicts(),
		Departments: sched.Departments(),
		Version:     sched.Version(),
	}
}

// Load reads the current timetable.
func Load(sched *scheduler.Scheduler) tea.Cmd {
	return func() tea.Msg {
		return Snapshot(sched)
	}
}

// Save adds sess when its ID is zero and updates it otherwise.
func Save(sched *scheduler.Scheduler, sess *timetable.Session) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		created := sess.ID == 0

		var err error
		if created {
			err = sched.Add(ctx, sess)
		} else {
			err = sched.Update(ctx, sess)
		}
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SavedMsg{
			Session:  sess,
			Created:  created,
			Warning:  sched.CheckWindow(sess),
			Snapshot: Snapshot(sched),
		}
	}
}

// Delete removes the session with the given id.
func Delete(sched *scheduler.Scheduler, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := sched.Remove(context.Background(), id); err != nil {
			return ErrMsg{Err: err}
		}
		return DeletedMsg{ID: id, Snapshot: Snapshot(sched)}
	}
}

// Advise asks the configured LLM how to resolve the current conflicts.
func Advise(cfg *config.Config, sched *scheduler.Scheduler) tea.Cmd {
	return tea.Sequence(
		func() tea.Msg { return AdviceStartedMsg{} },
		func() tea.Msg {
			r, err := report.Build(context.Background(), sched, report.Options{
				IncludeAdvice: true,
				Advisor:       cfg.Advisor,
			})
			if err != nil {
				return AdviceMsg{Err: err}
			}
			if r.AdviceError != "" {
				return AdviceMsg{Err: errors.New(r.AdviceError)}
			}
			if r.Advice == nil {
				return AdviceMsg{Advice: &advisor.Advice{Summary: "No conflicts to resolve."}}
			}
			return AdviceMsg{Advice: r.Advice}
		},
	)
}
