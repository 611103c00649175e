// Package scheduler owns the live timetable: the stored sessions and everything derived
// from them.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/javiermolinar/aula/internal/timetable"
)

// Options configures a Scheduler.
type Options struct {
	// Slots are the grid rows. Defaults to timetable.DefaultSlots.
	Slots []timetable.Slot
	// Mode selects grid placement. Defaults to timetable.LookupExact.
	Mode timetable.LookupMode
	// Logger receives debug output about recomputation. Defaults to slog.Default.
	Logger *slog.Logger
}

// Scheduler wraps a repository and keeps conflicts and the grid in step with it.
// Every mutation validates, writes, then recomputes all derived data, so readers never
// see a conflict list older than the sessions. It is safe for concurrent use.
type Scheduler struct {
	repo  timetable.Repository
	slots []timetable.Slot
	mode  timetable.LookupMode
	log   *slog.Logger

	mu        sync.RWMutex
	dir       *timetable.Directory
	sessions  []*timetable.Session // insertion order
	conflicts []timetable.Conflict
	grid      *timetable.Grid
	version   uint64
}

// New creates a Scheduler over repo. Call Refresh or Load before reading if repo is not empty.
func New(repo timetable.Repository, opts Options) *Scheduler {
	if len(opts.Slots) == 0 {
		opts.Slots = timetable.DefaultSlots()
	}
	if opts.Mode == "" {
		opts.Mode = timetable.LookupExact
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Scheduler{
		repo:  repo,
		slots: opts.Slots,
		mode:  opts.Mode,
		log:   opts.Logger,
		dir:   timetable.NewDirectory(),
		grid:  timetable.NewGrid(nil, opts.Slots, opts.Mode),
	}
}

// Load replaces the whole timetable with sessions.
// Sessions with a zero ID get one assigned; room and instructor ids are resolved afresh.
func (s *Scheduler) Load(ctx context.Context, sessions []*timetable.Session) error {
	for i, sess := range sessions {
		if err := sess.Validate(); err != nil {
			return fmt.Errorf("session %d (%s): %w", i+1, sess.CourseCode, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := timetable.NewDirectory()
	dir.ResolveAll(sessions)
	if err := s.repo.ReplaceSessions(ctx, sessions); err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	return s.recompute(ctx, "load")
}

// Refresh rebuilds derived data from the repository, including the room and
// instructor ids already stored there.
func (s *Scheduler) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recompute(ctx, "refresh")
}

// Add validates and stores a new session, then recomputes conflicts.
func (s *Scheduler) Add(ctx context.Context, sess *timetable.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dir.Resolve(sess)
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return fmt.Errorf("adding session: %w", err)
	}
	return s.recompute(ctx, "add")
}

// Update replaces an existing session, then recomputes conflicts.
// A renamed room or instructor is re-resolved unless the caller also changed its id.
func (s *Scheduler) Update(ctx context.Context, sess *timetable.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.repo.GetSession(ctx, sess.ID)
	if err != nil {
		return err
	}
	if sess.RoomID == old.RoomID && timetable.NormalizeName(sess.Room) != timetable.NormalizeName(old.Room) {
		sess.RoomID = 0
	}
	if sess.InstructorID == old.InstructorID && timetable.NormalizeName(sess.Instructor) != timetable.NormalizeName(old.Instructor) {
		sess.InstructorID = 0
	}
	s.dir.Resolve(sess)

	if err := s.repo.UpdateSession(ctx, sess); err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	return s.recompute(ctx, "update")
}

// Remove deletes a session, then recomputes conflicts.
func (s *Scheduler) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	return s.recompute(ctx, "remove")
}

// recompute reloads all sessions and rebuilds the directory, conflicts and the grid.
// The directory is seeded from the stored ids so ids handed out later never reuse
// one that a stored session already carries. Callers hold mu.
func (s *Scheduler) recompute(ctx context.Context, reason string) error {
	sessions, err := s.repo.ListSessions(ctx, timetable.Query{})
	if err != nil {
		return fmt.Errorf("reloading sessions: %w", err)
	}
	dir := timetable.NewDirectory()
	dir.ResolveAll(sessions)

	conflicts, err := timetable.DetectConflicts(sessions)
	if err != nil {
		return fmt.Errorf("detecting conflicts: %w", err)
	}

	s.dir = dir
	s.sessions = sessions
	s.conflicts = conflicts
	s.grid = timetable.NewGrid(sessions, s.slots, s.mode)
	s.version++

	s.log.Debug("timetable recomputed",
		"reason", reason,
		"sessions", len(sessions),
		"conflicts", len(conflicts),
		"unaligned", len(s.grid.Unaligned()),
		"version", s.version,
	)
	return nil
}

// Get returns one session by id.
func (s *Scheduler) Get(ctx context.Context, id int64) (*timetable.Session, error) {
	return s.repo.GetSession(ctx, id)
}

// Sessions lists sessions from the repository with filtering, sorting and paging.
func (s *Scheduler) Sessions(ctx context.Context, q timetable.Query) ([]*timetable.Session, error) {
	return s.repo.ListSessions(ctx, q)
}

// Page lists sessions together with paging metadata.
func (s *Scheduler) Page(ctx context.Context, q timetable.Query) (timetable.Page, error) {
	sessions, err := s.repo.ListSessions(ctx, q)
	if err != nil {
		return timetable.Page{}, err
	}
	total, err := s.repo.CountSessions(ctx, q)
	if err != nil {
		return timetable.Page{}, err
	}
	return timetable.NewPage(sessions, q, total), nil
}

// All returns every session in insertion order.
// The sessions are shared snapshots and must not be modified.
func (s *Scheduler) All() []*timetable.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sessions)
}

// Conflicts returns the conflicts of the current timetable.
func (s *Scheduler) Conflicts() []timetable.Conflict {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.conflicts)
}

// Grid returns the grid index of the current timetable. Grids are immutable.
func (s *Scheduler) Grid() *timetable.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// Version increases with every recomputation.
func (s *Scheduler) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Slots returns the configured grid rows.
func (s *Scheduler) Slots() []timetable.Slot {
	return s.slots
}

// Mode returns the configured grid lookup mode.
func (s *Scheduler) Mode() timetable.LookupMode {
	return s.mode
}

// Workload returns per-instructor teaching load.
func (s *Scheduler) Workload() []timetable.InstructorLoad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return timetable.Workload(s.sessions, s.conflicts)
}

// Rooms returns per-room utilisation against the grid window.
func (s *Scheduler) Rooms() []timetable.RoomUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return timetable.RoomUtilization(s.sessions, s.slots)
}

// Totals returns headline counts for the current timetable.
func (s *Scheduler) Totals() timetable.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return timetable.ComputeTotals(s.sessions, s.conflicts)
}

// Departments returns the distinct departments in first-seen order.
func (s *Scheduler) Departments() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var depts []string
	for _, sess := range s.sessions {
		if sess.Department != "" && !seen[sess.Department] {
			seen[sess.Department] = true
			depts = append(depts, sess.Department)
		}
	}
	return depts
}
