package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/javiermolinar/aula/internal/timetable"
)

const systemPrompt = `You help a university registrar resolve timetable conflicts.

Each conflict names two sessions that overlap on the same day and share a room or an instructor.
For each conflict you may be given free slots where one of the sessions could move without
creating a new clash.

Rules:
1. Propose exactly one action per conflict, referencing its id.
2. Prefer moving the session that has free slots listed; use one of those slots verbatim.
3. If no free slot is listed, suggest a different room or instructor instead.
4. Keep each action under 25 words.

Respond ONLY with valid JSON (no markdown, no explanation):
{
  "summary": "string",
  "suggestions": [
    {"conflict_id": 1, "action": "string"}
  ]
}`

// DefaultMaxConflicts bounds how many conflicts are sent in one prompt.
const DefaultMaxConflicts = 10

// Move lists the slots a conflicting session could move to on a day.
type Move struct {
	ConflictID int
	Session    *timetable.Session
	Day        timetable.Weekday
	Slots      []timetable.Slot
}

// Suggestion is the model's proposed fix for one conflict.
type Suggestion struct {
	ConflictID int    `json:"conflict_id"`
	Action     string `json:"action"`
}

// Advice is the model's answer for a batch of conflicts.
type Advice struct {
	Summary     string       `json:"summary"`
	Suggestions []Suggestion `json:"suggestions"`
	// Omitted counts conflicts left out of the prompt.
	Omitted int `json:"omitted,omitempty"`
}

// String renders the advice as plain text.
func (a *Advice) String() string {
	var sb strings.Builder
	if a.Summary != "" {
		sb.WriteString(a.Summary)
		sb.WriteString("\n")
	}
	for _, s := range a.Suggestions {
		fmt.Fprintf(&sb, "  #%d %s\n", s.ConflictID, s.Action)
	}
	if a.Omitted > 0 {
		fmt.Fprintf(&sb, "  (+%d more conflicts not reviewed)\n", a.Omitted)
	}
	return sb.String()
}

// Options configures an Advisor.
type Options struct {
	MaxConflicts int
}

// Advisor turns detected conflicts into resolution suggestions.
type Advisor struct {
	client Client
	opts   Options
}

// New creates an Advisor backed by client.
func New(client Client, opts Options) *Advisor {
	if opts.MaxConflicts <= 0 {
		opts.MaxConflicts = DefaultMaxConflicts
	}
	return &Advisor{client: client, opts: opts}
}

// Advise asks the model how to resolve conflicts. Suggestions for conflict ids that were
// not in the prompt are dropped.
func (a *Advisor) Advise(ctx context.Context, conflicts []timetable.Conflict, moves []Move) (*Advice, error) {
	if len(conflicts) == 0 {
		return &Advice{Summary: "No conflicts to resolve."}, nil
	}

	shown, more := timetable.Summarize(conflicts, a.opts.MaxConflicts)
	prompt := formatPrompt(shown, moves)

	var advice Advice
	err := a.client.ChatJSON(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, &advice)
	if err != nil {
		return nil, fmt.Errorf("requesting advice: %w", err)
	}

	known := make(map[int]bool, len(shown))
	for _, c := range shown {
		known[c.ID] = true
	}
	kept := advice.Suggestions[:0]
	for _, s := range advice.Suggestions {
		if known[s.ConflictID] && strings.TrimSpace(s.Action) != "" {
			kept = append(kept, s)
		}
	}
	advice.Suggestions = kept
	advice.Omitted = more
	return &advice, nil
}

// formatPrompt lists conflicts and their free slots in a compact text form.
func formatPrompt(conflicts []timetable.Conflict, moves []Move) string {
	byConflict := make(map[int][]Move)
	for _, m := range moves {
		byConflict[m.ConflictID] = append(byConflict[m.ConflictID], m)
	}

	var sb strings.Builder
	sb.WriteString("Conflicts:\n")
	for _, c := range conflicts {
		a, b := c.Sessions[0], c.Sessions[1]
		fmt.Fprintf(&sb, "#%d %s on %s\n", c.ID, c.Type, c.Day)
		fmt.Fprintf(&sb, "  - [%d] %s %s, %s, %s\n", a.ID, a.CourseCode, a.TimeRange(), a.Room, a.Instructor)
		fmt.Fprintf(&sb, "  - [%d] %s %s, %s, %s\n", b.ID, b.CourseCode, b.TimeRange(), b.Room, b.Instructor)
		for _, m := range byConflict[c.ID] {
			if m.Session == nil || len(m.Slots) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "    free for [%d] on %s: %s\n", m.Session.ID, m.Day, formatSlots(m.Slots, 6))
		}
	}
	return sb.String()
}

func formatSlots(slots []timetable.Slot, limit int) string {
	labels := make([]string, 0, min(len(slots), limit))
	for i, s := range slots {
		if i == limit {
			break
		}
		labels = append(labels, s.Label)
	}
	out := strings.Join(labels, ", ")
	if len(slots) > limit {
		out += fmt.Sprintf(" (+%d more)", len(slots)-limit)
	}
	return out
}
