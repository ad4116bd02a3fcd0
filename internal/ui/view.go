package ui

import (
	"fmt"
	"strings"
	"time"

	"ai-note-taker/internal/domain"
)

const (
	EmptyStateText  = "No notes yet. AI will generate notes as you view lecture material."
	NoSelectionText = "Select a note from the list to edit"
	SavingText      = "Saving..."
	EditorFooter    = "Edit your notes or let AI continue to update them"
)

// Entry is one row of the note list.
type Entry struct {
	ID        string
	Label     string
	Secondary string
	Active    bool
}

// ListEntries renders one entry per note, in collection order.
func ListEntries(notes []domain.Note, activeID string, now time.Time) []Entry {
	entries := make([]Entry, 0, len(notes))
	for _, n := range notes {
		entries = append(entries, Entry{
			ID:        n.ID,
			Label:     fmt.Sprintf("%s %s", typeBadge(n.Type), n.Title),
			Secondary: RelativeTime(n.Timestamp, now) + "  " + firstLine(n.Content),
			Active:    activeID != "" && n.ID == activeID,
		})
	}
	return entries
}

func CountLabel(n int) string {
	return fmt.Sprintf("%d notes created during this session", n)
}

// EditorHeader is the title block shown above the editor.
func EditorHeader(note domain.Note, now time.Time) string {
	desc := "Created " + RelativeTime(note.Timestamp, now)
	if note.Source != "" {
		desc += " | Source: " + note.Source
	}
	return fmt.Sprintf("%s %s\n%s", typeBadge(note.Type), note.Title, desc)
}

// RelativeTime formats t relative to now, e.g. "3 minutes ago".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < 45*time.Second:
		return "less than a minute ago"
	case d < 90*time.Second:
		return "1 minute ago"
	case d < 45*time.Minute:
		return fmt.Sprintf("%d minutes ago", int((d+30*time.Second)/time.Minute))
	case d < 90*time.Minute:
		return "about 1 hour ago"
	case d < 24*time.Hour:
		return fmt.Sprintf("about %d hours ago", int((d+30*time.Minute)/time.Hour))
	case d < 48*time.Hour:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", int(d/(24*time.Hour)))
	}
}

func typeBadge(t domain.NoteType) string {
	switch t {
	case domain.NoteTypeSlide:
		return "[slide]"
	case domain.NoteTypeVideo:
		return "[video]"
	default:
		return "[note]"
	}
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
