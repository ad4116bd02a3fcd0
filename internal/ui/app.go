// Package ui renders the session in a terminal dashboard: the note list on
// the right, capture status and the editor on the left.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"ai-note-taker/internal/dashboard"
	"ai-note-taker/internal/domain"
	"ai-note-taker/internal/session"
)

const controlsText = "[c] Capture  [p] Export PDF  [t] Export TXT  [enter] Open  [tab] Switch pane  [ctrl-s] Save  [q/esc] Quit"

type UI struct {
	app  *tview.Application
	dash *dashboard.Dashboard
	ctx  context.Context
	now  func() time.Time

	root     *tview.Flex
	list     *tview.List
	count    *tview.TextView
	status   *tview.TextView
	header   *tview.TextView
	editor   *tview.TextArea
	footer   *tview.TextView
	controls *tview.TextView

	// Owned by the tview event goroutine.
	snap      session.Snapshot
	ids       []string
	editingID string
	saving    bool
	message   string
	rendering bool
}

// New builds the dashboard view. Store changes are pushed to the screen as
// they happen.
func New(ctx context.Context, dash *dashboard.Dashboard) *UI {
	u := &UI{
		app:  tview.NewApplication(),
		dash: dash,
		ctx:  ctx,
		now:  time.Now,
	}

	u.status = tview.NewTextView().SetDynamicColors(true)
	u.status.SetBorder(true)
	u.status.SetTitle(" AI Note Taker ")

	u.header = tview.NewTextView().SetDynamicColors(false)
	u.editor = tview.NewTextArea().SetPlaceholder(NoSelectionText)
	u.editor.SetBorder(true)
	u.editor.SetTitle(" Editor ")
	u.footer = tview.NewTextView().SetTextColor(tcell.ColorGray)

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(u.status, 4, 0, false).
		AddItem(u.header, 2, 0, false).
		AddItem(u.editor, 0, 1, false).
		AddItem(u.footer, 1, 0, false)

	u.list = tview.NewList().SetHighlightFullLine(true)
	u.list.SetBorder(true)
	u.list.SetTitle(" Notes ")
	u.list.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		if u.rendering || index < 0 || index >= len(u.ids) {
			return
		}
		u.dash.SelectNote(u.ids[index])
		u.app.SetFocus(u.editor)
	})
	u.count = tview.NewTextView().SetTextAlign(tview.AlignRight)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(u.list, 0, 1, true).
		AddItem(u.count, 1, 0, false)

	u.controls = tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText(controlsText)
	u.controls.SetDynamicColors(false)

	body := tview.NewFlex().
		AddItem(left, 0, 3, false).
		AddItem(right, 0, 2, true)

	u.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(u.controls, 1, 0, false)
	u.root.SetInputCapture(u.handleKey)

	u.render(dash.Store().Snapshot())
	u.subscribe()
	return u
}

func (u *UI) Run() error {
	return u.app.SetRoot(u.root, true).SetFocus(u.list).Run()
}

func (u *UI) Stop() {
	u.app.Stop()
}

// subscribe forwards store snapshots to the draw loop, keeping only the
// latest one so the store never waits on the screen.
func (u *UI) subscribe() {
	latest := make(chan session.Snapshot, 1)
	u.dash.Store().Subscribe(func(s session.Snapshot) {
		select {
		case latest <- s:
		default:
			select {
			case <-latest:
			default:
			}
			latest <- s
		}
	})

	go func() {
		for {
			select {
			case <-u.ctx.Done():
				return
			case s := <-latest:
				u.app.QueueUpdateDraw(func() { u.render(s) })
			}
		}
	}()
}

func (u *UI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		u.app.Stop()
		return nil
	case tcell.KeyTab, tcell.KeyBacktab:
		if u.app.GetFocus() == u.editor {
			u.app.SetFocus(u.list)
		} else {
			u.app.SetFocus(u.editor)
		}
		return nil
	case tcell.KeyCtrlS:
		u.save()
		return nil
	}

	// plain keys belong to the editor while it has focus
	if u.app.GetFocus() == u.editor || event.Key() != tcell.KeyRune {
		return event
	}

	switch event.Rune() {
	case 'q':
		u.app.Stop()
		return nil
	case 'c':
		u.toggleCapture()
		return nil
	case 'p':
		u.export(domain.ExportPDF)
		return nil
	case 't':
		u.export(domain.ExportTXT)
		return nil
	}
	return event
}

func (u *UI) save() {
	if u.saving || u.editingID == "" {
		return
	}
	content := u.editor.GetText()
	u.saving = true
	u.renderStatus()

	go func() {
		note, ok := u.dash.SaveEdit(u.ctx, content)
		u.app.QueueUpdateDraw(func() {
			u.saving = false
			if ok {
				u.message = fmt.Sprintf("Saved %q", note.Title)
			}
			u.renderStatus()
		})
	}()
}

func (u *UI) toggleCapture() {
	go func() {
		on, err := u.dash.ToggleCapture(u.ctx)
		u.app.QueueUpdateDraw(func() {
			switch {
			case err != nil:
				u.message = "Capture failed to start: " + err.Error()
			case on:
				u.message = "Capture started"
			default:
				u.message = "Capture stopped"
			}
			u.renderStatus()
		})
	}()
}

func (u *UI) export(format domain.ExportFormat) {
	u.message = fmt.Sprintf("Exporting %s...", format)
	u.renderStatus()

	go func() {
		path := u.dash.Export(u.ctx, format)
		u.app.QueueUpdateDraw(func() {
			if path == "" {
				u.message = fmt.Sprintf("Export to %s failed", format)
			} else {
				u.message = "Exported to " + path
			}
			u.renderStatus()
		})
	}()
}

func (u *UI) render(s session.Snapshot) {
	u.snap = s
	u.rendering = true
	defer func() { u.rendering = false }()

	current := u.list.GetCurrentItem()
	u.list.Clear()
	u.ids = u.ids[:0]

	entries := ListEntries(s.Notes, s.ActiveID, u.now())
	if len(entries) == 0 {
		u.list.ShowSecondaryText(false)
		u.list.AddItem(EmptyStateText, "", 0, nil)
	} else {
		u.list.ShowSecondaryText(true)
		for i, e := range entries {
			label := tview.Escape(e.Label)
			if e.Active {
				label = "> " + label
				current = i
			}
			u.list.AddItem(label, tview.Escape(e.Secondary), 0, nil)
			u.ids = append(u.ids, e.ID)
		}
		if current >= len(entries) {
			current = len(entries) - 1
		}
		u.list.SetCurrentItem(current)
	}
	u.count.SetText(CountLabel(len(s.Notes)))

	active, ok := s.Active()
	switch {
	case !ok:
		u.editingID = ""
		u.header.SetText(NoSelectionText)
		u.editor.SetText("", false)
		u.footer.SetText("")
	case active.ID != u.editingID:
		u.editingID = active.ID
		u.header.SetText(EditorHeader(active, u.now()))
		u.editor.SetText(active.Content, false)
		u.footer.SetText(EditorFooter)
	default:
		u.header.SetText(EditorHeader(active, u.now()))
	}

	u.renderStatus()
}

func (u *UI) renderStatus() {
	capture := "[red]o[-] Capture paused"
	if u.snap.Capturing {
		capture = "[green]*[-] Capturing lecture material"
	}

	line2 := tview.Escape(u.message)
	if u.saving {
		line2 = SavingText
	}

	u.status.SetText(fmt.Sprintf("%s   push: %s\n%s", capture, u.dash.PushState(), line2))
}
