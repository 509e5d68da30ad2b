package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"baymap/internal/bay"
	"baymap/internal/overlay"
)

type saveOp int

const (
	opCreate saveOp = iota
	opUpdate
	opDelete
)

func (o saveOp) String() string {
	switch o {
	case opCreate:
		return "save"
	case opUpdate:
		return "update"
	case opDelete:
		return "delete"
	}
	return "unknown"
}

type (
	zonesMsg struct {
		zones []bay.Zone
		err   error
	}
	baysMsg struct {
		bays []bay.Bay
		err  error
	}
	savedMsg struct {
		op    saveOp
		code  string
		saved bay.Saved
		err   error
	}
	styleLoadedMsg struct{ style string }
	passMsg        struct{ pass overlay.Pass }
	bayEventMsg    struct{ ev bay.Event }
)

func loadZones(svc *bay.Service, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		zs, err := svc.Zones(ctx)
		return zonesMsg{zones: zs, err: err}
	}
}

func loadBays(svc *bay.Service, zoneID *string, timeout time.Duration) tea.Cmd {
	zoneID = bay.CloneZone(zoneID)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		bs, err := svc.Reload(ctx, zoneID)
		return baysMsg{bays: bs, err: err}
	}
}

func saveDraft(svc *bay.Service, scope bay.Scope, in bay.Input, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := svc.SaveDraft(ctx, scope, in)
		return savedMsg{op: opCreate, code: in.Code, saved: s, err: err}
	}
}

func saveSelected(svc *bay.Service, scope bay.Scope, id string, in bay.Input, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := svc.SaveSelected(ctx, scope, id, in)
		return savedMsg{op: opUpdate, code: in.Code, saved: s, err: err}
	}
}

func deleteSelected(svc *bay.Service, scope bay.Scope, id, code string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := svc.DeleteSelected(ctx, scope, id)
		return savedMsg{op: opDelete, code: code, saved: s, err: err}
	}
}

// loadStyle stands in for the map engine finishing a style download.
func loadStyle(name string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg { return styleLoadedMsg{style: name} })
}

func schedulePass(p overlay.Pass, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg { return passMsg{pass: p} })
}

// waitEvent blocks for the next live bay event. The channel is never
// closed, so the command is re-issued after every event.
func waitEvent(ch <-chan bay.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg { return bayEventMsg{ev: <-ch} }
}
