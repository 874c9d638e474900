package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/media-exporter/internal/config"
	"github.com/handiism/media-exporter/internal/export"
	"github.com/handiism/media-exporter/internal/model"
)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	tree := filepath.Join(dir, "media-tree.json")
	if err := os.WriteFile(tree, []byte(`{"nodes": [{"id": 1, "name": "Images", "contentType": "Folder"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	settings := config.DefaultSettings()
	settings.ExportRootPath = filepath.Join(dir, "export")
	settings.Source = config.SourceSettings{Type: config.SourceJSON, Location: tree}
	return settings
}

func TestModel_ToggleOptions(t *testing.T) {
	m := NewModel(testSettings(t))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e"), Alt: true})
	m = updated.(Model)
	if !m.emptyOnly {
		t.Error("alt+e should enable empty-only")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v"), Alt: true})
	m = updated.(Model)
	if !m.verbose {
		t.Error("alt+v should enable verbose output")
	}
}

func TestModel_VerboseEventsAreFiltered(t *testing.T) {
	m := NewModel(testSettings(t))

	updated, _ := m.Update(ProgressMsg{Event: export.ProgressEvent{Message: "detail", Level: export.LevelVerbose}})
	m = updated.(Model)
	updated, _ = m.Update(ProgressMsg{Event: export.ProgressEvent{Message: "careful", Level: export.LevelWarning}})
	m = updated.(Model)

	if len(m.logs) != 1 || m.logs[0].Message != "careful" {
		t.Errorf("logs = %+v, want only the warning", m.logs)
	}
}

func TestModel_LogsAreCapped(t *testing.T) {
	m := NewModel(testSettings(t))
	for i := 0; i < maxLogs+5; i++ {
		updated, _ := m.Update(ProgressMsg{Event: export.ProgressEvent{Message: "x", Level: export.LevelInfo}})
		m = updated.(Model)
	}
	if len(m.logs) != maxLogs {
		t.Errorf("len(logs) = %d, want %d", len(m.logs), maxLogs)
	}
}

func TestModel_OpenSourceAndExport(t *testing.T) {
	m := NewModel(testSettings(t))

	msg := m.openSource()()
	open, ok := msg.(OpenDoneMsg)
	if !ok || open.Err != nil {
		t.Fatalf("openSource() = %#v", msg)
	}

	updated, _ := m.Update(open)
	m = updated.(Model)
	if m.state != StateExporting {
		t.Fatalf("state = %d, want StateExporting", m.state)
	}

	done, ok := m.startExport()().(ExportDoneMsg)
	if !ok {
		t.Fatal("startExport() did not return ExportDoneMsg")
	}
	updated, _ = m.Update(done)
	m = updated.(Model)

	if m.state != StateComplete {
		t.Fatalf("state = %d, want StateComplete (err %v)", m.state, m.err)
	}
	if !strings.Contains(m.View(), "Export Complete!") {
		t.Errorf("View() does not show the completion box:\n%s", m.View())
	}
}

func TestModel_SlowViewReceivesEveryEvent(t *testing.T) {
	defer func(n int) { eventBuffer = n }(eventBuffer)
	eventBuffer = 1

	settings := testSettings(t)
	var nodes []string
	for i := 1; i <= 10; i++ {
		nodes = append(nodes, fmt.Sprintf(`{"id": %d, "name": "Folder %d", "contentType": "Folder"}`, i, i))
	}
	tree := `{"nodes": [` + strings.Join(nodes, ",") + `]}`
	if err := os.WriteFile(settings.Source.Location, []byte(tree), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewModel(settings)
	open, ok := m.openSource()().(OpenDoneMsg)
	if !ok || open.Err != nil {
		t.Fatalf("openSource() = %#v", open)
	}
	updated, _ := m.Update(open)
	m = updated.(Model)

	done := make(chan tea.Msg, 1)
	go func() { done <- m.startExport()() }()

	var events []export.ProgressEvent
	for {
		msg := waitForEvent(m.events)()
		if msg == nil {
			break
		}
		events = append(events, msg.(ProgressMsg).Event)
	}
	<-done

	folders := 0
	for _, e := range events {
		if strings.HasPrefix(e.Message, "Folder: ") {
			folders++
		}
	}
	if folders != 10 {
		t.Errorf("received %d folder events, want 10", folders)
	}
	if last := events[len(events)-1]; last.Level != export.LevelSuccess {
		t.Errorf("last event = %+v, want the success event", last)
	}
}

func TestModel_FailedExportShowsError(t *testing.T) {
	m := NewModel(testSettings(t))
	m.state = StateExporting
	m.exporter = export.NewExporter(m.settings, nil, nil)

	updated, _ := m.Update(ExportDoneMsg{Result: export.Result{
		Status:  export.StatusNotExported,
		Message: "boom",
		Err:     &export.RunError{Op: "load media tree", Err: os.ErrNotExist},
	}})
	m = updated.(Model)

	if m.state != StateError {
		t.Fatalf("state = %d, want StateError", m.state)
	}
	if !strings.Contains(m.View(), "load media tree") {
		t.Errorf("View() does not show the failing step:\n%s", m.View())
	}
}

func TestModel_CompleteWithoutReport(t *testing.T) {
	m := NewModel(testSettings(t))
	m.state = StateComplete
	m.result = export.Result{Status: export.StatusAlreadyExported, Message: "Media items already exported."}
	if !strings.Contains(m.View(), "already exported") {
		t.Errorf("View() = %s", m.View())
	}

	m.result = export.Result{Status: export.StatusExported, Report: &model.Report{Stats: model.Stats{Folders: 3}}}
	if !strings.Contains(m.View(), "Folders: 3") {
		t.Errorf("View() = %s", m.View())
	}
}
