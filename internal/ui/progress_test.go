package ui

import (
	"strings"
	"testing"

	"wgsmaster/internal/driver"
)

func TestApplyEventTracksFiles(t *testing.T) {
	m := NewProgressModel("wgsmaster", []string{"a.msgpack", "b.msgpack"}, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "a.msgpack", Stage: driver.StageScan, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "a.msgpack", Stage: driver.StageProcess, Status: driver.StatusRejected, Records: 4})
	m.applyEvent(driver.Event{File: "zzz", Stage: driver.StageProcess, Status: driver.StatusDone})

	if got := m.items[0].status; got != "rejected" {
		t.Fatalf("status = %q, want rejected", got)
	}
	if m.items[0].records != 4 || m.records != 4 {
		t.Fatalf("records: item=%d total=%d", m.items[0].records, m.records)
	}
	if m.items[1].status != "queued" {
		t.Fatalf("untouched file must stay queued, got %q", m.items[1].status)
	}
	// a late scan event never lowers progress
	m.applyEvent(driver.Event{File: "a.msgpack", Stage: driver.StageScan, Status: driver.StatusWorking})
	if m.items[0].share != 1.0 {
		t.Fatalf("share went backwards: %v", m.items[0].share)
	}
}

func TestRunEventsSetStageLabel(t *testing.T) {
	m := NewProgressModel("wgsmaster", []string{"a.msgpack"}, nil).(*progressModel)
	m.applyEvent(driver.Event{Stage: driver.StageMaster, Status: driver.StatusWorking})
	if m.stageLabel != "building master" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	if !strings.Contains(m.View(), "building master") {
		t.Fatalf("view misses stage label:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Fatalf("truncate short = %q", got)
	}
}
