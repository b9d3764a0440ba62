package driver

import "time"

// Stage describes a pass of a run.
type Stage string

const (
	// StageScan is the parallel first pass.
	StageScan Stage = "scan"
	// StageProcess is the sequential validation and output pass.
	StageProcess Stage = "process"
	// StageMaster builds and writes the master record.
	StageMaster Stage = "master"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being handled.
	StatusWorking Status = "working"
	// StatusDone indicates the file is finished.
	StatusDone Status = "done"
	// StatusRejected indicates the file finished with rejected records.
	StatusRejected Status = "rejected"
	// StatusError indicates an I/O or parse failure.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Records int
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

func emitQueued(sink ProgressSink, stage Stage, files []string) {
	for _, f := range files {
		emit(sink, Event{File: f, Stage: stage, Status: StatusQueued})
	}
}
