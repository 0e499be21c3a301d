package goCart

import (
	"io"

	"github.com/MrEthical07/goCart/internal/audit"
	"github.com/rs/zerolog"
)

// AuditEvent is one session or cart lifecycle record.
type AuditEvent = audit.Event

// AuditSink receives audit events from the client's dispatcher goroutine.
type AuditSink = audit.Sink

type (
	NoOpSink       = audit.NoOpSink
	ChannelSink    = audit.ChannelSink
	JSONWriterSink = audit.JSONWriterSink
	LogSink        = audit.LogSink
)

func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewLogSink writes audit events through log. It is the default sink when audit is
// enabled without one.
func NewLogSink(log zerolog.Logger) LogSink {
	return audit.NewLogSink(log)
}
