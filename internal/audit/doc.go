// Package audit dispatches session and cart lifecycle events to pluggable sinks.
//
// A [Dispatcher] buffers events and forwards them on a single goroutine, either
// blocking or dropping when the buffer is full. Sinks decide where events go:
// [ChannelSink], [JSONWriterSink], [LogSink] or [NoOpSink]. Which events are
// emitted is decided by the client, not by this package.
package audit
