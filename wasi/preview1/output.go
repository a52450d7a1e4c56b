package preview1

import (
	"bytes"

	"go.uber.org/zap"
)

// Sink receives guest output one line at a time, without the newline.
type Sink func(fd uint32, line string)

// LogSink logs each line through l at info level with the descriptor attached.
func LogSink(l *zap.Logger) Sink {
	return func(fd uint32, line string) {
		l.Info(line, zap.Uint32("fd", fd))
	}
}

// lineWriter splits a descriptor's output into lines for a Sink.
type lineWriter struct {
	sink Sink
	buf  bytes.Buffer
	fd   uint32
}

func (w *lineWriter) Write(p []byte) {
	w.buf.Write(p)
	for {
		data := w.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return
		}
		line := string(bytes.TrimSuffix(data[:i], []byte{'\r'}))
		w.buf.Next(i + 1)
		w.sink(w.fd, line)
	}
}

func (w *lineWriter) Flush() {
	if w.buf.Len() == 0 {
		return
	}
	line := w.buf.String()
	w.buf.Reset()
	w.sink(w.fd, line)
}
