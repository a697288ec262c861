package diaglog

import (
	"io"
	"sync"
	"time"
)

// LogfmtWriter decodes the binary record format into logfmt (key=value)
// lines, suitable for piping into log aggregation tools.
type LogfmtWriter struct {
	out io.Writer
	buf sync.Pool
}

// NewLogfmtWriter creates a logfmt writer over out.
func NewLogfmtWriter(out io.Writer) *LogfmtWriter {
	return &LogfmtWriter{
		out: out,
		buf: sync.Pool{
			New: func() interface{} { return make([]byte, 0, 512) },
		},
	}
}

// Writer adapts this LogfmtWriter to the Writer function type.
func (w *LogfmtWriter) Writer() Writer {
	return func(b []byte) error {
		_, err := w.Write(b)
		return err
	}
}

// Write decodes one binary record and writes it as a logfmt line.
func (w *LogfmtWriter) Write(b []byte) (int, error) {
	rec, err := decodeRecord(b)
	if err != nil {
		return 0, err
	}

	bufPtr := w.buf.Get()
	buf := bufPtr.([]byte)[:0]
	defer w.buf.Put(buf)

	buf = append(buf, "time="...)
	buf = time.Unix(0, rec.tsNanos).AppendFormat(buf, time.RFC3339)
	buf = append(buf, " level="...)
	buf = append(buf, rec.level.String()...)
	buf = append(buf, " msg="...)
	buf = append(buf, escapeString(rec.msg)...)

	it := rec.fieldIter()
	for {
		key, _, value, ok := it.next()
		if !ok {
			break
		}
		buf = append(buf, ' ')
		buf = append(buf, key...)
		buf = append(buf, '=')
		buf = append(buf, escapeString(value)...)
	}

	buf = append(buf, '\n')
	if _, err := w.out.Write(buf); err != nil {
		return 0, err
	}
	return len(b), nil
}
