package diaglog

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const (
	termTimeFormat = "01-02|15:04:05"
	termMsgJust    = 40
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorCyan    = "\x1b[36m"
	colorMagenta = "\x1b[35m"
)

// TerminalWriter decodes the binary record format and prints a colorized,
// human-readable line. Color is only used when the destination file is an
// actual terminal, detected with go-isatty; on Windows the stream is wrapped
// with go-colorable so ANSI escapes still render in cmd.exe/PowerShell.
type TerminalWriter struct {
	out        io.Writer
	useColor   bool
	timeFormat string
	buf        sync.Pool
}

// NewTerminalWriter creates a terminal writer over out (typically os.Stdout
// or os.Stderr).
func NewTerminalWriter(out *os.File) *TerminalWriter {
	return &TerminalWriter{
		out:        colorable.NewColorable(out),
		useColor:   isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()),
		timeFormat: termTimeFormat,
		buf: sync.Pool{
			New: func() interface{} { return make([]byte, 0, 512) },
		},
	}
}

// Writer adapts this TerminalWriter to the Writer function type.
func (w *TerminalWriter) Writer() Writer {
	return func(b []byte) error {
		return w.Write(b)
	}
}

// Write decodes one binary record and prints it.
func (w *TerminalWriter) Write(b []byte) error {
	rec, err := decodeRecord(b)
	if err != nil {
		return err
	}

	bufPtr := w.buf.Get()
	buf := bufPtr.([]byte)[:0]
	defer w.buf.Put(buf)

	color := levelColor(rec.level)
	if w.useColor && color != "" {
		buf = append(buf, color...)
		buf = append(buf, levelBadge(rec.level)...)
		buf = append(buf, colorReset...)
	} else {
		buf = append(buf, levelBadge(rec.level)...)
	}

	buf = append(buf, '[')
	buf = time.Unix(0, rec.tsNanos).AppendFormat(buf, w.timeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, rec.msg...)

	it := rec.fieldIter()
	if it.remaining > 0 && len(rec.msg) < termMsgJust {
		for i := len(rec.msg); i < termMsgJust; i++ {
			buf = append(buf, ' ')
		}
	}

	first := true
	for {
		key, _, value, ok := it.next()
		if !ok {
			break
		}
		if !first {
			buf = append(buf, ' ')
		}
		first = false
		if w.useColor && color != "" {
			buf = append(buf, color...)
			buf = append(buf, key...)
			buf = append(buf, colorReset...)
		} else {
			buf = append(buf, key...)
		}
		buf = append(buf, '=')
		buf = append(buf, escapeString(value)...)
	}

	buf = append(buf, '\n')
	_, err = w.out.Write(buf)
	return err
}

func levelColor(level Level) string {
	switch level {
	case LevelDebug:
		return colorCyan
	case LevelInfo:
		return colorGreen
	case LevelWarn:
		return colorYellow
	case LevelError:
		return colorRed
	case LevelFatal:
		return colorMagenta
	default:
		return ""
	}
}

func levelBadge(level Level) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO "
	case LevelWarn:
		return "WARN "
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKN "
	}
}

func escapeString(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t ") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// StdoutTerminal builds a Writer printing to stdout.
func StdoutTerminal() Writer { return NewTerminalWriter(os.Stdout).Writer() }

// StderrTerminal builds a Writer printing to stderr.
func StderrTerminal() Writer { return NewTerminalWriter(os.Stderr).Writer() }
