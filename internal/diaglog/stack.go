package diaglog

import "github.com/go-stack/stack"

// CallStack captures a trimmed call stack as a String field, suitable for
// attaching to an ERROR or Fatal record so an operator can see where in the
// calling code a fatal condition (a malformed frame, an init failure)
// originated. Only used off the hot path.
func CallStack() Field {
	trace := stack.Trace().TrimRuntime()
	return String("stack", trace.String())
}
