// Package jserror implements the error model: the five built-in error
// constructors and stack-trace reconstruction from a FunctionDef's
// DebugTable. The stack trace is captured and formatted when the error is
// constructed, and the hot interpreter path never logs.
package jserror

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// Kind names which built-in error constructor produced a value. Every JS
// error is a plain object.ClassError instance distinguished by its
// name/message/stack properties, the same way ClassFunction covers both
// plain functions and generators rather than needing its own ClassID per
// error type.
type Kind string

const (
	GenericError Kind = "Error"
	TypeError Kind = "TypeError"
	ReferenceError Kind = "ReferenceError"
	RangeError Kind = "RangeError"
	SyntaxError Kind = "SyntaxError"
	InternalError Kind = "InternalError"
)

func stringValue(s string) value.Value { return jsstring.ToValue(jsstring.New(s)) }

func internKey(env vm.Environment, s string) value.ConstIndex {
	return env.GlobalConsts().InternString(s, func() value.Value { return stringValue(s) })
}

// New constructs a Kind error object, its stack trace captured immediately
// against frames (outermost first, as vm.Stack.Frames() returns them) — the design
// 7's constructors always run inside a faulting frame's own PC, so this is
// the only point the trace can be taken from.
func New(env vm.Environment, frames []*vm.Frame, kind Kind, format string, args ...any) value.Value {
	obj := env.NewObject(object.ClassError)
	msg := fmt.Sprintf(format, args ...)

	obj.SetProperty(internKey(env, "name"), stringValue(string(kind)))
	obj.SetProperty(internKey(env, "message"), stringValue(msg))
	obj.SetProperty(internKey(env, "stack"), stringValue(formatStack(string(kind), msg, captureTrace(frames))))

	return object.ToValue(obj).WithException()
}

// frameEntry is one already-resolved line of a captured stack trace.
type frameEntry struct {
	FunctionName string
	Line, Column int
	HasPosition bool
}

// captureTrace walks frames innermost-first, resolving each one's current PC
// against its FunctionDef.DebugTable ("Error objects").
func captureTrace(frames []*vm.Frame) []frameEntry {
	trace := make([]frameEntry, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		name := f.FunctionDef.Name
		if name == "" {
			name = "<anonymous>"
		}
		line, col, found := f.FunctionDef.LineForPC(f.PC)
		trace = append(trace, frameEntry{FunctionName: name, Line: line, Column: col, HasPosition: found})
	}
	return trace
}

func formatStack(kind, msg string, trace []frameEntry) string {
	var b strings.Builder
	b.WriteString(kind)
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	for _, f := range trace {
		b.WriteString("\n at ")
		b.WriteString(f.FunctionName)
		if f.HasPosition {
			fmt.Fprintf(&b, " (%d:%d)", f.Line, f.Column)
		}
	}
	return b.String()
}

// LogUncaught records an exception that reached the top-level frame without
// being caught, at Warn level: a slow, infrequent event, never logged from
// the interpreter's hot opcode-dispatch path.
func LogUncaught(logger *zap.Logger, frames []*vm.Frame, message string) {
	logger.Warn("uncaught exception reached top-level frame",
		zap.String("stack", formatStack("", message, captureTrace(frames))))
}
