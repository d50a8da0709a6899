// Package stacktrace condenses panic stacks to this module's own frames.
package stacktrace

import (
	"log/slog"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
)

const maxFrames = 64

// modulePrefix is derived from this package's import path, e.g.
// "github.com/shandysiswandi/otpflow/".
var modulePrefix = func() string {
	pc, _, _, _ := runtime.Caller(0)
	name := runtime.FuncForPC(pc).Name()
	if i := strings.Index(name, "/internal/"); i >= 0 {
		return name[:i+1]
	}
	return name
}()

// Internal returns "internal/<path>.go:<line>" for each frame that belongs to
// this module, innermost first. Called from a deferred recover, the frames of
// the panicking code are still on the stack and are included.
func Internal() []string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []string
	for {
		f, more := frames.Next()
		if strings.HasPrefix(f.Function, modulePrefix) && !strings.HasSuffix(f.File, "/stacktrace/stacktrace.go") {
			file := f.File
			if i := strings.Index(file, "/internal/"); i >= 0 {
				file = file[i+1:]
			}
			out = append(out, file+":"+strconv.Itoa(f.Line))
		}
		if !more {
			break
		}
	}

	return out
}

// Attr is a "stack" log attribute holding Internal frames, or the raw
// debug.Stack output when none of them belong to this module.
func Attr() slog.Attr {
	if frames := Internal(); len(frames) > 0 {
		return slog.Any("stack", frames)
	}
	return slog.String("stack", string(debug.Stack()))
}
