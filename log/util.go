package log

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// SkipCaller returns "dir/file.go:line" of the caller skip frames up, or "?".
func SkipCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%s:%d", filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file)), line)
}
