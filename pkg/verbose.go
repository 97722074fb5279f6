package dirauditor

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

var (
	globalVerboseLevel int
	debugFlags         map[string]bool
	logOutput          io.Writer = os.Stderr
)

// SetVerboseLevel sets the global verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
func SetVerboseLevel(level int) {
	globalVerboseLevel = level
}

// GetVerboseLevel returns the current verbose level
func GetVerboseLevel() int {
	return globalVerboseLevel
}

// SetLogOutput redirects verbose, trace and warning output. nil restores stderr.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logOutput = w
}

// VerboseEnter logs function entry at level 3+ and returns a defer function for exit logging
func VerboseEnter() func() {
	if globalVerboseLevel < 3 {
		return func() {}
	}

	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return func() {}
	}

	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	fmt.Fprintf(logOutput, "[TRACE] Entering function: %s\n", funcName)
	return func() {
		fmt.Fprintf(logOutput, "[TRACE] Exiting function: %s\n", funcName)
	}
}

// VerboseLog logs a message at the specified verbose level
func VerboseLog(level int, format string, args ...interface{}) {
	if globalVerboseLevel < level {
		return
	}
	fmt.Fprintf(logOutput, "[VERBOSE-%d] ", level)
	fmt.Fprintf(logOutput, format, args...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintln(logOutput)
	}
}

// Warn logs a warning regardless of verbose level
func Warn(format string, args ...interface{}) {
	fmt.Fprintf(logOutput, "Warning: "+format, args...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintln(logOutput)
	}
}

// SetDebugFlags sets the debug flags from a comma-separated string.
// Supports simple flags ("scan,diff") and key:value pairs ("scan:true,store:off").
func SetDebugFlags(flagsStr string) {
	debugFlags = make(map[string]bool)
	for _, flag := range strings.Split(flagsStr, ",") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		name, value, hasValue := strings.Cut(flag, ":")
		enabled := true
		if hasValue {
			switch strings.ToLower(value) {
			case "false", "0", "no", "off":
				enabled = false
			}
		}
		debugFlags[strings.ToLower(name)] = enabled
	}
}

// IsDebugEnabled returns true if the specified debug flag is enabled
func IsDebugEnabled(flag string) bool {
	if debugFlags == nil {
		return false
	}
	return debugFlags[strings.ToLower(flag)]
}
