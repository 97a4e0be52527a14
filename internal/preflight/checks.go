// Package preflight provides startup validation of the input log files.
package preflight

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// sizeWarnBytes is the file size above which analysis still runs but the
// check flags a warning. A full night of debug logging lands well under
// this.
const sizeWarnBytes = 256 << 20

// reLogPrefix matches the timestamp prefix of a NINA debug log line.
var reLogPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?\|`)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Path    string // File being checked
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s [%s]: %s", status, c.Name, c.Path, c.Message)
}

// RunAll validates every input path before analysis starts.
func RunAll(paths []string) *Result {
	result := &Result{
		Checks: make([]Check, 0, len(paths)*2),
		Passed: true,
	}

	for _, path := range paths {
		fileCheck := checkFile(path)
		result.Checks = append(result.Checks, fileCheck)
		if !fileCheck.Passed {
			result.Passed = false
			continue
		}

		// Format sniff only makes sense on a readable file.
		result.Checks = append(result.Checks, checkFormat(path))
	}

	return result
}

// checkFile verifies the path is a readable, non-empty regular file.
func checkFile(path string) Check {
	info, err := os.Stat(path)
	if err != nil {
		return Check{
			Name:    "file",
			Path:    path,
			Passed:  false,
			Message: fmt.Sprintf("not accessible: %v", err),
		}
	}
	if info.IsDir() {
		return Check{
			Name:    "file",
			Path:    path,
			Passed:  false,
			Message: "is a directory",
		}
	}
	if info.Size() == 0 {
		return Check{
			Name:    "file",
			Path:    path,
			Passed:  true,
			Warning: true,
			Message: "empty file (report will be empty)",
		}
	}
	if info.Size() > sizeWarnBytes {
		return Check{
			Name:    "file",
			Path:    path,
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("unusually large (%d MB)", info.Size()>>20),
		}
	}
	return Check{
		Name:    "file",
		Path:    path,
		Passed:  true,
		Message: fmt.Sprintf("%d bytes", info.Size()),
	}
}

// checkFormat sniffs the head of the file for timestamped log lines.
// A file without any is still analyzed; every line just counts as
// skipped, so this is a warning rather than a failure.
func checkFormat(path string) Check {
	f, err := os.Open(path)
	if err != nil {
		return Check{
			Name:    "format",
			Path:    path,
			Passed:  false,
			Message: fmt.Sprintf("open failed: %v", err),
		}
	}
	defer f.Close()

	head := make([]byte, 8192)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return Check{
			Name:    "format",
			Path:    path,
			Passed:  false,
			Message: fmt.Sprintf("read failed: %v", err),
		}
	}

	for _, line := range strings.Split(string(head[:n]), "\n") {
		if reLogPrefix.MatchString(line) {
			return Check{
				Name:    "format",
				Path:    path,
				Passed:  true,
				Message: "timestamped log lines found",
			}
		}
	}

	return Check{
		Name:    "format",
		Path:    path,
		Passed:  true,
		Warning: true,
		Message: "no timestamped log lines in the first 8 KB",
	}
}

// PrintResults prints the preflight check results to stdout.
func PrintResults(result *Result) {
	fmt.Println("Preflight checks:")
	for _, check := range result.Checks {
		fmt.Println(check.String())
		if !check.Passed {
			fmt.Printf("    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Println()
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "file":
		return "check the path and file permissions"
	case "format":
		return "pass a NINA debug log (Documents/N.I.N.A/Logs)"
	default:
		return "see documentation"
	}
}
