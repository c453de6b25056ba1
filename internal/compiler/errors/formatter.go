package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	warnLabel  = color.New(color.FgYellow, color.Bold)
	fieldLabel = color.New(color.FgCyan)
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *GeneratorError) string {
	var b strings.Builder

	file := e.File
	if file == "" {
		file = "<input>"
	}

	fmt.Fprintf(&b, "%s %s in %s\n", severityLabel(e.Severity), categoryDisplayName(e.Category), file)
	fmt.Fprintf(&b, "  %s [%s]\n", e.Message, e.Code)

	if e.Unit != "" {
		fmt.Fprintf(&b, "  %s %s\n", fieldLabel.Sprint("invoke:"), e.Unit)
	}
	if e.Kernel != "" {
		fmt.Fprintf(&b, "  %s %s\n", fieldLabel.Sprint("kernel:"), e.Kernel)
	}
	if e.CallIndex >= 0 {
		fmt.Fprintf(&b, "  %s %d\n", fieldLabel.Sprint("call:"), e.CallIndex)
	}
	if e.Slot >= 0 {
		fmt.Fprintf(&b, "  %s %d\n", fieldLabel.Sprint("slot:"), e.Slot)
	}
	if len(e.Calls) > 0 {
		fmt.Fprintf(&b, "  %s %v\n", fieldLabel.Sprint("calls:"), e.Calls)
	}

	if e.Expected != "" || e.Actual != "" {
		b.WriteString("\n")
		if e.Expected != "" {
			fmt.Fprintf(&b, "  Expected: %s\n", e.Expected)
		}
		if e.Actual != "" {
			fmt.Fprintf(&b, "  Actual:   %s\n", e.Actual)
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  hint: %s\n", e.Suggestion)
	}

	return b.String()
}

// FormatErrorList returns a formatted string of all errors
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder

	errCount, warnCount := errors.ErrorCount()
	fmt.Fprintf(&b, "Synthesis failed with %d error(s), %d warning(s)\n\n", errCount, warnCount)

	for i, err := range errors {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 72) + "\n\n")
		}
		b.WriteString(err.Format())
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format
func FormatCompact(e *GeneratorError) string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
		file, e.Location.Line, e.Location.Column,
		e.Severity, e.Message, e.Code)
}

// severityLabel returns the colored label for a severity level
func severityLabel(severity ErrorSeverity) string {
	switch severity {
	case SeverityError:
		return errorLabel.Sprint("error:")
	case SeverityWarning:
		return warnLabel.Sprint("warning:")
	default:
		return string(severity) + ":"
	}
}

// categoryDisplayName returns a human-readable category name
func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryMetadata:
		return "Kernel Metadata Error"
	case CategoryBinding:
		return "Argument Binding Error"
	case CategorySymbols:
		return "Symbol Resolution Error"
	case CategoryAccess:
		return "Access Conflict"
	case CategorySynthesis:
		return "Synthesis Error"
	default:
		return "Generator Error"
	}
}
