package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatBytes renders n with digit grouping and a binary-unit summary,
// e.g. "1,048,576 bytes (1.0 MiB)".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return printer.Sprintf("%d bytes", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return printer.Sprintf("%d bytes (%.1f %siB)", n, float64(n)/float64(div), "KMGTPE"[exp:exp+1])
}
