package errors

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"p3a-hq/manifest/pkg/mdl/tree"
)

// ExtractContext renders the lines of src around location, marking the
// offending line and column. It returns "" when location has no line.
func ExtractContext(src []byte, location tree.Location, contextLines int) string {
	if !location.IsValid() {
		return ""
	}

	scanner := bufio.NewScanner(bytes.NewReader(src))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return ""
	}

	errorLine := location.Line - 1
	if errorLine >= len(lines) {
		return ""
	}
	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, lines[i]))

		if i == errorLine && location.Column > 0 {
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", location.Column-1)))
		}
	}

	return sb.String()
}

// WithContext fills in the Context of every violation located in src.
func (vl *ViolationList) WithContext(src []byte, contextLines int) *ViolationList {
	if vl == nil {
		return nil
	}
	for _, v := range vl.Violations {
		if v.Context == "" {
			v.Context = ExtractContext(src, v.Location, contextLines)
		}
	}
	return vl
}
