package services

import (
	"regexp"
	"strconv"
)

// Progress reports look like "урок 5 из 12" anywhere in the message.
var reportPattern = regexp.MustCompile(`(?i)урок\s+(\d+)\s+из\s+(\d+)`)

// ParseReport extracts the (done, total) pair from free text. Only the
// first occurrence counts; ok is false when the text carries no report.
func ParseReport(text string) (done, total int, ok bool) {
	match := reportPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, false
	}

	done, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, false
	}
	total, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, false
	}
	return done, total, true
}
