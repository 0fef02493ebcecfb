package studio

import (
	"regexp"
	"strings"
)

// ProgressState classifies a progress label.
type ProgressState int

const (
	InProgress ProgressState = iota
	Complete
)

func (p ProgressState) String() string {
	if p == Complete {
		return "complete"
	}
	return "in progress"
}

var (
	// "Upload complete ... Processing will begin shortly"
	doneEllipsis = regexp.MustCompile(`\D \.\.\. \D`)
	// "Finished processing", "Processing HD version, SD complete"
	noPeriods = regexp.MustCompile(`^[^.]+$`)
)

// ClassifyProgress is a heuristic over the label's wording. While the
// file is still being sent the label carries a percentage followed by
// " ... N minutes left", or trailing dots. Anything else is taken as done.
func ClassifyProgress(text string) ProgressState {
	if doneEllipsis.MatchString(text) || noPeriods.MatchString(text) {
		return Complete
	}
	return InProgress
}

var nbsp = strings.NewReplacer("&nbsp;", " ", "&nbsp", " ", "\u00a0", " ")

// normalizeLabel turns non-breaking spaces into plain ones.
func normalizeLabel(text string) string {
	return nbsp.Replace(text)
}
