package contentservice

import (
	"context"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// CompareResult is a line-level diff between two revisions.
type CompareResult struct {
	From  string     `json:"from"`
	To    string     `json:"to"`
	Lines []DiffLine `json:"lines"`
}

// DiffLine is one line of diff output. Op is "+", "-" or " ".
type DiffLine struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

// Compare diffs two revisions of a project. Either version may live on
// any branch.
func (s *Service) Compare(ctx context.Context, folder, projectID, fromVersion, toVersion string) (*CompareResult, error) {
	from, _, err := s.findRevision(folder, projectID, fromVersion)
	if err != nil {
		return nil, err
	}
	to, _, err := s.findRevision(folder, projectID, toVersion)
	if err != nil {
		return nil, err
	}

	return &CompareResult{
		From:  fromVersion,
		To:    toVersion,
		Lines: diffLines(from.Content, to.Content),
	}, nil
}

// diffLines produces a line-based diff using the line-mode optimization
// from diffmatchpatch.
func diffLines(a, b string) []DiffLine {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		op := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = "+"
		case diffmatchpatch.DiffDelete:
			op = "-"
		}
		for _, line := range splitKeepNonEmpty(d.Text) {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}
	return out
}

func splitKeepNonEmpty(s string) []string {
	parts := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	if len(parts) == 1 && parts[0] == "" {
		return nil
	}
	return parts
}
