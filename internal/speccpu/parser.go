package speccpu

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cxg1987/specbench/internal/sample"
)

// The summary table sits inside a much larger free-form log. It opens with a
// row of '=' characters, lists one line per sub-benchmark, and closes with an
// estimated suite score line such as "Est. SPECint(R)_base2006  22.7".
var (
	beginSectionRe = regexp.MustCompile(`^=+`)
	endSectionRe   = regexp.MustCompile(`Est\. (SPEC.*_base2006)\s*(\S*)`)
)

var (
	ErrNestedSection       = errors.New("result section begins inside an open section")
	ErrEndOutsideSection   = errors.New("suite score line outside a result section")
	ErrUnterminatedSection = errors.New("result section never terminated")
	ErrNoSection           = errors.New("no result section found")
)

type scanState int

const (
	scanOutside scanState = iota
	scanInSection
)

// ParseReport extracts the summary score table from a runspec result log and
// returns one sample per score: the suite aggregate first, then each
// sub-benchmark in report order. Sub-benchmarks marked "NR" (not reported,
// i.e. a failed run) are skipped. Every sample carries the given metadata.
func ParseReport(text string, metadata map[string]string) ([]sample.Sample, error) {
	state := scanOutside
	var rows []string
	var suiteName string
	var suiteScore float64
	closed := false

	for _, line := range strings.Split(text, "\n") {
		if state == scanInSection {
			rows = append(rows, line)
		}
		if beginSectionRe.MatchString(line) {
			if state == scanInSection {
				return nil, ErrNestedSection
			}
			state = scanInSection
			continue
		}
		m := endSectionRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if state != scanInSection {
			return nil, ErrEndOutsideSection
		}
		score, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing suite score %q: %w", m[2], err)
		}
		suiteName = m[1]
		suiteScore = score
		state = scanOutside
		closed = true
		// The score line itself was captured above; it has only two
		// columns and is not a detail row.
		rows = rows[:len(rows)-1]
	}

	if state == scanInSection {
		return nil, ErrUnterminatedSection
	}
	if !closed {
		return nil, ErrNoSection
	}

	samples := []sample.Sample{{Metric: suiteName, Value: suiteScore, Metadata: metadata}}
	for _, row := range rows {
		if strings.Contains(row, "NR") {
			continue
		}
		// name, ref_time, run_time, score, flag
		fields := strings.Fields(row)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed detail row %q: got %d columns, want 5", row, len(fields))
		}
		score, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing score for %s: %w", fields[0], err)
		}
		samples = append(samples, sample.Sample{Metric: fields[0], Value: score, Metadata: metadata})
	}
	return samples, nil
}
