package rules

import (
	"bufio"
	"regexp"
	"strings"
)

// ruleHeader matches a Comprehensive Rules numbering line, e.g. "702.15b" or
// "100.1" or "100.". Sub-rule letters are optional; the trailing period after
// the number is optional too since the source text is inconsistent about it.
var ruleHeader = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,3})?[a-z]?)\.?\s+(.*)$`)

// Chunker splits raw Comprehensive Rules text into hierarchically addressed
// chunks. It implements the same single-method shape the corpus's generic
// document chunkers use, but the splitting logic is rule-number aware instead
// of separator/length based.
type Chunker interface {
	Chunk(source string) ([]Chunk, error)
}

// RuleChunker splits on Comprehensive Rules section headers.
type RuleChunker struct{}

// NewRuleChunker constructs a RuleChunker.
func NewRuleChunker() *RuleChunker {
	return &RuleChunker{}
}

// Chunk scans source line by line. Any line beginning with a rule number
// starts a new chunk; all following lines (until the next rule number)
// belong to that chunk's text. Content preceding the first rule number
// (front matter, table of contents) becomes a single fallback chunk.
func (c *RuleChunker) Chunk(source string) ([]Chunk, error) {
	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var chunks []Chunk
	var curRuleID string
	var curLines []string
	ordinal := 0

	flush := func() {
		text := strings.TrimSpace(strings.Join(curLines, "\n"))
		if text == "" {
			return
		}
		id := curRuleID
		if id == "" {
			id = nextFallbackID()
		}
		chunks = append(chunks, Chunk{
			ID:      id,
			RuleID:  curRuleID,
			Text:    text,
			Ordinal: ordinal,
		})
		ordinal++
		curLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if m := ruleHeader.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			curRuleID = m[1]
			curLines = []string{strings.TrimSpace(line)}
			continue
		}
		curLines = append(curLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	return chunks, nil
}
