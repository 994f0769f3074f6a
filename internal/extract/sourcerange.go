package extract

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cpp-split/internal/parser"
)

// ExtractRanges fills each candidate's Text with the literal source spanning
// its extent, taken from the original (non-preprocessed) file so the output
// reflects user-authored code. The recorded extent is completed through the
// terminating token's line when it would otherwise split the declaration,
// and leading attached comment blocks travel with the declaration.
func ExtractRanges(tree *parser.Tree, cands []Candidate) []Candidate {
	for i := range cands {
		if cands[i].Err != nil {
			continue
		}
		text, err := extractRange(tree, &cands[i])
		if err != nil {
			cands[i].Err = err
			continue
		}
		cands[i].Text = text
	}
	return cands
}

func extractRange(tree *parser.Tree, cand *Candidate) (string, error) {
	node := tree.Node(cand.Node)
	if node == nil {
		return "", &RangeExtractionError{QualifiedName: cand.QualifiedName, Reason: "candidate references no tree node"}
	}
	ext := node.Extent
	total := tree.LineCount()

	if ext.StartLine < 1 || ext.StartLine > total {
		return "", &RangeExtractionError{
			QualifiedName: cand.QualifiedName,
			Reason:        fmt.Sprintf("start line %d outside file of %d lines", ext.StartLine, total),
		}
	}
	if ext.EndLine < ext.StartLine {
		return "", &RangeExtractionError{
			QualifiedName: cand.QualifiedName,
			Reason:        fmt.Sprintf("end line %d precedes start line %d", ext.EndLine, ext.StartLine),
		}
	}
	end := ext.EndLine
	if end > total {
		end = total
	}

	// Under-extraction is a correctness defect: extend through the line that
	// carries the terminating token.
	funcLike := node.ParamTypes != nil && node.IsDefinition
	termLine, ok := terminatorLine(tree.Lines, ext.StartLine, funcLike)
	if !ok {
		return "", &RangeExtractionError{
			QualifiedName: cand.QualifiedName,
			Reason:        "no terminating token before end of file",
		}
	}
	if termLine > end {
		end = termLine
	}

	start := leadingCommentStart(tree.Lines, ext.StartLine)
	return strings.Join(tree.Lines[start-1:end], "\n"), nil
}

// terminatorLine scans forward from startLine for the line that completes
// the declaration: the closing brace of a function body, or the trailing
// semicolon of a variable or class. Braces inside strings, character
// literals, and comments do not count.
func terminatorLine(lines []string, startLine int, funcLike bool) (int, bool) {
	var s rangeScanner
	for i := startLine; i <= len(lines); i++ {
		semiTop, closed := s.scanLine(lines[i-1])
		if funcLike && closed {
			return i, true
		}
		if !funcLike && semiTop {
			return i, true
		}
	}
	return 0, false
}

// rangeScanner tracks brace depth across lines, ignoring comment and literal
// content.
type rangeScanner struct {
	depth   int
	inBlock bool
	sawOpen bool
}

// scanLine consumes one line. semiTop reports a semicolon at brace depth
// zero; closed reports the depth returning to zero after an opening brace.
func (s *rangeScanner) scanLine(line string) (semiTop, closed bool) {
	var quote byte
	escaped := false

	for i := 0; i < len(line); i++ {
		c := line[i]

		if quote != 0 {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}

		if s.inBlock {
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				s.inBlock = false
				i++
			}
			continue
		}

		switch c {
		case '/':
			if i+1 < len(line) {
				if line[i+1] == '/' {
					return semiTop, closed
				}
				if line[i+1] == '*' {
					s.inBlock = true
					i++
				}
			}
		case '"', '\'':
			quote = c
		case '{':
			s.depth++
			s.sawOpen = true
		case '}':
			s.depth--
			if s.sawOpen && s.depth == 0 {
				closed = true
			}
		case ';':
			if s.depth == 0 {
				semiTop = true
			}
		}
	}
	return semiTop, closed
}

// leadingCommentStart walks upward from the extent's first line over an
// immediately attached comment block. A blank line detaches the comment.
func leadingCommentStart(lines []string, startLine int) int {
	cur := startLine
	for cur > 1 {
		t := strings.TrimSpace(lines[cur-2])
		if t == "" {
			break
		}
		if strings.HasPrefix(t, "//") {
			cur--
			continue
		}
		if strings.HasSuffix(t, "*/") {
			if j, ok := blockCommentOpen(lines, cur-1); ok {
				cur = j
				continue
			}
		}
		break
	}
	return cur
}

// blockCommentOpen finds the line whose leading /* opens the block comment
// that closes on line end. Only a line-initial /* counts as an opener, and
// the candidate span is re-scanned forward with the literal-aware scanner,
// so a /* buried in a string literal or line comment never anchors the walk.
func blockCommentOpen(lines []string, end int) (int, bool) {
	for j := end; j >= 1; j-- {
		t := strings.TrimSpace(lines[j-1])
		if !strings.HasPrefix(t, "/*") {
			continue
		}
		if j == end {
			return j, true
		}
		var s rangeScanner
		for i := j; i < end; i++ {
			s.scanLine(lines[i-1])
		}
		if s.inBlock {
			return j, true
		}
		return 0, false
	}
	return 0, false
}
