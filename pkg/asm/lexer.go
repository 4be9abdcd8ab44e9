package asm

import (
	"strings"
)

// rawStmt is one logical line after comment-stripping and label
// extraction, per spec.md §4.3's lexing rules.
type rawStmt struct {
	Line        int
	Label       string // "" if this line defines no label
	IsDirective bool
	Name        string   // directive name (without the leading '.') or instruction mnemonic
	Args        []string // operand tokens; for .ascii/.asciiz/.string, Args[0] is the raw (still-escaped) string body
	LexErr      error    // set when this line could not be tokenized (e.g. unterminated string)
}

func isLabelStartByte(b byte) bool {
	return b == '_' || b == '.' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isLabelByte(b byte) bool {
	return isLabelStartByte(b) || (b >= '0' && b <= '9')
}

// lex splits source into logical lines, strips comments, and classifies
// each line as a blank, a label definition (optionally sharing its line
// with a directive or instruction), a directive, or an instruction.
func lex(source string) []rawStmt {
	var out []rawStmt
	for i, raw := range strings.Split(source, "\n") {
		lineno := i + 1
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var label string
		if lbl, rest, ok := splitLabel(line); ok {
			label = lbl
			line = strings.TrimSpace(rest)
		}
		if line == "" {
			out = append(out, rawStmt{Line: lineno, Label: label})
			continue
		}
		if strings.HasPrefix(line, ".") {
			name, rest := splitFirstToken(line[1:])
			args, err := lexDirectiveArgs(name, rest)
			out = append(out, rawStmt{
				Line: lineno, Label: label, IsDirective: true,
				Name: name, Args: args, LexErr: err,
			})
			continue
		}
		name, rest := splitFirstToken(line)
		out = append(out, rawStmt{
			Line: lineno, Label: label, Name: name, Args: splitArgs(rest),
		})
	}
	return out
}

// stripComment removes a trailing `# ...` comment, honoring double-quoted
// string literals so a '#' inside a .ascii/.asciiz/.string body is kept.
func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inString = !inString
		case '\\':
			if inString {
				i++ // skip the escaped character
			}
		case '#':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

// splitLabel recognizes a leading "identifier:" and returns the label
// name and whatever follows it on the line.
func splitLabel(line string) (label, rest string, ok bool) {
	if len(line) == 0 || !isLabelStartByte(line[0]) {
		return "", line, false
	}
	i := 1
	for i < len(line) && isLabelByte(line[i]) {
		i++
	}
	if i >= len(line) || line[i] != ':' {
		return "", line, false
	}
	return line[:i], line[i+1:], true
}

// splitFirstToken returns the first whitespace-delimited token and the
// remainder of the line.
func splitFirstToken(s string) (first, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := 0
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

// lexDirectiveArgs tokenizes a directive's operands. String directives
// keep their quoted body as a single raw (still-escaped) argument.
func lexDirectiveArgs(name, rest string) ([]string, error) {
	switch name {
	case "ascii", "asciiz", "string":
		body, terminated := extractQuoted(rest)
		if !terminated {
			return nil, ErrUnterminatedString
		}
		return []string{body}, nil
	default:
		return splitArgs(rest), nil
	}
}

// extractQuoted finds the first double-quoted string in s (honoring
// backslash escapes) and returns its raw body and whatever followed the
// closing quote. terminated is false if no matching close quote exists.
func extractQuoted(s string) (body string, terminated bool) {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return "", false
	}
	i := start + 1
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			i += 2
			continue
		}
		if s[i] == '"' {
			return s[start+1 : i], true
		}
		i++
	}
	return s[start+1:], false
}

// splitArgs splits comma/whitespace-delimited operand tokens.
func splitArgs(s string) []string {
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Fields(s)
}
