package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/strata/lang"
)

// ctrlCommands are the available control-mode commands.
//
//nolint:gochecknoglobals
var ctrlCommands = []string{
	"help", "list", "tokens", "tree", "sexp", "source",
	"edit", "drop", "reset", "clear", "quit",
}

// keywords are offered as completions in parse mode.
//
//nolint:gochecknoglobals
var keywords = []string{"if", "else", "for", "break", "continue", "i32"}

func isKeyword(s string) bool { return slices.Contains(keywords, s) }

func isDigitRune(r rune) bool { return r >= '0' && r <= '9' }

// isIdentRune reports whether r may appear in an identifier.
func isIdentRune(r rune) bool {
	return r == '_' || isDigitRune(r) ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// wordBounds returns the identifier-like word at the cursor position and its
// byte boundaries within input. Returns an empty word when the cursor sits
// between two non-identifier characters.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = max(0, min(cursor, len(input)))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completion candidates for a word starting at
// wordStart. In control mode the first word is a command and later words
// are session names; in parse mode candidates are session names followed by
// keywords.
func candidates(mode inputMode, s *session, wordStart int) []string {
	if mode == modeCtrl {
		if wordStart == 0 {
			return ctrlCommands
		}

		return s.names()
	}

	return slices.Concat(s.names(), keywords)
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. An empty word or a word that is a number has no matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	cands []string,
	wordStart, wordEnd int,
) {
	word, wordStart, wordEnd := wordBounds(m.input.Value(), m.input.Position())

	if word == "" || isDigitRune(rune(word[0])) {
		return nil, nil, wordStart, wordEnd
	}

	cands = candidates(m.mode, m.session, wordStart)
	if len(cands) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, cands), cands, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	s *session,
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, isFunction(s, match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	// Not part of the completion text.
	if function {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name is a top-level declaration whose value is
// a function literal.
func isFunction(s *session, name string) bool {
	d, ok := s.lookup(name)
	if !ok {
		return false
	}

	_, ok = d.Value.(*lang.FunctionLiteral)

	return ok
}

// maxPreview is the display width of a declaration preview.
const maxPreview = 48

// formatPreview returns a one-line preview of a declaration's value.
func formatPreview(d *lang.Declaration) string {
	text := lang.FormatExpr(d.Value)
	if utf8.RuneCountInString(text) > maxPreview {
		return string([]rune(text)[:maxPreview-3]) + "..."
	}

	return text
}
