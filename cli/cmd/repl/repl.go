package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/strata/lang"
	"github.com/ardnew/strata/log"
)

// editMsg is sent when session editing completes successfully.
type editMsg struct{ session *session }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	parsePrompt = "➜ "
	ctrlPrompt  = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help           Print this cruft
  list           List session declarations
  tokens <text>  Print the tokens of text
  tree [name]    Print the syntax tree of the session or one declaration
  sexp [name]    Print S-expressions of the session or one declaration
  source         Print the session source
  edit           Edit the session source in external $EDITOR
  drop <name>... Remove declarations from the session
  reset          Remove all declarations
  clear          Clear screen
  quit           Exit REPL

Usage:
  Type a declaration (name :: value) to add it to the session
  Type any other expression to see how it parses
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between parse and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to switch to command mode and navigate command history
    (restores original mode when reaching end of history)
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeParse inputMode = iota
	modeCtrl
)

// Styles.
//
//nolint:gochecknoglobals
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(parsePrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// renderError styles err for display. Syntax errors include the source line
// and caret.
func renderError(err error) string {
	var se *lang.SyntaxError
	if errors.As(err, &se) {
		return errorStyle.Render(se.Error())
	}

	return errorStyle.Render("error: " + err.Error())
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc          func() context.Context
	input            textinput.Model
	session          *session
	logger           log.Logger
	history          *History
	historyIdx       int
	matches          fuzzy.Matches // current fuzzy match results
	candidates       []string      // backing candidate list
	wordStart        int           // byte offset of current word start
	wordEnd          int           // byte offset of current word end
	suggIdx          int           // selected candidate index
	tabActive        bool          // whether user is tab-cycling
	preTabText       string        // input text before tab-cycling began
	preTabCursor     int           // cursor position before tab-cycling began
	altNavActive     bool          // whether user is in Alt+Up/Down navigation
	altNavOrigMode   inputMode     // original mode before Alt navigation
	altNavOrigText   string        // original text before Alt navigation
	altNavOrigCursor int           // original cursor position before Alt navigation
	width            int           // terminal width for ellipsization
	quitting         bool
	mode             inputMode
	parseText        string
	parseCursor      int
	ctrlText         string
	ctrlCursor       int
}

// Run starts the REPL. If reader is not nil, its declarations start the
// session. History is kept in cacheDir.
func Run(
	ctx context.Context,
	reader io.Reader,
	cacheDir string,
	logger log.Logger,
	opts ...lang.Option,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Bool("has_source", reader != nil),
	)

	sess := newSession(logger, slices.Concat(opts, []lang.Option{lang.WithLogger(logger)})...)

	if reader != nil {
		if err := sess.load(ctx, reader); err != nil {
			return err
		}

		logger.TraceContext(
			ctx,
			"repl session loaded",
			slog.Int("declaration_count", len(sess.prog.Declarations)),
		)
	}

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, sess, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	sess *session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(parsePrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    sess,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeParse,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(parsePrompt) - 2

		return m, nil

	case editMsg:
		m.session = msg.session
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("declaration_count", len(m.session.prog.Declarations)),
		)

		return m, tea.Println(resultStyle.Render("✔ session updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(renderError(msg.err))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		// 1-based position indicator
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		if m.mode == modeParse {
			b.WriteString(hintStyle.Render("Type a declaration or expression, or press Esc for commands"))
		} else {
			b.WriteString(hintStyle.Render("Type: help, list, tokens, tree, sexp, edit, quit (press Esc to return)"))
		}

	case call.inCall && m.mode == modeParse:
		if sig, ok := signatureOf(m.session, call.name); ok {
			b.WriteString(renderSignatureHint(sig, call.argIndex))
		} else {
			b.WriteString(renderCandidateBar(m.session, m.matches, m.suggIdx, m.tabActive, m.width))
		}

	default:
		b.WriteString(renderCandidateBar(m.session, m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNavActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			m.altNavActive = false

			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		m.altNavActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1)

	case tea.KeyShiftTab:
		return m.cycle(-1)

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1)
		}

		return m.historyPrev()

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1)
		}

		return m.historyNext()

	case tea.KeyShiftUp:
		return m.historyInMode(-1)

	case tea.KeyShiftDown:
		return m.historyInMode(1)

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNavActive = false

		return m.toggleMode()

	case tea.KeyRunes, tea.KeySpace:
		// Space is a "breaking" key while tab-cycling.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the candidate selection by step (1 for Tab, -1 for
// Shift-Tab), starting a tab cycle if none is active.
func (m model) cycle(step int) (model, tea.Cmd) {
	n := len(m.matches)
	if n == 0 {
		return m, nil
	}

	// Single candidate: complete and confirm immediately.
	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also auto-confirms the completion when exactly
// one candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	// Reset both mode inputs after submission
	m.parseText = ""
	m.parseCursor = 0
	m.ctrlText = ""
	m.ctrlCursor = 0
	m.input.SetValue("")

	if err := m.history.Append(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not write history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl command",
			slog.String("input", input),
		)

		return m.executeCommand(input)
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl parse",
		slog.String("input", input),
	)

	echoCmd := tea.Println(formatCommand(input))

	out, err := m.enter(m.ctxFunc(), input)
	if err != nil {
		return m, tea.Sequence(echoCmd, tea.Println(renderError(err)))
	}

	return m, tea.Sequence(echoCmd, tea.Println(out))
}

// enter handles a line of parse-mode input. A line starting with a
// declaration is added to the session; anything else is parsed as a single
// expression and shown in native syntax and as an S-expression.
func (m model) enter(ctx context.Context, input string) (string, error) {
	if isDeclaration(input) {
		names, err := m.session.define(ctx, input)
		if err != nil {
			return "", err
		}

		return resultStyle.Render("✔ defined " + strings.Join(names, ", ")), nil
	}

	e, err := m.session.parseExpr(ctx, input)
	if err != nil {
		return "", err
	}

	m.logger.TraceContext(ctx, "repl parse result",
		slog.String("node", fmt.Sprintf("%T", e)),
	)

	return resultStyle.Render(lang.FormatExpr(e)) + "\n" +
		hintStyle.Render(lang.Sexp(e)), nil
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, _, _ := strings.Cut(input, " ")

	echoCmd := tea.Println(formatCtrlCommand(input))

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", name),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		var editCmd tea.Cmd

		m, editCmd = m.handleEdit()

		return m, tea.Sequence(echoCmd, editCmd)
	}

	out, err := m.command(m.ctxFunc(), input)
	if err != nil {
		return m, tea.Sequence(echoCmd, tea.Println(renderError(err)))
	}

	return m, tea.Sequence(echoCmd, tea.Println(out))
}

// command runs a control command that only produces output.
func (m model) command(ctx context.Context, input string) (string, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "h", "help":
		return helpMessage(), nil

	case "l", "list":
		return m.listDeclarations(), nil

	case "t", "tokens":
		return tokenTable(rest)

	case "tree":
		return m.tree(ctx, rest)

	case "s", "sexp":
		if rest == "" {
			return lang.SexpProgram(m.session.prog), nil
		}

		d, ok := m.session.lookup(rest)
		if !ok {
			return "", fmt.Errorf("%q is not declared", rest)
		}

		return lang.Sexp(d), nil

	case "source":
		return strings.TrimSuffix(m.session.src, "\n"), nil

	case "d", "drop":
		names := strings.Fields(rest)
		if len(names) == 0 {
			return "", fmt.Errorf("%w: drop <name>...", ErrUsage)
		}

		n, err := m.session.remove(ctx, names...)
		if err != nil {
			return "", err
		}

		return hintStyle.Render(fmt.Sprintf("dropped %d declaration(s)", n)), nil

	case "reset":
		m.session.reset()

		return hintStyle.Render("session cleared"), nil

	default:
		return "", fmt.Errorf("unknown command: %s (try 'help')", name)
	}
}

// tokenTable lists the tokens of src with their columns.
func tokenTable(src string) (string, error) {
	if src == "" {
		return "", fmt.Errorf("%w: tokens <text>", ErrUsage)
	}

	toks, err := lang.Tokenize([]byte(src))

	var b strings.Builder

	for _, tok := range toks {
		if tok.Kind == lang.KindEOF {
			break
		}

		fmt.Fprintf(&b, "%3d  %s\n", tok.Span.Start+1, tok)
	}

	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

// tree prints the session program, or the declaration called name.
func (m model) tree(ctx context.Context, name string) (string, error) {
	var b strings.Builder

	if name == "" {
		m.session.prog.Print(ctx, &b)

		return strings.TrimSuffix(b.String(), "\n"), nil
	}

	d, ok := m.session.lookup(name)
	if !ok {
		return "", fmt.Errorf("%q is not declared", name)
	}

	lang.PrintExpr(&b, d)

	return strings.TrimSuffix(b.String(), "\n"), nil
}

func (m model) handleEdit() (model, tea.Cmd) {
	cmd := &editCommand{
		session: m.session,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return m, tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.edited == nil {
			return editCancelledMsg{}
		}

		return editMsg{session: cmd.edited}
	})
}

// showEntry loads history entry i into the input, switching modes if needed.
func (m model) showEntry(i int, entry HistoryEntry) model {
	if m.mode != entry.Mode {
		m, _ = m.switchToMode(entry.Mode)
	}

	m.historyIdx = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// clearEntry leaves history navigation with an empty input.
func (m model) clearEntry() model {
	m.historyIdx = m.history.Len()
	m.input.SetValue("")
	refreshMatches(&m, false)

	return m
}

func (m model) historyPrev() (model, tea.Cmd) {
	if m.historyIdx > 0 {
		if entry, err := m.history.Entry(m.historyIdx - 1); err == nil {
			m = m.showEntry(m.historyIdx-1, entry)
		}
	}

	return m, nil
}

func (m model) historyNext() (model, tea.Cmd) {
	if m.historyIdx < m.history.Len()-1 {
		if entry, err := m.history.Entry(m.historyIdx + 1); err == nil {
			m = m.showEntry(m.historyIdx+1, entry)
		}

		return m, nil
	}

	return m.clearEntry(), nil
}

// findEntry returns the index of the nearest entry in direction step from
// the current history position that was entered in mode.
func (m model) findEntry(step int, mode inputMode) (int, HistoryEntry, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		if entry, err := m.history.Entry(i); err == nil && entry.Mode == mode {
			return i, entry, true
		}
	}

	return 0, HistoryEntry{}, false
}

// historyInMode navigates history entries of the current mode only.
func (m model) historyInMode(step int) (model, tea.Cmd) {
	if i, entry, ok := m.findEntry(step, m.mode); ok {
		return m.showEntry(i, entry), nil
	}

	// Reached end of mode-specific history, clear input
	if step > 0 && m.historyIdx < m.history.Len() {
		return m.clearEntry(), nil
	}

	return m, nil
}

// historyCtrl navigates command history from any mode, restoring the
// original mode and input at either end.
func (m model) historyCtrl(step int) (model, tea.Cmd) {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavOrigMode = m.mode
		m.altNavOrigText = m.input.Value()
		m.altNavOrigCursor = m.input.Position()

		if m.mode != modeCtrl {
			m, _ = m.switchToMode(modeCtrl)
		}
	}

	if i, entry, ok := m.findEntry(step, modeCtrl); ok {
		return m.showEntry(i, entry), nil
	}

	m.altNavActive = false
	if m.altNavOrigMode != m.mode {
		m, _ = m.switchToMode(m.altNavOrigMode)
	}

	m.input.SetValue(m.altNavOrigText)
	m.input.SetCursor(m.altNavOrigCursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m, nil
}

func (m model) listDeclarations() string {
	if len(m.session.prog.Declarations) == 0 {
		return hintStyle.Render("  (no declarations)")
	}

	var b strings.Builder

	for i, d := range m.session.prog.Declarations {
		if i > 0 {
			b.WriteByte('\n')
		}

		fmt.Fprintf(&b, "  %s %s", d.Name.Name, hintStyle.Render(formatPreview(d)))
	}

	return b.String()
}

// toggleMode switches between parse and control modes, preserving input state.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeParse {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeParse)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	if m.mode == modeParse {
		m.parseText = m.input.Value()
		m.parseCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeParse {
		m.input.Prompt = promptStyle.Render(parsePrompt)
		m.input.SetValue(m.parseText)
		m.input.SetCursor(m.parseCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m, nil
}
