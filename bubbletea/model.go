// Package bubbletea renders the diagnostics tree as a Bubble Tea program.
package bubbletea

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	deadcode "github.com/fwojciec/deadcodehunter"
	dl "github.com/fwojciec/deadcodehunter/lipgloss"
)

// DiagnosticsChangedMsg tells the model that the host's diagnostics changed
// and the tree should be rescanned.
type DiagnosticsChangedMsg struct{}

// openFinishedMsg is sent when the editor launched for a leaf exits.
type openFinishedMsg struct{ err error }

// row is one visible line of the tree.
type row struct {
	node  deadcode.Node
	depth int
}

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the colour theme.
func WithTheme(t *dl.Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithRenderer sets the lipgloss renderer used for styles.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) { m.renderer = r }
}

// WithChanges makes the model rescan whenever ch receives a value.
func WithChanges(ch <-chan struct{}) Option {
	return func(m *Model) { m.changes = ch }
}

// WithOpener sets how leaves are opened.
func WithOpener(o deadcode.Opener) Option {
	return func(m *Model) { m.opener = o }
}

// WithPreview shows the diagnostics of the selected document below the tree.
// texts may be nil, in which case source lines are omitted.
func WithPreview(ws deadcode.Workspace, texts deadcode.TextSource) Option {
	return func(m *Model) {
		m.workspace = ws
		m.texts = texts
	}
}

// WithHighlighter enables syntax highlighting of preview source lines.
func WithHighlighter(tok deadcode.Tokenizer, det deadcode.LanguageDetector) Option {
	return func(m *Model) {
		m.tokenizer = tok
		m.detector = det
	}
}

// WithRoot displays leaf paths relative to root.
func WithRoot(root string) Option {
	return func(m *Model) { m.root = root }
}

// Model is the tree view. It subscribes to the provider's change signal and
// rebuilds its rows lazily after each update that fired it.
type Model struct {
	provider  deadcode.ViewModel
	changes   <-chan struct{}
	opener    deadcode.Opener
	workspace deadcode.Workspace
	texts     deadcode.TextSource
	tokenizer deadcode.Tokenizer
	detector  deadcode.LanguageDetector
	theme     *dl.Theme
	renderer  *lipgloss.Renderer
	keys      KeyMap
	help      help.Model
	root      string

	rows      []row
	collapsed map[deadcode.Category]bool
	cursor    int
	width     int
	height    int
	stale     bool
	status    string
	dispose   deadcode.Disposable
}

// NewModel returns a tree view over provider.
func NewModel(provider deadcode.ViewModel, opts ...Option) *Model {
	m := &Model{
		provider:  provider,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		collapsed: make(map[deadcode.Category]bool),
		width:     80,
		height:    24,
		stale:     true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.theme == nil {
		m.theme = dl.DefaultTheme()
	}
	if m.renderer == nil {
		m.renderer = lipgloss.DefaultRenderer()
	}
	m.dispose = provider.OnDidChangeTreeData(func() { m.stale = true })
	m.syncRows()
	return m
}

// Init requests an initial scan and starts listening for changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return DiagnosticsChangedMsg{} },
		m.listen(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case DiagnosticsChangedMsg:
		m.provider.Refresh()
	case changeSignalMsg:
		m.provider.Refresh()
		cmd = m.listen()
	case openFinishedMsg:
		if msg.err != nil {
			m.status = "open failed: " + msg.err.Error()
		}
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	m.syncRows()
	return m, cmd
}

// changeSignalMsg is produced by listen; unlike DiagnosticsChangedMsg it
// re-arms the listener.
type changeSignalMsg struct{}

func (m *Model) listen() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changeSignalMsg{}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.rows)-1, 0)
	case key.Matches(msg, m.keys.Toggle):
		if n, ok := m.Selected(); ok && n.Kind == deadcode.NodeHeader {
			m.toggle(n.Category)
		}
	case key.Matches(msg, m.keys.Activate):
		if n, ok := m.Selected(); ok {
			return m.activate(n)
		}
	case key.Matches(msg, m.keys.Clear):
		m.provider.ClearList()
	case key.Matches(msg, m.keys.Refresh):
		m.provider.Refresh()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

// activate runs the action bound to n: headers toggle, leaves open and the
// clear action empties the tree.
func (m *Model) activate(n deadcode.Node) tea.Cmd {
	if n.Kind == deadcode.NodeHeader {
		m.toggle(n.Category)
		return nil
	}
	if n.Command == nil {
		return nil
	}
	switch n.Command.ID {
	case deadcode.CommandClearList:
		m.provider.ClearList()
	case deadcode.CommandOpen:
		if m.opener == nil {
			m.status = "no editor configured"
			return nil
		}
		c, err := m.opener.OpenCommand(n.Command.URI, m.firstLine(n))
		if err != nil {
			m.status = "open failed: " + err.Error()
			return nil
		}
		return tea.ExecProcess(c, func(err error) tea.Msg { return openFinishedMsg{err: err} })
	}
	return nil
}

// Close releases the model's subscription to the provider.
func (m *Model) Close() {
	if m.dispose != nil {
		m.dispose()
		m.dispose = nil
	}
}

// Selected returns the node under the cursor.
func (m *Model) Selected() (deadcode.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return deadcode.Node{}, false
	}
	return m.rows[m.cursor].node, true
}

// Rows returns the visible nodes in display order.
func (m *Model) Rows() []deadcode.Node {
	nodes := make([]deadcode.Node, 0, len(m.rows))
	for _, r := range m.rows {
		nodes = append(nodes, r.node)
	}
	return nodes
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) toggle(c deadcode.Category) {
	m.collapsed[c] = !m.collapsed[c]
	m.stale = true
}

// syncRows rebuilds the visible rows if the tree changed, keeping the cursor
// on the same node when it is still present.
func (m *Model) syncRows() {
	if !m.stale {
		return
	}
	m.stale = false

	selected, hadSelection := m.Selected()
	rows := make([]row, 0, len(m.rows))
	for _, root := range m.provider.RootNodes() {
		rows = append(rows, row{node: root})
		if root.Kind != deadcode.NodeHeader || !root.Expanded || m.collapsed[root.Category] {
			continue
		}
		for _, child := range m.provider.Children(root) {
			rows = append(rows, row{node: child, depth: 1})
		}
	}
	m.rows = rows

	if hadSelection {
		for i, r := range rows {
			if sameNode(r.node, selected) {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
}

func sameNode(a, b deadcode.Node) bool {
	return a.Kind == b.Kind && a.Category == b.Category && a.URI == b.URI && a.Label == b.Label
}

// firstLine returns the line of the first diagnostic that placed n's
// document in its category, or 0.
func (m *Model) firstLine(n deadcode.Node) int {
	for _, d := range m.matching(n) {
		return d.Range.Start.Line
	}
	return 0
}

func (m *Model) matching(n deadcode.Node) []deadcode.Diagnostic {
	if m.workspace == nil || n.Kind != deadcode.NodeLeaf {
		return nil
	}
	var out []deadcode.Diagnostic
	for _, d := range m.workspace.Diagnostics(n.URI) {
		if n.Category.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}

// displayPath returns the leaf label, relative to the root when possible.
func (m *Model) displayPath(label string) string {
	if m.root == "" {
		return label
	}
	rel, err := filepath.Rel(m.root, label)
	if err != nil || strings.HasPrefix(rel, "..") {
		return label
	}
	return rel
}
