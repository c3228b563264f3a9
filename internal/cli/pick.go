package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/loomtools/dtxwif/pkg/convert"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FileListModel - Interactive source file selection
// =============================================================================

// fileEntry is one row of the picker.
type fileEntry struct {
	Path   string
	Format string
	Exists bool // destination already present
}

// FileListModel is the bubbletea model for choosing which sources to convert.
type FileListModel struct {
	Files    []fileEntry
	Cursor   int
	Chosen   map[int]bool
	Height   int
	Offset   int
	Done     bool // enter pressed
	Canceled bool
}

// NewFileListModel creates a picker over paths. Every file starts chosen
// unless its destination already exists.
func NewFileListModel(paths []string, outputDir string) FileListModel {
	m := FileListModel{
		Files:  make([]fileEntry, len(paths)),
		Chosen: make(map[int]bool, len(paths)),
		Height: 15,
	}
	for i, p := range paths {
		e := fileEntry{Path: p}
		if f, err := convert.ForPath(p); err == nil {
			e.Format = f.Name
		}
		if _, err := os.Stat(convert.Destination(p, outputDir)); err == nil {
			e.Exists = true
		}
		m.Files[i] = e
		m.Chosen[i] = !e.Exists
	}
	return m
}

// Selected returns the chosen paths in list order, or nil if the picker was
// canceled.
func (m FileListModel) Selected() []string {
	if m.Canceled || !m.Done {
		return nil
	}
	var out []string
	for i, f := range m.Files {
		if m.Chosen[i] {
			out = append(out, f.Path)
		}
	}
	return out
}

func (m FileListModel) Init() tea.Cmd {
	return nil
}

func (m FileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Files) > 0 {
				m.Chosen[m.Cursor] = !m.Chosen[m.Cursor]
			}
		case "a":
			all := true
			for i := range m.Files {
				all = all && m.Chosen[i]
			}
			for i := range m.Files {
				m.Chosen[i] = !all
			}
		case "enter":
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m FileListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Files to Convert"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ convert  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Files))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		f := m.Files[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		check := "[ ]"
		if m.Chosen[i] {
			check = "[x]"
		}
		status := "new"
		if f.Exists {
			status = "exists"
		}
		rows = append(rows, []string{cursor, check, f.Path, f.Format, status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "File", "Format", "WIF").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Files) {
				return lipgloss.NewStyle()
			}

			base := lipgloss.NewStyle()
			if col == 4 && m.Files[idx].Exists {
				base = base.Foreground(colorYellow)
			} else if m.Chosen[idx] {
				base = base.Foreground(colorGreen)
			} else {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	chosen := 0
	for i := range m.Files {
		if m.Chosen[i] {
			chosen++
		}
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d selected", m.Cursor+1, len(m.Files), chosen)))

	return b.String()
}

// pickFiles runs the picker and returns the chosen paths.
func pickFiles(paths []string, outputDir string) ([]string, error) {
	final, err := tea.NewProgram(NewFileListModel(paths, outputDir)).Run()
	if err != nil {
		return nil, fmt.Errorf("file picker: %w", err)
	}
	return final.(FileListModel).Selected(), nil
}
