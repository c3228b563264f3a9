package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/loomtools/dtxwif/pkg/convert"
	"github.com/loomtools/dtxwif/pkg/dtx"
	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/pattern"
)

// previewWidth truncates long cells in the section table.
const previewWidth = 40

// dumpCommand creates the dump command.
func (c *CLI) dumpCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Show the sections and decoded pattern of a draft",
		Long: `Show how a draft is read. For .dtx files the tokenized sections are listed
first; every format then shows the decoded pattern.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0], raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "list sections only, without decoding")

	return cmd
}

func runDump(path string, raw bool) error {
	f, err := convert.ForPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "read %s", path)
	}

	var p *pattern.Pattern
	if f == convert.DTX {
		sections, err := dtx.Tokenize(bytes.NewReader(data))
		if err != nil {
			return errs.Wrap(errs.ErrCodeIO, err, "read %s", path)
		}
		var decodeErr error
		if !raw {
			p, decodeErr = dtx.FromSections(sections, path)
		}
		fmt.Println(StyleTitle.Render("Sections"))
		fmt.Println(sectionTable(sections))
		if decodeErr != nil {
			return decodeErr
		}
	} else if !raw {
		p, err = f.Decode(data, path)
		if err != nil {
			return err
		}
	}

	if p != nil {
		fmt.Println(StyleTitle.Render("Pattern"))
		printPattern(p)
	}
	return nil
}

// sectionTable renders tokenized sections in file order.
func sectionTable(sections dtx.Sections) string {
	rows := make([][]string, 0, len(sections))
	for _, s := range sections.Ordered() {
		rows = append(rows, []string{
			s.Name,
			s.Data.Kind().String(),
			strconv.Itoa(s.Len()),
			truncate(metadataSummary(&s.Metadata), previewWidth),
			truncate(dataPreview(s.Data), previewWidth),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Section", "Kind", "Items", "Metadata", "Data").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
	return t.Render()
}

func metadataSummary(m *dtx.Metadata) string {
	parts := make([]string, 0, m.Len())
	for _, k := range m.Keys() {
		if v, ok := m.Get(k); ok {
			parts = append(parts, k+"="+v)
		} else {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, " ")
}

func dataPreview(d dtx.Data) string {
	switch d := d.(type) {
	case dtx.RawLines:
		return strings.Join(d, " | ")
	case dtx.RowStrings:
		return strings.Join(d, " | ")
	case dtx.IntSequence:
		return joinInts(d, " ")
	case dtx.PickGroups:
		groups := make([]string, len(d))
		for i, g := range d {
			groups[i] = joinInts(g, ",")
		}
		return strings.Join(groups, " ")
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func joinInts(vals []int, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

// printPattern prints the decoded fields of a pattern.
func printPattern(p *pattern.Pattern) {
	printKeyValue("Name", p.Name)
	printKeyValue("Program", p.SourceProgram)
	if p.Imprint.Application != "" {
		printKeyValue("Imprint", strings.TrimSpace(p.Imprint.Application+" "+p.Imprint.Version))
	}
	if p.Imprint.Date != "" {
		printKeyValue("Created", p.Imprint.Date)
	}
	printKeyValue("Ends", strconv.Itoa(p.NumEnds()))
	printKeyValue("Shafts", strconv.Itoa(p.NumShafts()))
	if p.HasLiftplan() {
		printKeyValue("Shed control", "liftplan")
	} else {
		printKeyValue("Shed control", "tieup + treadling")
		printKeyValue("Treadles", strconv.Itoa(p.NumTreadles()))
	}
	printKeyValue("Picks", strconv.Itoa(p.NumPicks()))
	printKeyValue("Rising shed", strconv.FormatBool(p.RisingShed))
	if len(p.Palette) > 0 {
		printKeyValue("Palette", fmt.Sprintf("%d colors (range %d)", len(p.Palette), p.ColorRange))
	}
	if len(p.Threading) > 0 {
		printKeyValue("Threading", truncate(joinInts(p.Threading, " "), previewWidth))
	}
}
