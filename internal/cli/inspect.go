package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/wif"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file.wif]",
		Short: "Summarize a WIF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

// wifSummary is what inspect reports about a WIF file.
type wifSummary struct {
	Title    string
	Program  string
	Version  string
	Shafts   int
	Treadles int
	Ends     int
	Picks    int
	Liftplan bool
	Colors   int
	Sections []string
}

func runInspect(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	file, err := wif.Parse(f)
	if err != nil {
		return errs.Wrap(errs.GetCode(err), err, "%s", path)
	}
	s, err := summarizeWIF(file)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidValue, err, "%s", path)
	}

	fmt.Println(StyleTitle.Render(s.Title))
	printKeyValue("Source", strings.TrimSpace(s.Program+" "+s.Version))
	printKeyValue("Shafts", strconv.Itoa(s.Shafts))
	if s.Liftplan {
		printKeyValue("Shed control", "liftplan")
	} else {
		printKeyValue("Treadles", strconv.Itoa(s.Treadles))
	}
	printKeyValue("Ends", strconv.Itoa(s.Ends))
	printKeyValue("Picks", strconv.Itoa(s.Picks))
	printKeyValue("Colors", strconv.Itoa(s.Colors))
	printKeyValue("Sections", strings.Join(s.Sections, ", "))
	return nil
}

func summarizeWIF(f *wif.File) (wifSummary, error) {
	var s wifSummary
	for _, sec := range f.Sections() {
		s.Sections = append(s.Sections, sec.Name)
	}

	if sec := f.Section(wif.SectionText); sec != nil {
		s.Title, _ = sec.Get("Title")
	}
	if sec := f.Section(wif.SectionWIF); sec != nil {
		s.Program, _ = sec.Get("Source Program")
		s.Version, _ = sec.Get("Source Version")
	}

	weaving := f.Section(wif.SectionWeaving)
	if weaving == nil {
		return s, errs.New(errs.ErrCodeMissingSection, "no %s section", wif.SectionWeaving)
	}
	var err error
	if s.Shafts, err = weaving.Int("Shafts"); err != nil {
		return s, err
	}
	if s.Treadles, err = weaving.Int("Treadles"); err != nil {
		return s, err
	}
	if sec := f.Section(wif.SectionWarp); sec != nil {
		if s.Ends, err = sec.Int("Threads"); err != nil {
			return s, err
		}
	}
	if sec := f.Section(wif.SectionWeft); sec != nil {
		if s.Picks, err = sec.Int("Threads"); err != nil {
			return s, err
		}
	}
	if sec := f.Section(wif.SectionContents); sec != nil {
		if v, err := sec.Bool(wif.SectionLiftplan); err == nil {
			s.Liftplan = v
		}
	}
	if sec := f.Section(wif.SectionColorPalette); sec != nil {
		if s.Colors, err = sec.Int("Entries"); err != nil {
			return s, err
		}
	}
	return s, nil
}
