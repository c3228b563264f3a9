package cli

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/loomtools/dtxwif/pkg/convert"
	errs "github.com/loomtools/dtxwif/pkg/errors"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	overwrite   bool
	workers     int
	outputDir   string
	format      string // restrict to one source format
	noCache     bool
	interactive bool
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [files or directories...]",
		Short: "Convert .dtx and .wpo drafts to WIF",
		Long: `Convert Fiberworks PCW (.dtx) and WeavePoint (.wpo) drafts to WIF.

Each argument is either a source file or a directory, which is searched
recursively. Every source is written next to itself with a .wif suffix (or
into --output-dir). Existing destinations are skipped unless --overwrite is
given. A file that fails to convert is reported and the batch continues.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConvertConfig(cmd, &opts)
			return c.runConvert(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "overwrite existing WIF files")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", convert.DefaultWorkers, "number of files converted in parallel")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "write WIF files into this directory")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "only convert this format: dtx, wpo")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the conversion cache")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the files to convert from a list")

	return cmd
}

// applyConvertConfig fills unset flags from the config file.
func (c *CLI) applyConvertConfig(cmd *cobra.Command, opts *convertOpts) {
	cfg := c.config.Convert
	if !cmd.Flags().Changed("overwrite") {
		opts.overwrite = cfg.Overwrite
	}
	if !cmd.Flags().Changed("workers") && cfg.Workers > 0 {
		opts.workers = cfg.Workers
	}
	if !cmd.Flags().Changed("output-dir") {
		opts.outputDir = cfg.OutputDir
	}
}

func (c *CLI) runConvert(ctx context.Context, args []string, opts convertOpts) error {
	logger := loggerFromContext(ctx)

	var formats []*convert.Format
	if opts.format != "" {
		f, err := convert.ByName(opts.format)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	paths, err := convert.ResolvePaths(args, formats...)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		printWarning("No source files found")
		return nil
	}
	logger.Debug("resolved sources", "files", len(paths))

	if opts.interactive {
		paths, err = pickFiles(paths, opts.outputDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			printInfo("Nothing selected")
			return nil
		}
	}

	runner, err := c.newRunner(ctx, convert.Options{
		Overwrite: opts.overwrite,
		Workers:   opts.workers,
		OutputDir: opts.outputDir,
	}, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)

	// The spinner would interleave with debug logging on stderr.
	var spinner *Spinner
	if !c.verbose() && len(paths) > 1 {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Converting %d files...", len(paths)))
		spinner.Start()
	}

	var finished atomic.Int32
	runner.OnResult = func(res convert.Result) {
		n := finished.Add(1)
		if spinner == nil {
			c.printResult(res)
			return
		}
		spinner.Interrupt(func() { c.printResult(res) })
		spinner.SetMessage(fmt.Sprintf("Converting %d/%d files...", n, len(paths)))
	}

	results := runner.ConvertAll(ctx, paths)
	if spinner != nil {
		spinner.Stop()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s := convert.Summarize(results)
	prog.done(fmt.Sprintf("Converted %d of %d files", s.Written+s.Overwritten, len(results)))
	if s.Written+s.Overwritten == 1 && s.Failed == 0 {
		for _, res := range results {
			if res.Status == convert.StatusWritten || res.Status == convert.StatusOverwritten {
				printNextStep("Inspect the result", fmt.Sprintf("%s inspect %s", appName, res.Dest))
			}
		}
	}
	if s.Failed > 0 {
		return errs.New(errs.ErrCodeInternal, "%d of %d files failed to convert", s.Failed, len(results))
	}
	return nil
}

// printResult reports one finished conversion.
func (c *CLI) printResult(res convert.Result) {
	switch res.Status {
	case convert.StatusWritten:
		printSuccess("Writing %s", res.Dest)
	case convert.StatusOverwritten:
		printSuccess("Overwriting existing %s", res.Dest)
	case convert.StatusSkipped:
		printInfo("Skipping existing %s", res.Dest)
		return
	case convert.StatusFailed:
		printError("Failed to write %s", res.Dest)
		if res.Err != nil {
			printDetail("%s", errs.UserMessage(res.Err))
		}
		return
	}

	if c.verbose() {
		printStats(res.Pattern, res.CacheHit)
		if res.Pattern != nil {
			printPattern(res.Pattern)
		}
	}
}
