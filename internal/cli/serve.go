package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loomtools/dtxwif/pkg/convert"
	"github.com/loomtools/dtxwif/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr         string
	maxBodyBytes int64
	noCache      bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Long: `Run an HTTP service that converts uploaded drafts to WIF.

  curl --data-binary @draft.dtx 'http://localhost:8080/v1/convert?name=draft.dtx'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config.Server
			if !cmd.Flags().Changed("addr") && cfg.Addr != "" {
				opts.addr = cfg.Addr
			}
			if !cmd.Flags().Changed("max-body") && cfg.MaxBodyBytes > 0 {
				opts.maxBodyBytes = cfg.MaxBodyBytes
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().Int64Var(&opts.maxBodyBytes, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the conversion cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(ctx, convert.Options{}, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(runner, c.Logger, server.Options{
		MaxBodyBytes: opts.maxBodyBytes,
		ReadTimeout:  c.config.Server.ReadTimeout.Duration,
	})

	host := opts.addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	printInfo("Serving on %s", StyleLink.Render(fmt.Sprintf("http://%s", host)))
	printDetail("Formats: %s", strings.Join(convert.Names(), ", "))

	return srv.ListenAndServe(ctx, opts.addr)
}
