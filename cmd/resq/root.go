package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	resq "github.com/resq-ai/resq-core"
	"github.com/resq-ai/resq-core/application/config"
	rlog "github.com/resq-ai/resq-core/log"
)

type rootOptions struct {
	configPath string
	logLevel   string
	jsonLogs   bool
	compact    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "resq",
		Short: "Crisis-response capability layer",
		Long: `resq drives the ResQ capability layer the way a chat transport would:
it switches threads, invokes tools and components, and reads shared state.

Examples:
  resq catalog                                   # List capabilities and their schemas
  resq invoke globalPopulation --args '{"startYear":2020}'
  resq invoke SupplyInventory --thread t-1 --args @items.json
  resq replay session.jsonl                      # Run handler calls line by line`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "Write logs as JSON")
	cmd.PersistentFlags().BoolVar(&opts.compact, "compact", false, "Print responses on a single line")

	cmd.AddCommand(
		catalogCmd(opts),
		handlersCmd(opts),
		invokeCmd(opts),
		replayCmd(opts),
	)
	return cmd
}

// openSession builds a session from the flags; logs go to the command's stderr.
func (o *rootOptions) openSession(cmd *cobra.Command) (*resq.Session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logger := rlog.New(cmd.ErrOrStderr(), rlog.WithLevel(cfg.SlogLevel()), rlog.WithJSON(o.jsonLogs))
	return resq.NewSession(resq.WithConfig(cfg), resq.WithLogger(logger))
}

// print writes a JSON response, indented unless --compact was given.
func (o *rootOptions) print(w io.Writer, resp []byte) error {
	if !o.compact {
		var buf bytes.Buffer
		if err := json.Indent(&buf, resp, "", "  "); err == nil {
			resp = buf.Bytes()
		}
	}
	_, err := fmt.Fprintln(w, string(resp))
	return err
}
