package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// replayLine is one handler call in a replay script.
type replayLine struct {
	Payload json.RawMessage `json:"payload"`
	Handler string          `json:"handler"`
}

const maxReplayLine = 4 << 20

func replayCmd(opts *rootOptions) *cobra.Command {
	var stopOnError bool

	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Run handler calls from a JSON Lines script",
		Long: `Replay reads one handler call per line and prints one response per line.
Each line is {"handler": "<name>", "payload": {...}}. Blank lines and lines
starting with # are skipped. Without a file, calls are read from stdin.

Example script:
  {"handler":"thread_changed","payload":{"thread_id":"t-1"}}
  {"handler":"invoke","payload":{"capability":"DisasterMap","args":{"center":[12.97,77.59]}}}
  {"handler":"snapshot","payload":{}}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open replay script: %w", err)
				}
				defer f.Close()
				in = f
			}

			s, err := opts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return replay(cmd, in, func(handler string, payload []byte) ([]byte, error) {
				return s.Handle(cmd.Context(), handler, payload)
			}, stopOnError)
		},
	}

	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop at the first error response")
	return cmd
}

func replay(cmd *cobra.Command, in io.Reader, call func(string, []byte) ([]byte, error), stopOnError bool) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxReplayLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var rl replayLine
		if err := json.Unmarshal(line, &rl); err != nil {
			return fmt.Errorf("line %d: malformed call: %w", lineNo, err)
		}
		if rl.Handler == "" {
			return fmt.Errorf("line %d: missing handler", lineNo)
		}

		resp, err := call(rl.Handler, rl.Payload)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", lineNo, rl.Handler, err)
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, resp); err != nil {
			compact.Reset()
			compact.Write(resp)
		}
		if _, err := fmt.Fprintln(out, compact.String()); err != nil {
			return err
		}

		if stopOnError && isError(resp) {
			return fmt.Errorf("line %d: %s returned an error response", lineNo, rl.Handler)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read replay script: %w", err)
	}
	return nil
}
