package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/resq-ai/resq-core/hostfuncs"
)

func invokeCmd(opts *rootOptions) *cobra.Command {
	var (
		args   string
		thread string
	)

	cmd := &cobra.Command{
		Use:   "invoke <capability>",
		Short: "Invoke one capability and print the result envelope",
		Long: `Invoke validates the arguments against the capability's input schema,
runs the tool or mounts the component, and prints the response.

--args accepts inline JSON or @file to read it from a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			raw, err := readArgs(args)
			if err != nil {
				return err
			}

			s, err := opts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if thread != "" {
				payload, err := json.Marshal(hostfuncs.ThreadChangedRequest{ThreadID: &thread})
				if err != nil {
					return err
				}
				resp, err := s.Handle(cmd.Context(), hostfuncs.HandlerThreadChanged, payload)
				if err != nil {
					return err
				}
				if isError(resp) {
					return opts.print(cmd.OutOrStdout(), resp)
				}
			}

			payload, err := json.Marshal(hostfuncs.InvokeRequest{Capability: positional[0], Args: raw})
			if err != nil {
				return err
			}
			resp, err := s.Handle(cmd.Context(), hostfuncs.HandlerInvoke, payload)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&args, "args", "a", "{}", "Capability arguments as JSON, or @file")
	cmd.Flags().StringVarP(&thread, "thread", "t", "", "Thread to activate before invoking")
	return cmd
}

func readArgs(value string) (json.RawMessage, error) {
	data := []byte(value)
	if path, ok := strings.CutPrefix(value, "@"); ok {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read arguments: %w", err)
		}
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("arguments are not valid JSON")
	}
	return json.RawMessage(data), nil
}

func isError(resp []byte) bool {
	var envelope hostfuncs.ErrorResponse
	return json.Unmarshal(resp, &envelope) == nil && envelope.Error != "" && envelope.Code != 0
}
