package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/excellon"
	"github.com/gerbonara-go/gerbonara/gerber"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Parse a Gerber or Excellon file and re-emit it in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			sink := cam.NewLogrusSink(log)

			var out string
			if isExcellon(path, string(src)) {
				p := excellon.NewParser(path, sink, nil)
				f, err := p.Parse(context.Background(), string(src))
				if err != nil {
					return fmt.Errorf("parsing excellon: %w", err)
				}
				out = excellon.Emit(f)
			} else {
				p := gerber.NewParser(path, sink)
				f, err := p.Parse(context.Background(), string(src))
				if err != nil {
					return fmt.Errorf("parsing gerber: %w", err)
				}
				out = gerber.Emit(f)
			}

			if output == "" {
				fmt.Print(out)
				return nil
			}
			return os.WriteFile(output, []byte(out), 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the canonical form to this path instead of stdout")
	return cmd
}
