package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/excellon"
	"github.com/gerbonara-go/gerbonara/gerber"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print bounds, object counts, and dialect hints for a Gerber or Excellon file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			sink := cam.NewLogrusSink(log)

			if isExcellon(path, string(src)) {
				p := excellon.NewParser(path, sink, nil)
				f, err := p.Parse(context.Background(), string(src))
				if err != nil {
					return fmt.Errorf("parsing excellon: %w", err)
				}
				b := f.Bounds()
				log.WithFields(map[string]interface{}{
					"file":         path,
					"format":       "excellon",
					"unit":         f.Settings.Unit.String(),
					"tools":        f.Tools.Count(),
					"objects":      len(f.Objects),
					"drill-sizes":  f.DrillSizes(),
					"bounds":       fmt.Sprintf("(%.3f,%.3f)-(%.3f,%.3f)", b.MinX, b.MinY, b.MaxX, b.MaxY),
					"gen-hints":    f.GeneratorHints,
					"comment-count": len(f.Comments),
				}).Info("inspected excellon file")
				return nil
			}

			p := gerber.NewParser(path, sink)
			f, err := p.Parse(context.Background(), string(src))
			if err != nil {
				return fmt.Errorf("parsing gerber: %w", err)
			}
			b := f.Bounds()
			log.WithFields(map[string]interface{}{
				"file":          path,
				"format":        "gerber",
				"unit":          f.Settings.Unit.String(),
				"apertures":     len(f.Apertures),
				"macros":        len(f.Macros.Names()),
				"objects":       len(f.Objects),
				"bounds":        fmt.Sprintf("(%.3f,%.3f)-(%.3f,%.3f)", b.MinX, b.MinY, b.MaxX, b.MaxY),
				"gen-hints":     f.GeneratorHints,
				"comment-count": len(f.Comments),
			}).Info("inspected gerber file")
			return nil
		},
	}
}

// isExcellon sniffs the format the way real toolchains do: by extension
// first, falling back to a content check for the M48 and FMAT, header
// tokens that never appear in RS-274X source.
func isExcellon(path, src string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".drl", ".txt", ".xln", ".nc", ".tap"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return strings.Contains(src, "M48") || strings.Contains(src, "FMAT,")
}
