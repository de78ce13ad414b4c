package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/gerber"
	"github.com/spf13/cobra"
)

// renderDPI controls mesh smoothness, same tradeoff the teacher's DPI
// constant documented: higher DPI means smoother curves at a proportional
// meshing-time cost.
const renderDPI = 1000.0
const pixelToMM = 25.4 / renderDPI

func newRenderStencilCmd() *cobra.Command {
	var height float64
	var keepPNG bool

	cmd := &cobra.Command{
		Use:   "render-stencil <gerber-file>",
		Short: "Render a Gerber solder-paste layer to a 3D-printable STL stencil",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gerberPath := args[0]
			outputPath := strings.TrimSuffix(gerberPath, filepath.Ext(gerberPath)) + ".stl"

			src, err := os.ReadFile(gerberPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", gerberPath, err)
			}

			entry := log.WithField("file", gerberPath)
			entry.Info("parsing gerber file")
			sink := cam.NewLogrusSink(log)
			p := gerber.NewParser(gerberPath, sink)
			gf, err := p.Parse(context.Background(), string(src))
			if err != nil {
				return fmt.Errorf("parsing gerber: %w", err)
			}

			entry.Info("rendering to internal raster")
			img := rasterize(gf, renderDPI)

			if keepPNG {
				pngPath := strings.TrimSuffix(gerberPath, filepath.Ext(gerberPath)) + ".png"
				f, err := os.Create(pngPath)
				if err != nil {
					entry.WithError(err).Warn("could not create intermediate PNG")
				} else {
					if err := png.Encode(f, img); err != nil {
						entry.WithError(err).Warn("could not encode intermediate PNG")
					}
					f.Close()
				}
			}

			entry.Info("generating mesh")
			triangles := meshFromImage(img, pixelToMM, height)

			entry.WithField("triangles", len(triangles)).WithField("output", outputPath).Info("writing stl")
			if err := writeSTL(outputPath, triangles); err != nil {
				return fmt.Errorf("writing stl: %w", err)
			}
			fmt.Printf("Wrote %s (%d triangles)\n", outputPath, len(triangles))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&height, "height", "z", 0.2, "stencil height in mm")
	cmd.Flags().BoolVarP(&keepPNG, "keep-png", "k", false, "save the intermediate raster as a PNG")
	return cmd
}
