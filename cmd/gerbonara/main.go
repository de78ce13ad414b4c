// Command gerbonara is a CLI front end over the gerbonara-go parsing and
// emission core: rendering SMT stencils, inspecting fabrication files, and
// converting between dialects and the canonical emission form.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.StandardLogger()

func main() {
	root := &cobra.Command{
		Use:   "gerbonara",
		Short: "Gerber/Excellon parsing, inspection, and stencil rendering",
	}
	root.AddCommand(newRenderStencilCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newConvertCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
