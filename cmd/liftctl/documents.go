package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/liftlog/internal/core"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		pretty bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the program as a CSV document",
		Long: `Write the program as a sectioned CSV document that import accepts.

With --pretty the program is written as a flat sheet for reading instead;
that sheet cannot be imported.

Examples:
  # Export to stdout
  liftctl export > program.csv

  # Export to a file named like the web download
  liftctl export -o auto`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.service()

			exportFn := svc.ExportDocument
			if pretty {
				exportFn = svc.ExportPrettyPrint
			}
			export, err := exportFn(cmd.Context())
			if err != nil {
				return err
			}

			switch output {
			case "", "-":
				_, err = io.WriteString(cmd.OutOrStdout(), export.Content)
				return err
			case "auto":
				output = export.FileName
			}
			if err := os.WriteFile(output, []byte(export.Content), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", output, len(export.Content))
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "write the human-readable sheet")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file ("auto" uses the download name)`)
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the program with a CSV document",
		Long: `Replace the whole program with the contents of a sectioned CSV document.

The import is all-or-nothing: on any error the program is left empty and
the problems are listed.

Examples:
  liftctl import program.csv
  cat program.csv | liftctl import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			res, err := c.service().ImportReader(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d rows (%s format)\n", res.Counts.Total(), res.Format)
			fmt.Fprintf(out, "  workout groups:     %d\n", res.Counts.WorkoutGroups)
			fmt.Fprintf(out, "  exercises:          %d\n", res.Counts.Exercises)
			fmt.Fprintf(out, "  days:               %d\n", res.Counts.Days)
			fmt.Fprintf(out, "  day workout groups: %d\n", res.Counts.DayWorkoutGroups)
			fmt.Fprintf(out, "  workout sets:       %d\n", res.Counts.WorkoutSets)
			for _, w := range res.Warnings {
				fmt.Fprintln(out, "warning:", w)
			}
			return nil
		},
	}
}

func newDetectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file|->",
		Short: "Report the format of a CSV document without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			doc, err := core.ReadDocument(in, c.cfg.Import.MaxDocumentSize)
			if err != nil {
				return core.Wrap(core.KindValidation, "detect.read", err)
			}

			format, diagnostic := c.service().DetectDocument(doc)
			fmt.Fprintln(cmd.OutOrStdout(), format)
			if !format.Supported() {
				return core.E(core.KindFormatUnsupported, "detect", diagnostic)
			}
			return nil
		},
	}
}
