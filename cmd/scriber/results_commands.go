package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scriber/internal/results"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect and export saved transcripts",
	}

	resultsCmd.AddCommand(newResultsListCommand(ctx))
	resultsCmd.AddCommand(newResultsExportCommand(ctx))

	return resultsCmd
}

func newResultsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved transcripts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.resultsStore()
			if err != nil {
				return err
			}
			docs, err := store.List()
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transcripts saved")
				return nil
			}

			if jsonOut {
				return writeJSON(cmd, docs)
			}

			rows := make([][]string, 0, len(docs))
			for _, doc := range docs {
				rows = append(rows, []string{
					doc.ID,
					doc.MediaName,
					doc.Plugin,
					doc.Transcript.Language,
					strconv.Itoa(len(doc.Transcript.Segments)),
					doc.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
			table := renderTable(
				[]string{"ID", "Media", "Plugin", "Language", "Segments", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newResultsExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a transcript as text or subtitles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.resultsStore()
			if err != nil {
				return err
			}
			doc, err := store.Load(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			format, err := results.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			payload, err := results.Export(doc, format)
			if err != nil {
				return err
			}

			if outputFlag == "-" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}

			target := strings.TrimSpace(outputFlag)
			if target == "" {
				target = results.ExportFilename(doc, format)
			}
			if err := os.WriteFile(target, payload, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "txt", "Export format (txt, srt, vtt)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output path (- for stdout)")
	return cmd
}
