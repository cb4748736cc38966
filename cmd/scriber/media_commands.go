package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scriber/internal/logging"
	"scriber/internal/media"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Browse the configured media library",
	}

	mediaCmd.AddCommand(newMediaScanCommand(ctx))

	return mediaCmd
}

func newMediaScanCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the media directories and list files, newest first",
		Long: "Scan the configured media directories and list matching files, newest first.\n\n" +
			"Recognized extensions: " + strings.Join(media.DefaultExtensions(), " "),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			library := media.NewLibrary(cfg.Paths.MediaDirs, nil, logging.NewNop())

			files := library.Scan()
			if limit > 0 && len(files) > limit {
				files = files[:limit]
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No media files found")
				for _, dir := range library.Dirs() {
					fmt.Fprintf(cmd.OutOrStdout(), "  searched: %s\n", dir)
				}
				return nil
			}

			if jsonOut {
				return writeJSON(cmd, files)
			}

			rows := make([][]string, 0, len(files))
			for _, file := range files {
				rows = append(rows, []string{
					file.Name, file.DisplaySize(), file.DisplayAge(), file.Dir,
				})
			}
			table := renderTable(
				[]string{"Name", "Size", "Modified", "Directory"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum files to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
