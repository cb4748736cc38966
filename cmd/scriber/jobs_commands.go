package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scriber/internal/jobs"
	"scriber/internal/language"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect transcription jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsStatsCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []jobs.Status
			for _, value := range statusFlags {
				status := jobs.Status(strings.ToLower(strings.TrimSpace(value)))
				if !status.Valid() {
					return fmt.Errorf("unknown status %q", value)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(store *jobs.Store) error {
				list, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
					return nil
				}

				if jsonOut {
					return writeJSON(cmd, list)
				}

				rows := make([][]string, 0, len(list))
				for _, job := range list {
					rows = append(rows, []string{
						job.ID,
						job.MediaName,
						job.Plugin,
						string(job.Status),
						jobProgressCell(job),
						job.DisplayAge(),
					})
				}
				table := renderTable(
					[]string{"ID", "Media", "Plugin", "Status", "Progress", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&statusFlags, "status", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func jobProgressCell(job *jobs.Job) string {
	if job.Status.Terminal() {
		return ""
	}
	stage := job.ProgressStage
	if stage == "" {
		return ""
	}
	return fmt.Sprintf("%s %s%%", stage, strconv.FormatFloat(job.ProgressPercent, 'f', 0, 64))
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				job, err := store.GetJob(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, job)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:        %s\n", job.ID)
				fmt.Fprintf(out, "Media:     %s\n", job.MediaPath)
				fmt.Fprintf(out, "Plugin:    %s\n", job.Plugin)
				fmt.Fprintf(out, "Status:    %s\n", job.Status)
				if job.Language != "" {
					fmt.Fprintf(out, "Language:  %s (%s)\n", language.DisplayName(job.Language), job.Language)
				}
				if job.ProgressStage != "" {
					fmt.Fprintf(out, "Progress:  %s (%.0f%%)\n", job.ProgressStage, job.ProgressPercent)
				}
				if job.ProgressMessage != "" {
					fmt.Fprintf(out, "Message:   %s\n", job.ProgressMessage)
				}
				if job.ResultID != "" {
					fmt.Fprintf(out, "Result:    %s\n", job.ResultID)
				}
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:     %s\n", job.ErrorMessage)
				}
				fmt.Fprintf(out, "Created:   %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
				if duration := job.Duration(); duration > 0 {
					fmt.Fprintf(out, "Duration:  %s\n", duration.Round(10*time.Millisecond))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func newJobsStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show job counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if stats.Total == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
					return nil
				}

				if jsonOut {
					return writeJSON(cmd, stats)
				}

				rows := [][]string{
					{"pending", strconv.Itoa(stats.Pending)},
					{"running", strconv.Itoa(stats.Running)},
					{"completed", strconv.Itoa(stats.Completed)},
					{"failed", strconv.Itoa(stats.Failed)},
					{"total", strconv.Itoa(stats.Total)},
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
