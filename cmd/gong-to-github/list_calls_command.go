package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sderosiaux/gong-to-github/internal/adapter/markdown"
	"github.com/sderosiaux/gong-to-github/internal/domain/entities"
	"github.com/sderosiaux/gong-to-github/internal/infrastructure/external/gong"
)

func newListCallsCommand(ctx *commandContext) *cobra.Command {
	var fromFlag string
	var toFlag string
	var clientFilter string

	cmd := &cobra.Command{
		Use:   "list-calls",
		Short: "List available calls from Gong",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDateFlag(fromFlag)
			if err != nil {
				return err
			}
			to, err := parseDateFlag(toFlag)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Fetching calls from Gong...")

			filter := strings.ToLower(clientFilter)
			grouped := make(map[string][]entities.Call)

			calls := ctx.client.GetFullCalls(cmd.Context(), from, to, gong.DefaultScope)
			for calls.Next() {
				call := calls.Call()
				folder := markdown.GenerateClientFolderName(&call)
				if filter != "" && !strings.Contains(strings.ToLower(folder), filter) {
					continue
				}
				grouped[folder] = append(grouped[folder], call)
			}
			if err := calls.Err(); err != nil {
				return err
			}

			folders := make([]string, 0, len(grouped))
			total := 0
			for folder, clientCalls := range grouped {
				folders = append(folders, folder)
				total += len(clientCalls)
			}
			sort.Strings(folders)

			var rows [][]string
			for _, folder := range folders {
				clientCalls := grouped[folder]
				sort.SliceStable(clientCalls, func(i, j int) bool {
					return callDate(&clientCalls[i]) < callDate(&clientCalls[j])
				})
				for i := range clientCalls {
					call := &clientCalls[i]
					title := call.Metadata.Title
					if title == "" {
						title = "Untitled"
					}
					duration := "N/A"
					if call.Metadata.Duration > 0 {
						duration = markdown.FormatDuration(call.Metadata.Duration)
					}
					rows = append(rows, []string{folder, callDate(call), title, duration})
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d external calls\n\n", total)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Client", "Date", "Title", "Duration"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to-date", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&clientFilter, "client", "", "Filter by client name (case-insensitive, partial match)")

	return cmd
}

func callDate(call *entities.Call) string {
	if call.Metadata.Started == nil {
		return "N/A"
	}
	return call.Metadata.Started.Format("2006-01-02")
}
