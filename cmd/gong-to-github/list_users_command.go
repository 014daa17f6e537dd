package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sderosiaux/gong-to-github/internal/domain/entities"
)

func newListUsersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-users",
		Short: "List all Gong users",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Fetching users from Gong...")

			cached, err := ctx.client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			// Sort a copy, the client hands out its cache.
			users := make([]entities.User, len(cached))
			copy(users, cached)
			sort.SliceStable(users, func(i, j int) bool {
				return users[i].FullName() < users[j].FullName()
			})

			rows := make([][]string, 0, len(users))
			for i := range users {
				status := "active"
				if !users[i].Active {
					status = "inactive"
				}
				rows = append(rows, []string{users[i].FullName(), users[i].EmailAddress, status})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d users\n\n", len(users))
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Email", "Status"}, rows))
			return nil
		},
	}

	return cmd
}
