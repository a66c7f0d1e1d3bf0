// File: cmd/hammer/admin.go
package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iyunix/hammer/internal/repository"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Creates or updates the database schema",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := repository.Migrate(a.db); err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func purgeCodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-codes",
		Short: "Deletes expired verification codes",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.admin.PurgeExpiredCodes(c.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "deleted %d expired verification codes\n", n)
			return nil
		},
	}
}

func createSuperuserCommand() *cobra.Command {
	var phone, password string
	c := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Creates a staff account with a password",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := repository.Migrate(a.db); err != nil {
				return err
			}
			u, err := a.directory.CreateSuperuser(c.Context(), phone, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "created superuser %d (%s)\n", u.ID, u.PhoneNumber)
			return nil
		},
	}
	flags := c.Flags()
	flags.StringVar(&phone, "phone", "", "phone number of the account")
	flags.StringVar(&password, "password", "", "password, at least 8 characters")
	_ = c.MarkFlagRequired("phone")
	_ = c.MarkFlagRequired("password")
	return c
}

func usersCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "users",
		Short: "Inspects and removes user accounts",
	}
	c.AddCommand(usersListCommand(), usersDeleteCommand())
	return c
}

func usersListCommand() *cobra.Command {
	var (
		page, limit int
		search      string
	)
	c := &cobra.Command{
		Use:   "list",
		Short: "Lists users, newest last",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.admin.ListUsers(c.Context(), page, limit, search)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPHONE\tSTAFF\tACTIVE\tCREATED")
			for _, u := range result.Users {
				fmt.Fprintf(w, "%d\t%s\t%t\t%t\t%s\n", u.ID, u.PhoneNumber, u.IsStaff, u.IsActive, u.CreatedAt.Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "page %d, %d of %d users\n", result.Page, len(result.Users), result.Total)
			return nil
		},
	}
	flags := c.Flags()
	flags.IntVar(&page, "page", 1, "page number")
	flags.IntVar(&limit, "limit", 20, "users per page")
	flags.StringVar(&search, "search", "", "filter by phone number fragment")
	return c
}

func usersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Deletes a user and its profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.admin.DeleteUser(c.Context(), uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "deleted user %d\n", id)
			return nil
		},
	}
}
