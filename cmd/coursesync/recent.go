package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mycok/coursesync/catalog"
	"github.com/mycok/coursesync/ledger"
)

func newRecentCmd(opts *options) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently downloaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}

			l, err := e.openLedger()
			if err != nil {
				return err
			}
			defer func() { _ = l.Close() }()

			files, err := ledger.Recent(l, n)
			if err != nil {
				return err
			}

			for _, file := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", file.CourseName(), file.Name)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 10, "Number of files to list")

	return cmd
}

func newFindCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "find TERMS...",
		Short: "Search the downloaded files by name, section or course",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}

			l, err := e.openLedger()
			if err != nil {
				return err
			}
			defer func() { _ = l.Close() }()

			cat, err := catalog.New()
			if err != nil {
				return err
			}
			defer func() { _ = cat.Close() }()

			if _, err := cat.Refresh(l); err != nil {
				return err
			}

			matches, err := cat.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			for _, file := range matches {
				location := file.DownloadPath
				if location == "" {
					location = file.URL
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\t%s\n", file.CourseName(), file.Name, location)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", catalog.DefaultLimit, "Maximum number of results")

	return cmd
}
