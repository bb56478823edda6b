package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mycok/coursesync/config"
)

func newCoursesCmd(opts *options) *cobra.Command {
	var (
		refresh bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List the course selection",
		Long: `courses lists the courses of the selection file. Only checked courses
are synced. With --refresh the course list is fetched from the portal first
and new courses are added unchecked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}

			sel, err := config.LoadSelection(e.paths.Selection())
			if err != nil {
				return err
			}

			if refresh {
				if err := e.cfg.Validate(); err != nil {
					return fmt.Errorf("incomplete config %s: %w", e.paths.Config(), err)
				}

				sess, err := e.newSession(timeout)
				if err != nil {
					return err
				}

				if err := sess.Login(cmd.Context(), e.cfg.LoginData); err != nil {
					return err
				}

				courses, err := sess.Courses(cmd.Context())
				if err != nil {
					return err
				}

				var added int
				if sel, added = sel.Merge(courses); added > 0 {
					if err := config.SaveSelection(e.paths.Selection(), sel); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d new courses\n", added)
			}

			for _, entry := range sel {
				mark := " "
				if entry.Checked {
					mark = "x"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\t%s\n", mark, entry.Name, entry.URL)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the course list from the portal")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout of a single portal request")

	cmd.AddCommand(
		newSetCheckedCmd(opts, "check", "Select courses for syncing", true),
		newSetCheckedCmd(opts, "uncheck", "Exclude courses from syncing", false),
	)

	return cmd
}

func newSetCheckedCmd(opts *options, use, short string, checked bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME|URL...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}

			sel, err := config.LoadSelection(e.paths.Selection())
			if err != nil {
				return err
			}

			changed := sel.Set(checked, args...)
			if changed > 0 {
				if err := config.SaveSelection(e.paths.Selection(), sel); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d courses changed\n", changed)

			return nil
		},
	}
}
