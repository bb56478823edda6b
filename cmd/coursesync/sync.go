package main

import (
	"fmt"
	"io"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger"
	"github.com/mycok/coursesync/service/syncer"
)

// syncFlags configure a sync service.
type syncFlags struct {
	noFiles         bool
	noAssignments   bool
	crawlWorkers    int
	downloadWorkers int
	timeout         time.Duration
}

func (f *syncFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noFiles, "no-files", false, "Skip files and links")
	cmd.Flags().BoolVar(&f.noAssignments, "no-assignments", false, "Skip assignment pages")
	cmd.Flags().IntVar(
		&f.crawlWorkers, "crawl-workers", runtime.NumCPU(),
		"Maximum number of concurrent folder and assignment page fetches per course",
	)
	cmd.Flags().IntVar(
		&f.downloadWorkers, "download-workers", runtime.NumCPU(),
		"Number of concurrent file downloads",
	)
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "Timeout of a single portal request")
}

func newSyncCmd(opts *options) *cobra.Command {
	flags := new(syncFlags)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download new files of the selected courses",
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

			svc, err := e.newSyncService(flags, l, 0)
			if err != nil {
				return err
			}

			ctx, cancelFn := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancelFn()

			summary, err := svc.SyncOnce(ctx)
			printSummary(cmd.OutOrStdout(), summary, e.cfg.Minimise, time.Local)

			return err
		},
	}
	flags.register(cmd)

	return cmd
}

func (e *env) newSyncService(flags *syncFlags, l ledger.Ledger, interval time.Duration) (*syncer.Service, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("incomplete config %s: %w", e.paths.Config(), err)
	}

	sess, err := e.newSession(flags.timeout)
	if err != nil {
		return nil, err
	}

	return syncer.New(syncer.Config{
		Portal:               sess,
		Credentials:          e.cfg.LoginData,
		Ledger:               l,
		SelectionPath:        e.paths.Selection(),
		DownloadRoot:         e.cfg.DefaultPath,
		IncludeFiles:         !flags.noFiles,
		IncludeAssignments:   !flags.noAssignments,
		NumOfCrawlWorkers:    flags.crawlWorkers,
		NumOfDownloadWorkers: flags.downloadWorkers,
		Location:             time.Local,
		SyncInterval:         interval,
		Logger:               e.logger.WithField("service", "syncer"),
	})
}

// printSummary writes the outcome of a run. Due dates are shown in loc, the
// location they were parsed in.
func printSummary(w io.Writer, summary *syncer.Summary, minimise bool, loc *time.Location) {
	if summary == nil {
		return
	}

	if !minimise {
		for _, file := range summary.Downloaded {
			fmt.Fprintf(w, "%s: %s\n", file.CourseName(), file.Name)
		}

		for _, res := range summary.Failed {
			fmt.Fprintf(w, "failed %s: %s (%v)\n", res.File.CourseName(), res.File.Name, res.Err)
		}

		printAssignments(w, summary.Assignments, loc)
	}

	fmt.Fprintf(w, "%s: %d courses, %d files downloaded", syncer.StatusMessage(summary.Err), summary.Courses, len(summary.Downloaded))
	if len(summary.Failed) > 0 {
		fmt.Fprintf(w, ", %d failed", len(summary.Failed))
	}
	if len(summary.Issues) > 0 {
		fmt.Fprintf(w, ", %d issues", len(summary.Issues))
	}
	fmt.Fprintln(w)
}

func printAssignments(w io.Writer, assignments []*course.Assignment, loc *time.Location) {
	for _, a := range assignments {
		state := "open"
		if a.Submitted {
			state = "submitted"
		}

		if a.DueDate.IsZero() {
			fmt.Fprintf(w, "assignment %s [%s]\n", a.Name, state)

			continue
		}

		fmt.Fprintf(w, "assignment %s [%s] due %s\n", a.Name, state, a.DueDate.In(loc).Format("Mon 02 Jan 2006 15:04"))
	}
}
