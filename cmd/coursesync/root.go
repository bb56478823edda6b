package main

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mycok/coursesync/config"
	"github.com/mycok/coursesync/ledger"
	"github.com/mycok/coursesync/ledger/store/cdb"
	"github.com/mycok/coursesync/ledger/store/jsonfile"
	"github.com/mycok/coursesync/ledger/store/memory"
	"github.com/mycok/coursesync/session"
)

// options are the persistent flags shared by every command.
type options struct {
	configDir string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := new(options)

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Mirror the files of your learning portal courses",
		Long: `coursesync logs into a Moodle based learning portal, crawls the
courses selected in the course selection file and downloads every file and
link that has not been downloaded before.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(
		&opts.configDir, "config-dir", "",
		"Directory holding config.json, courses.json and files.json [defaults to the user config directory]",
	)
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newSyncCmd(opts),
		newWatchCmd(opts),
		newCoursesCmd(opts),
		newRecentCmd(opts),
		newFindCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}

// env bundles what commands need after the config has been loaded.
type env struct {
	paths  config.Paths
	cfg    *config.Config
	logger *logrus.Entry
}

func loadEnv(opts *options) (*env, error) {
	paths := config.Paths{Dir: opts.configDir}
	if paths.Dir == "" {
		var err error
		if paths, err = config.DefaultPaths(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(paths.Config())
	if err != nil {
		return nil, err
	}

	return &env{paths: paths, cfg: cfg, logger: newLogger(opts.verbose)}, nil
}

func newLogger(verbose bool) *logrus.Entry {
	host, _ := os.Hostname()

	rootLogger := logrus.New()
	rootLogger.SetOutput(os.Stderr)
	rootLogger.SetLevel(logrus.WarnLevel)
	if verbose {
		rootLogger.SetLevel(logrus.DebugLevel)
	}

	return rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"host": host,
	})
}

// openLedger returns the ledger store selected by the config. An empty URI
// selects the JSON ledger in the config directory.
func (e *env) openLedger() (ledger.Ledger, error) {
	if e.cfg.Ledger == "" {
		e.logger.WithField("path", e.paths.Ledger()).Debug("using JSON file ledger")
		if err := os.MkdirAll(e.paths.Dir, 0o700); err != nil {
			return nil, err
		}

		return jsonfile.NewFileLedger(e.paths.Ledger())
	}

	uri, err := url.Parse(e.cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		e.logger.Debug("using in-memory ledger")

		return memory.NewInMemoryLedger(), nil
	case "postgresql":
		e.logger.Debug("using CDB ledger")

		return cdb.NewCockroachDBLedger(e.cfg.Ledger)
	case "file":
		e.logger.WithField("path", uri.Path).Debug("using JSON file ledger")

		return jsonfile.NewFileLedger(uri.Path)
	default:
		return nil, fmt.Errorf("unsupported ledger URI scheme: %q", uri.Scheme)
	}
}

func (e *env) newSession(timeout time.Duration) (*session.Session, error) {
	return session.New(session.Config{
		HomeURL:  e.cfg.URLs.Home,
		LoginURL: e.cfg.URLs.Login,
		Timeout:  timeout,
		Logger:   e.logger.WithField("component", "session"),
	})
}
