package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mycok/coursesync/config"
)

func newConfigCmd(opts *options) *cobra.Command {
	var (
		update   config.Config
		minimise string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit the configuration",
		Long: `config prints the current configuration. Flags given to the command
are stored in the configuration file first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}

			changed := apply(e.cfg, update)
			switch minimise {
			case "":
			case "true", "false":
				e.cfg.Minimise = minimise == "true"
				changed = true
			default:
				return fmt.Errorf("invalid value for --minimise, must be true or false")
			}

			if changed {
				if err := config.Save(e.paths.Config(), e.cfg); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config file:  %s\n", e.paths.Config())
			fmt.Fprintf(out, "default_path: %s\n", e.cfg.DefaultPath)
			fmt.Fprintf(out, "urls.home:    %s\n", e.cfg.URLs.Home)
			fmt.Fprintf(out, "urls.login:   %s\n", e.cfg.URLs.Login)
			fmt.Fprintf(out, "username:     %s\n", e.cfg.LoginData.Username)
			fmt.Fprintf(out, "password:     %s\n", mask(e.cfg.LoginData.Password))
			fmt.Fprintf(out, "minimise:     %t\n", e.cfg.Minimise)
			fmt.Fprintf(out, "ledger:       %s\n", ledgerURI(e))

			if err := e.cfg.Validate(); err != nil {
				fmt.Fprintf(out, "\nconfig is incomplete: %v\n", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&update.DefaultPath, "path", "", "Directory course files are downloaded to")
	cmd.Flags().StringVar(&update.URLs.Home, "home-url", "", "Portal home page listing your courses")
	cmd.Flags().StringVar(&update.URLs.Login, "login-url", "", "Portal login page")
	cmd.Flags().StringVar(&update.LoginData.Username, "username", "", "Portal username")
	cmd.Flags().StringVar(&update.LoginData.Password, "password", "", "Portal password")
	cmd.Flags().StringVar(&update.Ledger, "ledger", "", "Ledger URI [in-memory://, file:///path/files.json, postgresql://user@host:26257/coursesync]")
	cmd.Flags().StringVar(&minimise, "minimise", "", "Only print the sync summary [true|false]")

	return cmd
}

// apply copies the non-empty settings of update into cfg.
func apply(cfg *config.Config, update config.Config) bool {
	var changed bool
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}

	set(&cfg.DefaultPath, update.DefaultPath)
	set(&cfg.URLs.Home, update.URLs.Home)
	set(&cfg.URLs.Login, update.URLs.Login)
	set(&cfg.LoginData.Username, update.LoginData.Username)
	set(&cfg.LoginData.Password, update.LoginData.Password)
	set(&cfg.Ledger, update.Ledger)

	return changed
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}

	return "********"
}

func ledgerURI(e *env) string {
	if e.cfg.Ledger == "" {
		return e.paths.Ledger()
	}

	return e.cfg.Ledger
}
