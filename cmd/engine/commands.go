package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"layoffs-engine/internal/errs"
	"layoffs-engine/internal/poll"
	"layoffs-engine/internal/scrape/util"
	"layoffs-engine/internal/secrets"

	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one reconciliation pass against the source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := poll.CheckOnce(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "mode=%s added=%d vanished=%d total=%d\n",
					res.Mode, res.NewCount, res.Vanished, res.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print pass counters")
	return cmd
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the notice CSV from a first scrape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limiter := util.NewHostLimiter(a.cfg.Source.RequestsPerSecond, 1)
			res, err := poll.NewReconciler(cmd.Context(), a.cfg, limiter).Bootstrap(cmd.Context())
			if errors.Is(err, errs.ErrAlreadyExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "Dataset already exists at %s; nothing to do.\n", a.cfg.CSVPath())
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d WARN notices to %s.\n", res.Total, a.cfg.CSVPath())
			return nil
		},
	}
}

func (a *app) passwordCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "smtp-password",
		Short: "Store the SMTP password for email digests in the OS keychain",
		Long: `smtp-password reads the password from the first line of stdin and stores it
under the account derived from notify.email. Use --delete to remove it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acct := secrets.SMTPKeyringAccount(a.cfg.Notify.Email)
			if remove {
				if err := secrets.DeleteSMTPPassword(acct); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed SMTP password for %s.\n", acct)
				return nil
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			if err := secrets.SetSMTPPassword(acct, strings.TrimRight(line, "\r\n")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored SMTP password for %s.\n", acct)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "remove the stored password")
	return cmd
}
