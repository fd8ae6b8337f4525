package main

import (
	"fmt"
	"io"
	"strings"

	"layoffs-engine/internal/dashboard"
	"layoffs-engine/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func (a *app) dashboard() *dashboard.Service {
	return dashboard.NewService(a.cfg.CSVPath(), nil)
}

func (a *app) statsCmd() *cobra.Command {
	var view string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard aggregates from the notice CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.dashboard()
			switch view {
			case "states":
				return printStates(cmd.OutOrStdout(), svc)
			case "timeline":
				return printTimeline(cmd.OutOrStdout(), svc)
			case "summary":
				return printSummary(cmd.OutOrStdout(), svc)
			default:
				return fmt.Errorf("unknown view %q (want states, timeline or summary)", view)
			}
		},
	}
	cmd.Flags().StringVar(&view, "view", "states", "states, timeline or summary")
	return cmd
}

func printStates(out io.Writer, svc *dashboard.Service) error {
	stats, err := svc.ByState()
	if err != nil {
		return err
	}
	t := newTable(out)
	t.AppendHeader(table.Row{"State", "Workers", "Population", "Per 100k"})
	for _, s := range stats {
		t.AppendRow(table.Row{s.State, s.TotalWorkers, s.Population, fmt.Sprintf("%.2f", s.RatePer100k)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
	return nil
}

func printTimeline(out io.Writer, svc *dashboard.Service) error {
	points, err := svc.Timeline()
	if err != nil {
		return err
	}
	t := newTable(out)
	t.AppendHeader(table.Row{"Received", "Workers"})
	for _, p := range points {
		t.AppendRow(table.Row{p.Date, p.Workers})
	}
	t.Render()
	return nil
}

func printSummary(out io.Writer, svc *dashboard.Service) error {
	s, err := svc.Summary()
	if err != nil {
		return err
	}
	t := newTable(out)
	t.AppendRows([]table.Row{
		{"Notices", s.Notices},
		{"Workers", s.TotalWorkers},
		{"States", s.States},
		{"Latest received", s.Latest},
	})
	t.Render()
	return nil
}

func (a *app) lookupCmd() *cobra.Command {
	var state, industry string
	var rows bool
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Total workers and companies for a state and industry",
		Long: `lookup filters the notice CSV by exact state and industry. Without both
flags it lists the values that can be used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.dashboard()
			if state == "" || industry == "" {
				opts, err := svc.Options()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "States: %s\n", strings.Join(opts.States, ", "))
				fmt.Fprintf(cmd.OutOrStdout(), "Industries: %s\n", strings.Join(opts.Industries, ", "))
				return nil
			}

			res, err := svc.Lookup(state, industry)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total workers affected in %s (%s): %.0f\n", res.State, res.Industry, res.TotalWorkers)
			fmt.Fprintf(cmd.OutOrStdout(), "Number of companies: %d\n", res.Companies)

			if rows && len(res.Rows) > 0 {
				t := newTable(cmd.OutOrStdout())
				header := make(table.Row, len(res.Columns))
				for i, c := range res.Columns {
					header[i] = c
				}
				t.AppendHeader(header)
				for _, r := range res.Rows {
					row := make(table.Row, len(r))
					for i, v := range r {
						row[i] = v
					}
					t.AppendRow(row)
				}
				t.Render()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "state, as written in the table")
	cmd.Flags().StringVar(&industry, "industry", "", "industry, as written in the table")
	cmd.Flags().BoolVar(&rows, "rows", false, "also print the matching notices")
	return cmd
}

func (a *app) runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent reconciliation passes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := store.OpenHistory(cmd.Context(), a.cfg.HistoryPath())
			if err != nil {
				return err
			}
			if hist == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled (storage.history_db is empty).")
				return nil
			}
			defer hist.Close()

			runs, err := hist.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", "Started", "Trigger", "Mode", "Outcome", "Added", "Vanished", "Total", "Error"})
			for _, r := range runs {
				t.AppendRow(table.Row{
					r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Trigger, r.Mode,
					r.Outcome, r.Added, r.Vanished, r.Total, text.Trim(r.Error, 60),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
