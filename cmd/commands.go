package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/wardwatch/internal/config"
	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/internal/domain/scoring"
	"github.com/okian/wardwatch/internal/seed"
	"github.com/okian/wardwatch/pkg/logger"
)

func newImportTrainingCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-training",
		Short: "Import a semicolon-separated training attendance export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open %s: %w", file, err)
			}
			defer f.Close()

			svc, kv, err := c.newService(ctx)
			if err != nil {
				return err
			}
			defer kv.Close()
			c.warnEphemeral(cmd)

			report, err := svc.ImportTrainingCSV(ctx, f)
			if err != nil {
				return err
			}
			c.log.Info(ctx, "training imported",
				logger.String("file", file),
				logger.Int("rows", report.Rows),
				logger.Int("skipped", len(report.Skipped)),
			)
			if c.json {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lines: %d, accepted: %d, sessions: %d\n", report.Lines, report.Accepted, report.Rows)
			if len(report.Skipped) == 0 {
				return nil
			}
			t := newTable(out)
			t.AppendHeader(table.Row{"Line", "Skipped because"})
			for _, s := range report.Skipped {
				t.AppendRow(table.Row{s.Line, s.Reason})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file (name;department;title;date)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSummaryCmd(c *cli) *cobra.Command {
	var area, subdomain string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, kv, err := c.newService(ctx)
			if err != nil {
				return err
			}
			defer kv.Close()

			scope := model.Scope{Area: strings.TrimSpace(area)}
			if sub := strings.TrimSpace(subdomain); sub != "" {
				scope.Subdomain = &sub
			}
			sum := svc.Summary(ctx, scope)
			if c.json {
				return writeJSON(cmd.OutOrStdout(), sum)
			}

			t := newTable(cmd.OutOrStdout())
			t.SetTitle("Summary " + sum.Today)
			t.AppendHeader(table.Row{"Indicator", "Value"})
			t.AppendRows([]table.Row{
				{"Open tasks", sum.Tasks.Open},
				{"Tasks due today", sum.Tasks.DueToday},
				{"Overdue tasks", sum.Tasks.Overdue},
				{"Open suggestions", sum.OpenSuggestions},
				{"Training compliance (year)", percent(sum.TrainingCompliance.Year)},
				{"Training compliance (month)", percent(sum.TrainingCompliance.Month)},
				{"Equipment expiring", bucket(sum.Equipment.Expiring, sum.Equipment.Expired, sum.Equipment.WindowDays)},
				{"EIP expiring", bucket(sum.EIP.Expiring, sum.EIP.Expired, sum.EIP.WindowDays)},
				{"Permits expiring", bucket(sum.Permits.Expiring, sum.Permits.Expired, sum.Permits.WindowDays)},
				{"Contracts expiring", bucket(sum.Contracts.Expiring, sum.Contracts.Expired, sum.Contracts.WindowDays)},
				{"Open incidents", sum.OpenIncidents},
				{"Overdue incidents", sum.OverdueIncidents},
				{"High risks", sum.HighRisks},
				{"Overdue measures", sum.OverdueMeasures},
				{"Open audits", sum.OpenAudits},
				{"Overdue audits", sum.OverdueAudits},
				{"Overdue drills", sum.OverdueDrills},
				{"KPI reports", sum.KPIReports},
			})
			t.AppendSeparator()
			for _, w := range sum.TopWasteDepartments {
				t.AppendRow(table.Row{"Waste " + w.Key, strconv.FormatFloat(w.Value, 'f', -1, 64) + " kg"})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&area, "area", "", "area filter, e.g. mentenanta")
	cmd.Flags().StringVar(&subdomain, "subdomain", "", "subdomain within the area")
	return cmd
}

func newCardsCmd(c *cli) *cobra.Command {
	var safety bool
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List catalog cards ranked by impact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, kv, err := c.newService(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			var cards []scoring.Ranked
			if safety {
				cards = svc.SafetyCards()
			} else {
				cards = svc.MaintenanceCards()
			}
			if c.json {
				return writeJSON(cmd.OutOrStdout(), cards)
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Title", "Frequency", "Critical", "Impact"})
			for _, card := range cards {
				t.AppendRow(table.Row{card.ID, card.Title, card.Frequency, card.Critical, card.Impact})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&safety, "safety", false, "list the SSM/PSI catalog instead of maintenance")
	return cmd
}

func newSeedCmd(c *cli) *cobra.Command {
	cfg := seed.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, kv, err := c.newService(ctx)
			if err != nil {
				return err
			}
			defer kv.Close()
			c.warnEphemeral(cmd)

			stats, err := seed.Run(ctx, svc, cfg)
			if err != nil {
				return err
			}
			if c.json {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Collection", "Created"})
			t.AppendRows([]table.Row{
				{"tasks", stats.Tasks},
				{"suggestions", stats.Suggestions},
				{"training", stats.Training},
				{"responses", stats.Responses},
			})
			for _, name := range slices.Sorted(maps.Keys(stats.Records)) {
				t.AppendRow(table.Row{name, stats.Records[name]})
			}
			t.AppendFooter(table.Row{"Total", stats.Total()})
			t.Render()
			return nil
		},
	}
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "PRNG seed")
	cmd.Flags().IntVar(&cfg.Tasks, "tasks", cfg.Tasks, "tasks per area")
	cmd.Flags().IntVar(&cfg.Employees, "employees", cfg.Employees, "attendees per training session")
	cmd.Flags().IntVar(&cfg.Waste, "waste", cfg.Waste, "waste hand-overs to record")
	return cmd
}

// warnEphemeral warns when a writing command runs against the memory store.
func (c *cli) warnEphemeral(cmd *cobra.Command) {
	if c.cfg.StorageDriver == config.StorageMemory {
		c.log.Warn(cmd.Context(), "storage_driver is memory; nothing will be kept after exit")
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func percent(v int) string { return strconv.Itoa(v) + "%" }

func bucket(expiring int, expired *int, window int) string {
	s := fmt.Sprintf("%d (%dd)", expiring, window)
	if expired != nil {
		s += fmt.Sprintf(", %d expired", *expired)
	}
	return s
}
