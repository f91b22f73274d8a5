package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"mavenestudio/db"
	"mavenestudio/models"
	"mavenestudio/services"

	"github.com/spf13/cobra"
)

var filterFlags struct {
	status  string
	channel string
	since   string
	search  string
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterFlags.status, "status", "", "delivered or failed")
	cmd.Flags().StringVar(&filterFlags.channel, "channel", "", "wizard or api")
	cmd.Flags().StringVar(&filterFlags.since, "since", "", "only leads submitted on or after YYYY-MM-DD")
	cmd.Flags().StringVarP(&filterFlags.search, "search", "q", "", "match name, email or company")
}

func leadFilter() (services.LeadFilter, error) {
	filter := services.LeadFilter{
		Status:  filterFlags.status,
		Channel: filterFlags.channel,
		Search:  filterFlags.search,
	}
	if filterFlags.since != "" {
		t, err := time.Parse("2006-01-02", filterFlags.since)
		if err != nil {
			return filter, fmt.Errorf("--since must be YYYY-MM-DD: %w", err)
		}
		filter.Since = t
	}
	return filter, nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := leadFilter()
		if err != nil {
			return err
		}
		filter.PerPage, _ = cmd.Flags().GetInt("limit")

		if err := openDB(); err != nil {
			return err
		}
		defer db.Close()

		page, err := services.ListLeads(cmd.Context(), db.DB, filter)
		if err != nil {
			return err
		}
		writeLeadTable(cmd.OutOrStdout(), page.Leads)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d leads\n", len(page.Leads), page.Total)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := leadFilter()
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		archive, _ := cmd.Flags().GetBool("archive")

		if err := openDB(); err != nil {
			return err
		}
		defer db.Close()

		buf, err := services.ExportLeadsExcel(cmd.Context(), db.DB, filter)
		if err != nil {
			return err
		}
		data := buf.Bytes()

		if archive {
			services.InitializeStorage(cfg)
			key := services.GenerateExportKey(time.Now())
			res, err := services.Storage.Put(cmd.Context(), key, data, services.ContentTypeFor(key))
			if err != nil {
				return fmt.Errorf("failed to archive export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %s\n", res.Key)
		}

		if out == "" {
			out = "leads-" + time.Now().Format("20060102") + ".xlsx"
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize leads and page views",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days < 1 {
			return fmt.Errorf("--days must be positive")
		}
		since := time.Now().AddDate(0, 0, -days)

		if err := openDB(); err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		leads, err := services.CountLeadsByStatus(ctx, db.DB, since)
		if err != nil {
			return err
		}
		analytics := services.NewAnalytics(db.DB)
		events, err := analytics.CountEvents(ctx, since)
		if err != nil {
			return err
		}
		pages, err := analytics.TopPages(ctx, since, 5)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Last %d days\n\n", days)
		fmt.Fprintf(w, "delivered\t%d\n", leads[models.LeadStatusDelivered])
		fmt.Fprintf(w, "failed\t%d\n", leads[models.LeadStatusFailed])
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%d\n", e.Name, e.Count)
		}
		if len(pages) > 0 {
			fmt.Fprintln(w, "\nTop pages")
			for _, p := range pages {
				fmt.Fprintf(w, "%s\t%d\n", p.Name, p.Count)
			}
		}
		return w.Flush()
	},
}

func init() {
	addFilterFlags(listCmd)
	listCmd.Flags().IntP("limit", "n", 20, "number of leads to show")

	addFilterFlags(exportCmd)
	exportCmd.Flags().StringP("out", "o", "", "output file (default leads-YYYYMMDD.xlsx)")
	exportCmd.Flags().Bool("archive", false, "also upload the workbook to storage")

	statsCmd.Flags().Int("days", 30, "window in days")
}

func writeLeadTable(out io.Writer, leads []models.Lead) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBMITTED\tNAME\tEMAIL\tPHONE\tSERVICES\tCHANNEL\tSTATUS")
	for _, l := range leads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.SubmittedAt.Local().Format("2006-01-02 15:04"),
			l.Name, l.Email, l.Phone, shorten(l.Service, 40), l.Channel, l.Status)
	}
	w.Flush()
}

func shorten(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
