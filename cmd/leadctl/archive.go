package main

import (
	"fmt"
	"io"
	"time"

	"mavenestudio/db"
	"mavenestudio/services"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Read or purge the JSON archives stored for each lead",
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <lead-id>",
	Short: "Print a lead's archived submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := archiveKeyFor(cmd, args[0])
		if err != nil {
			return err
		}
		rc, _, err := services.Storage.Open(cmd.Context(), key)
		if err != nil {
			return err
		}
		defer rc.Close()
		_, err = io.Copy(cmd.OutOrStdout(), rc)
		return err
	},
}

var archiveLinkCmd = &cobra.Command{
	Use:   "link <lead-id>",
	Short: "Print a temporary download URL for a lead's archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetDuration("ttl")
		key, err := archiveKeyFor(cmd, args[0])
		if err != nil {
			return err
		}
		url, err := services.Storage.SignedURL(cmd.Context(), key, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

var archivePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete archives of leads submitted before a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		before, _ := cmd.Flags().GetString("before")
		cutoff, err := time.Parse("2006-01-02", before)
		if err != nil {
			return fmt.Errorf("--before must be YYYY-MM-DD: %w", err)
		}

		if err := openDB(); err != nil {
			return err
		}
		defer db.Close()
		services.InitializeStorage(cfg)

		n, err := services.PurgeLeadArchives(cmd.Context(), db.DB, services.Storage, cutoff)
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d archives\n", n)
		return err
	},
}

// archiveKeyFor opens the database and storage and returns the lead's archive key
func archiveKeyFor(cmd *cobra.Command, leadID string) (string, error) {
	if err := openDB(); err != nil {
		return "", err
	}
	defer db.Close()

	lead, err := services.GetLead(cmd.Context(), db.DB, leadID)
	if err != nil {
		return "", fmt.Errorf("lead %s: %w", leadID, err)
	}
	if lead.ArchiveKey == "" {
		return "", fmt.Errorf("lead %s has no archive", leadID)
	}
	services.InitializeStorage(cfg)
	return lead.ArchiveKey, nil
}

func init() {
	archiveLinkCmd.Flags().Duration("ttl", time.Hour, "how long the link stays valid")
	archivePurgeCmd.Flags().String("before", "", "purge archives of leads submitted before YYYY-MM-DD")
	archivePurgeCmd.MarkFlagRequired("before")
	archiveCmd.AddCommand(archiveShowCmd, archiveLinkCmd, archivePurgeCmd)
}
