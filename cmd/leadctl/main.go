// Command leadctl inspects and exports stored leads and prepares admin
// credentials.
package main

import (
	"os"

	"mavenestudio/config"
	"mavenestudio/db"
	"mavenestudio/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "leadctl",
	Short:         "Manage Maven Estúdio leads",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		cfg = config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")
	rootCmd.AddCommand(listCmd, exportCmd, statsCmd, archiveCmd, hashPasswordCmd)
}

// openDB connects with the server's settings and makes sure the lead table exists
func openDB() error {
	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: "production",
	}); err != nil {
		return err
	}
	return db.AutoMigrate(&models.Lead{}, &models.AnalyticsEvent{})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("leadctl failed")
		os.Exit(1)
	}
}
