package tapboard

import (
	"fmt"
	"log/slog"

	"github.com/dasdy/tapboard/db"
	"github.com/dasdy/tapboard/web"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showCmd represents the show command.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show collected statistics",
	Long:  `Use data collected by the track command to show a web interface with statistics.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, keyboards, err := loadConfig()
		if err != nil {
			return err
		}

		slog.Debug("Config", "file", viper.ConfigFileUsed(), "parameters", viper.AllSettings())
		slog.Info("Statistics file", "path", cfg.StoragePath)

		storage, err := db.NewStorageFromPath(cfg.StoragePath, verbose)
		if err != nil {
			return fmt.Errorf("could not open %s as sqlite file: %w", cfg.StoragePath, err)
		}
		defer storage.Close()

		neighborTracker, err := db.NewNeighborCounterFromDB(storage)
		if err != nil {
			return fmt.Errorf("could not create neighbor tracker: %w", err)
		}

		return web.StartServer(showPort, storage, neighborTracker, keyboards, showDev)
	},
}

var (
	showPort int
	showDev  bool
)

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().IntVarP(&showPort, "port", "p", 9000,
		"Port on which server should be watching")

	showCmd.Flags().BoolVar(&showDev,
		"dev",
		false,
		"Enable developer mode")
}
