package tapboard

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dasdy/tapboard/db"
	"github.com/dasdy/tapboard/terminal"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
)

var trackStats bool

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Type on the keyboard with the mouse in a terminal",
	Long: `Draw the keyboard at the bottom of the terminal and type by clicking, dragging and holding
the left mouse button. The typed text is printed on exit.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, keyboards, err := loadConfig()
		if err != nil {
			return err
		}

		var opts []terminal.Option

		if trackStats {
			storage, err := db.NewStorageFromPath(cfg.StoragePath, verbose)
			if err != nil {
				return fmt.Errorf("could not open %s as sqlite file: %w", cfg.StoragePath, err)
			}
			defer storage.Close()

			recorder := db.NewRecorder(storage, nil, verbose)
			defer recorder.Close()

			opts = append(opts, terminal.WithStats(recorder))
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("could not create screen: %w", err)
		}

		if err := screen.Init(); err != nil {
			return fmt.Errorf("could not initialize screen: %w", err)
		}

		host, err := terminal.NewHost(screen, cfg.Keyboard(), keyboards, opts...)
		if err != nil {
			screen.Fini()

			return err
		}

		watchVibration(host.Keyboard())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		host.Run(ctx)
		host.Close()
		screen.Fini()

		fmt.Println(host.Buffer().String())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&trackStats, "track", false, "If provided, typed characters are stored in the statistics database")
}
