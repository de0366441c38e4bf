package tapboard

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dasdy/tapboard/db"
	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/keyboard"
	"github.com/dasdy/tapboard/model"
	"github.com/dasdy/tapboard/terminal"
	"github.com/dasdy/tapboard/touchlog"
	"github.com/dasdy/tapboard/touchlog/ports"
	"github.com/spf13/cobra"
)

// storingStats writes every commit straight away. A replay commits faster than a Recorder drains.
type storingStats struct {
	storage db.Storage
}

func (s storingStats) Track(char rune, l model.Layout) {
	if err := s.storage.Store(&model.CommitEvent{Char: char, Layout: l}); err != nil {
		slog.Error("Could not store commit", "error", err)
	}
}

var (
	replayFile string
	record     bool
)

// replayCmd represents the replay command.
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded touch log",
	Long: `Feed a touch log through the keyboard on a virtual clock and print the typed text.
Timers fire at the timestamps written in the log, so the result does not depend on how fast
the log is read. Reads stdin when no file is given.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, keyboards, err := loadConfig()
		if err != nil {
			return err
		}

		input := os.Stdin

		if replayFile != "" {
			input, err = os.Open(replayFile)
			if err != nil {
				return fmt.Errorf("could not open touch log: %w", err)
			}
			defer input.Close()
		}

		scheduler := gesture.NewManualScheduler()
		buffer := terminal.NewBuffer()

		opts := []keyboard.Option{keyboard.WithEditor(buffer)}

		if record {
			storage, err := db.NewStorageFromPath(cfg.StoragePath, verbose)
			if err != nil {
				return fmt.Errorf("could not open %s as sqlite file: %w", cfg.StoragePath, err)
			}
			defer storage.Close()

			opts = append(opts, keyboard.WithStats(storingStats{storage: storage}))
		}

		k, err := keyboard.New(cfg.Keyboard(), keyboards, scheduler, keyboard.InlineQueue{}, opts...)
		if err != nil {
			return err
		}

		k.SetSize(cfg.Width, cfg.Height)

		summary := touchlog.Replay(ports.ReadFile(input), scheduler, k, verbose)
		slog.Info("Replay done", "summary", summary)

		fmt.Println(buffer.String())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "", "Touch log to replay")
	replayCmd.Flags().BoolVar(&record, "record", false, "If provided, typed characters are stored in the statistics database")
}
