package tapboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dasdy/tapboard/db"
	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/keyboard"
	"github.com/dasdy/tapboard/terminal"
	"github.com/dasdy/tapboard/touchlog"
	"github.com/dasdy/tapboard/touchlog/ports"
	"github.com/dasdy/tapboard/web"
	"github.com/spf13/cobra"
)

// echoEditor keeps the text like a Buffer and also prints every commit.
type echoEditor struct {
	*terminal.Buffer

	out io.Writer
}

func (e echoEditor) CommitText(text string) {
	e.Buffer.CommitText(text)
	fmt.Fprint(e.out, text)
}

func (e echoEditor) DeleteBackward(n int) {
	e.Buffer.DeleteBackward(n)
	// Erase on a terminal
	for range n {
		fmt.Fprint(e.out, "\b \b")
	}
}

func (e echoEditor) PerformEditorAction() {
	e.Buffer.PerformEditorAction()
	fmt.Fprintln(e.out)
}

// trackCmd represents the track command.
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Connect to touch controllers and type with them",
	Long: `Provide paths of serial devices to connect to, use --watch to pick up controllers as they are
plugged in, or leave empty to read from stdin.
Typed text is printed, typed characters are stored in a sqlite file, and optionally a web server
visualizes them.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, keyboards, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		lines, closer, err := openTouchInput(ctx, cfg.BaudRate)
		if err != nil {
			return err
		}
		defer closer()

		slog.Info("Output file", "path", cfg.StoragePath)

		storage, err := db.NewStorageFromPath(cfg.StoragePath, verbose)
		if err != nil {
			return fmt.Errorf("could not open %s as sqlite file: %w", cfg.StoragePath, err)
		}
		defer storage.Close()

		neighborTracker, err := db.NewNeighborCounterFromDB(storage)
		if err != nil {
			return fmt.Errorf("could not create neighbor tracker: %w", err)
		}

		recorder := db.NewRecorder(storage, neighborTracker, verbose)
		defer recorder.Close()

		if !disableInterface {
			go func() {
				if err := web.StartServer(port, storage, neighborTracker, keyboards, dev); err != nil {
					slog.Error("Web interface stopped", "error", err)
				}
			}()
		}

		scheduler := gesture.NewLoopScheduler()
		defer scheduler.Close()

		executor := keyboard.NewExecutor()
		defer executor.Close()

		k, err := keyboard.New(cfg.Keyboard(), keyboards, scheduler, executor,
			keyboard.WithEditor(echoEditor{Buffer: terminal.NewBuffer(), out: os.Stdout}),
			keyboard.WithStats(recorder),
		)
		if err != nil {
			return err
		}

		k.SetSize(cfg.Width, cfg.Height)
		k.SetNoEnterAction(true)
		watchVibration(k)

		slog.Info("Main loop")

		summary := touchlog.Live(ctx, lines, scheduler, k, verbose)
		slog.Info("Input closed", "summary", summary)

		return nil
	},
}

func openTouchInput(ctx context.Context, baudRate int) (<-chan string, func(), error) {
	switch {
	case watch:
		reader := ports.DefaultMonitoringDeviceReader(baudRate)

		return reader.Channel(ctx.Done()), func() {
			if err := reader.Close(); err != nil {
				slog.Error("Could not close devices", "error", err)
			}
		}, nil
	case len(filenames) > 0:
		ch, closer, err := ports.OpenFiles(baudRate, filenames...)
		if err != nil {
			return nil, nil, suggestDevices(err)
		}

		return ch, closer, nil
	default:
		names, err := ports.GetAvailableDevices()
		if err != nil {
			slog.Warn("Could not list devices", "error", err)
		}

		slog.Info("Will proceed to read from stdin", "suggestedDevices", names)

		return ports.ReadFile(os.Stdin), func() {}, nil
	}
}

func suggestDevices(err error) error {
	names, errInner := ports.GetAvailableDevices()
	if errInner != nil {
		return fmt.Errorf("could not open devices: %w; could not suggest devices: %w", err, errInner)
	}

	if len(names) > 0 {
		return fmt.Errorf("error opening devices: %w. Maybe try instead: %+v", err, names)
	}

	return fmt.Errorf("error opening devices: %w. It does not seem like any touch controller is connected", err)
}

var (
	filenames        []string
	port             int
	disableInterface bool
	dev              bool
	watch            bool
)

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.Flags().StringSliceVarP(
		&filenames,
		"file",
		"f",
		[]string{},
		"List of serial devices to get touch events from",
	)

	trackCmd.Flags().IntVarP(
		&port, "port", "p", 3000,
		"Port on which server should be watching")

	trackCmd.Flags().BoolVar(&disableInterface,
		"no-interface",
		false,
		"If provided, no web server will be run with visualization")

	trackCmd.Flags().BoolVar(&dev,
		"dev",
		false,
		"Enable developer mode")

	trackCmd.Flags().BoolVarP(&watch,
		"watch",
		"w",
		false,
		"Watch /dev for touch controllers instead of opening --file")
}
