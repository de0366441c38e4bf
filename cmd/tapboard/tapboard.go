package tapboard

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dasdy/tapboard/config"
	"github.com/dasdy/tapboard/keyboard"
	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tapboard",
	Short: "Gesture-driven soft keyboard",
	Long: `Tapboard turns raw touch events into keyboard input: taps, swipes, long presses
and holds are classified and interpreted against Caps, Lowercase and Numeric keyboards.
Touch streams can be replayed from logs, read live from a touch controller, or produced
with the mouse in a terminal. Typed characters can be tracked and shown as a heatmap.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(os.Stderr, verbose)
		bindFlags(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tapboard.toml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "If provided, debug output will be shown")

	d := config.Default()

	flags.Float64("touch-tolerance", d.TouchTolerance,
		"How far a press may move and stay stationary; 0 derives it from the key size")
	flags.Float64("tolerance-fraction", d.ToleranceFraction,
		"Fraction of a key a press may move when the tolerance is derived")
	flags.Duration("press-timeout", d.PressTimeout, "Time until a press becomes a long press")
	flags.Int("long-long-press-factor", d.LongLongPressFactor,
		"Long-long-press delay, in press timeouts from the start of the press")
	flags.String("cycle", d.Cycle.String(), "Order of the mode switch key: forward, reverse or implicit")
	flags.Duration("vibrate-duration", d.VibrateDuration, "Haptic feedback length; 0 disables it")
	flags.String("layout", d.LayoutFile, "Keyboards file (yaml, toml or json); built-in Swedish if empty")
	flags.Float64("width", d.Width, "Keyboard width in touch coordinates")
	flags.Float64("height", d.Height, "Keyboard height in touch coordinates")
	flags.Int("baud-rate", d.BaudRate, "Baud rate of touch controllers")
	flags.StringP("out", "o", d.StoragePath, "Path of the statistics database")

	config.SetDefaults(viper.GetViper())

	// Config keys are the flag names without hyphens
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "")
		if key == "config" || key == "verbose" {
			return
		}

		cobra.CheckErr(viper.BindPFlag(key, f))
	})
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tapboard" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("toml")
		viper.SetConfigName(".tapboard")
	}

	viper.SetEnvPrefix("tapboard")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			slog.Error("Error reading config file", "error", err)
			os.Exit(1)
		}

		slog.Debug("No config file, using defaults")

		return
	}

	slog.Debug("Using config file", "path", viper.ConfigFileUsed())
}

// set values to the PFlag variables from config, if they are set. Priority is still given to explicitly provided CLI flags.
func bindFlags(cmd *cobra.Command, _ []string) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Config keys are flag names without hyphens; viper compares them case-insensitively.
		configName := strings.ReplaceAll(f.Name, "-", "")

		if !f.Changed && viper.IsSet(configName) {
			val := viper.Get(configName)

			err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
			if err != nil {
				slog.Error("Error setting flag", "flag", f.Name, "error", err)
				panic(err)
			}

			slog.Debug("Flag set to config value", "flag", f.Name, "value", val)
		}
	})
}

func loadConfig() (config.Config, layout.Keyboards, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return config.Config{}, layout.Keyboards{}, err
	}

	keyboards, err := cfg.Keyboards()
	if err != nil {
		return config.Config{}, layout.Keyboards{}, err
	}

	slog.Debug("Loaded config", "keyboards", keyboards.Name, "pressTimeout", cfg.PressTimeout, "cycle", cfg.Cycle)

	return cfg, keyboards, nil
}

// watchVibration applies vibration changes in the config file to k while the command runs.
func watchVibration(k *keyboard.Keyboard) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		d := viper.GetDuration(config.KeyVibrateDuration)
		if d < 0 {
			slog.Warn("Ignoring negative vibrate duration", "file", e.Name, "duration", d)

			return
		}

		slog.Info("Config changed", "file", e.Name, "vibrateDuration", d)
		k.SetVibrateDuration(d)
	})
	viper.WatchConfig()
}
