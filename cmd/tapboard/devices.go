package tapboard

import (
	"fmt"

	"github.com/dasdy/tapboard/touchlog/ports"
	"github.com/spf13/cobra"
)

// devicesCmd represents the devices command.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List serial devices that look like touch controllers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		names, err := ports.GetAvailableDevices()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No touch controllers found")

			return nil
		}

		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
