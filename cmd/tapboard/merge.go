package tapboard

import (
	"errors"
	"fmt"
	"os"

	"github.com/dasdy/tapboard/db"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var mergeFiles []string

// mergeCmd represents the merge command.
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge statistics databases into one",
	Long:  `Given statistics files, create a new one (--out), which is just a union of input databases`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if len(mergeFiles) == 0 {
			return errors.New("no files to merge, provide them with --file")
		}

		inputs := make([]*db.SQLiteStorage, len(mergeFiles))

		for i, fn := range mergeFiles {
			store, err := db.NewStorageFromPath(fn, false)
			if err != nil {
				return err
			}
			defer store.Close()

			inputs[i] = store
		}

		storagePath := viper.GetString("out")
		if _, err := os.Stat(storagePath); err == nil {
			return fmt.Errorf("output file %s already exists", storagePath)
		}

		output, err := db.NewStorageFromPath(storagePath, false)
		if err != nil {
			return err
		}
		defer output.Close()

		return db.Merge(inputs, output)
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringSliceVarP(
		&mergeFiles,
		"file",
		"f",
		[]string{},
		"List of filenames to merge data into",
	)
}
