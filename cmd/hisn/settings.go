package hisn

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

var settingsJSON bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change app settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			values, err := service.ListSettings(sqldb)
			if err != nil {
				return err
			}
			if settingsJSON {
				return printJSON(cmd.OutOrStdout(), values)
			}
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, values[k])
			}
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting value",
	Long:  "Set a setting value. Prayer offsets use `hisn prayer adjust`, location uses `hisn location`.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetSetting(sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	settingsShowCmd.Flags().BoolVar(&settingsJSON, "json", false, "Output as JSON")
}
