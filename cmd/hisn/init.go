package hisn

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdel2584/hisn-moslim-3/internal/app"
	"github.com/abdel2584/hisn-moslim-3/internal/config"
	"github.com/abdel2584/hisn-moslim-3/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local hisn database and config",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(path); err != nil {
			return err
		}

		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		if err := db.ApplyMigrations(sqldb); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized hisn database at %s\n", path)

		cfgPath := resolveConfigPath(path)
		wrote, err := config.WriteDefault(cfgPath)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", cfgPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}

func resolveConfigPath(db string) string {
	if configPath != "" {
		return configPath
	}
	return app.ConfigPathFor(db)
}
