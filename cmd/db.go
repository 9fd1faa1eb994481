package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/webhookx-io/hookdash/db"
	"github.com/webhookx-io/hookdash/db/migrator"
)

var (
	quiet bool
)

func newMigrator() (*migrator.Migrator, func(), error) {
	cfg, err := initConfig(configurationFile)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.NewSqlDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return migrator.New(sqlDB, cfg.Database.Database), func() { _ = sqlDB.Close() }, nil
}

func newDatabaseResetCmd() *cobra.Command {
	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Reset the database",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !prompt(cmd.OutOrStdout(), cmd.InOrStdin(), "Are you sure? This operation is irreversible.") {
					return errors.New("canceled")
				}
			}
			m, closeFn, err := newMigrator()
			if err != nil {
				return err
			}
			defer closeFn()
			if !quiet {
				cmd.Println("resetting database...")
			}
			if err := m.Reset(); err != nil {
				return err
			}
			if !quiet {
				cmd.Println("database successfully reset")
			}
			return nil
		},
	}
	reset.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "yes")
	return reset
}

func newDatabaseCmd() *cobra.Command {

	database := &cobra.Command{
		Use:   "db",
		Short: "Database commands",
		Long:  ``,
	}

	database.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	database.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the migration status",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeFn, err := newMigrator()
			if err != nil {
				return err
			}
			defer closeFn()
			version, dirty, err := m.Status()
			if err != nil {
				return err
			}
			pending, err := m.Pending()
			if err != nil {
				return err
			}
			cmd.Printf("Current version: %d\nDirty: %t\nPending: %t\n", version, dirty, pending)
			return nil
		},
	})

	database.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run any new migrations",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeFn, err := newMigrator()
			if err != nil {
				return err
			}
			defer closeFn()
			if err := m.Up(); err != nil {
				return err
			}
			if !quiet {
				cmd.Println("database is up-to-date")
			}
			return nil
		},
	})

	database.AddCommand(newDatabaseResetCmd())

	return database
}
