// Database management commands: schema migrations and sample data.
package main

import (
	"fmt"
	"os"

	"restlab/config"
	"restlab/dao/query"
	"restlab/logutils"
	"restlab/util"

	"github.com/spf13/cobra"
	"gorm.io/gen"
	"gorm.io/gorm"
)

var (
	configPath string
	genOut     string
)

var rootCmd = &cobra.Command{
	Use:   "manage",
	Short: "manage prepares the restlab database.",
	Long: `manage runs schema migrations and loads or removes the sample data
shipped with the server.`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply every pending migration",
	RunE: withDB(func(db *gorm.DB) error {
		if err := query.Migrate(db); err != nil {
			return err
		}
		logutils.Log.Info("database migrated")
		return nil
	}),
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll back the last applied migration",
	RunE: withDB(func(db *gorm.DB) error {
		if err := query.RollbackLast(db); err != nil {
			return err
		}
		logutils.Log.Info("last migration rolled back")
		return nil
	}),
}

var addDataCmd = &cobra.Command{
	Use:   "add-data",
	Short: "Insert the sample landlords, flats, books, movies and customers",
	RunE: withDB(func(db *gorm.DB) error {
		if err := query.Migrate(db); err != nil {
			return err
		}
		if err := query.AddSampleData(db); err != nil {
			return err
		}
		logutils.Log.Info("data has been successfully added to database")
		return nil
	}),
}

var removeDataCmd = &cobra.Command{
	Use:   "remove-data",
	Short: "Delete every row from the application tables",
	RunE: withDB(func(db *gorm.DB) error {
		if err := query.RemoveData(db); err != nil {
			return err
		}
		logutils.Log.Info("data has been successfully removed from database")
		return nil
	}),
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate typed CRUD query code for every model",
	RunE: withDB(func(db *gorm.DB) error {
		g := gen.NewGenerator(gen.Config{
			OutPath: genOut,
			// WithDefaultQuery adds a global Q, WithQueryInterface the Querier interfaces
			Mode: gen.WithDefaultQuery | gen.WithQueryInterface,
		})
		g.UseDB(db)
		g.ApplyBasic(query.Models()...)
		g.Execute()
		logutils.Log.Infof("query code generated in %s", genOut)
		return nil
	}),
}

// withDB loads the config and opens the database before running fn.
func withDB(fn func(db *gorm.DB) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		config.SetConfig(cfg)
		if err := cfg.ConfigureLogging(); err != nil {
			return err
		}
		util.PasswordCost = cfg.Auth.BcryptCost

		db, err := query.Open(cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		return fn(db)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./etc/config.yaml)")
	genCmd.Flags().StringVarP(&genOut, "out", "o", "./dao/gen", "output directory of the generated package")
	rootCmd.AddCommand(migrateCmd, rollbackCmd, addDataCmd, removeDataCmd, genCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
