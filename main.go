// main.go
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/project-catalyst/catalyst-loader/config"
	"github.com/project-catalyst/catalyst-loader/database"
	"github.com/project-catalyst/catalyst-loader/services"
	"github.com/project-catalyst/catalyst-loader/sources"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "catalyst-loader",
		Short:         "Push data from Catalyst repositories to the Catalyst database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")

	var pingTable string
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check the connection with a Catalyst database table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(configPath); err != nil {
				return err
			}
			db, err := database.Open(config.AppConfig.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			store := database.NewStore(db)
			count, err := store.CountRows(pingTable)
			if err != nil {
				return err
			}
			log.Printf(">> table %s contains %d records.\n", pingTable, count)
			return nil
		},
	}
	pingCmd.Flags().StringVarP(&pingTable, "table", "t", "", "table name to connect with")
	pingCmd.MarkFlagRequired("table")

	var fundNumber int
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Push one fund's data from the Catalyst repositories to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(configPath); err != nil {
				return err
			}
			db, err := database.Open(config.AppConfig.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			store := database.NewStore(db)
			client := sources.NewClient(config.AppConfig.Sources)
			return services.NewPushService(store, client).PushFundData(fundNumber)
		},
	}
	pushCmd.Flags().IntVarP(&fundNumber, "fund", "f", 0, "Catalyst fund number to push data for")
	pushCmd.MarkFlagRequired("fund")

	rootCmd.AddCommand(pingCmd, pushCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}
