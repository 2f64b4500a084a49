package main

import (
	"fmt"

	"storefront/internal/seed"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories, products and an admin user from a YAML catalog",
	Long: `Reads a catalog file and creates whatever is missing. Existing
categories and products (matched by name) are left untouched, so the
command can be run repeatedly.

Example:
  storefront seed --file catalog.yaml`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "catalog.yaml", "Catalog YAML file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	catalog, err := seed.LoadFile(seedFile)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	conn, err := connectDB(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeDB(conn)

	ucs := newUseCases(cfg, newRepositories(conn))
	res, err := seed.NewSeeder(ucs.products, ucs.categories, ucs.auth, logger).Apply(cmd.Context(), catalog)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "categories created: %d\nproducts created: %d\nproducts skipped: %d\nadmin created: %t\n",
		res.Categories, res.Products, res.Skipped, res.Admin)
	return nil
}
