package cmd

import (
	"context"
	"fmt"

	"katalog/internal/database"
	"katalog/internal/importer"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"
	"katalog/internal/validation"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newImportCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Validate every record in a file, then store them all",
		Long: `Validates every record first. If any record is invalid nothing is stored; otherwise each record is saved in order
inside a single transaction, so a storage error on any record rolls back the whole import.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			products, err := importer.Load(path)
			if err != nil {
				return err
			}

			report := validation.New().ValidateAll(products)
			if !report.Valid() {
				if err := printReports(cmd.OutOrStdout(), rt.output, []fileReport{{File: path, Results: report.Results}}); err != nil {
					return err
				}
				cmd.SilenceUsage = true
				return errInvalidRecords
			}

			db, err := database.Open(rt.cfg.DatabaseDriver, rt.cfg.DatabaseDSN, rt.gormLogLevel())
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := importProducts(cmd.Context(), db, products, rt.log); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products from %s\n", len(products), path)
			return nil
		},
	}
}

// importProducts saves products in order within one transaction; the first
// failure rolls back every record saved before it.
func importProducts(ctx context.Context, db *gorm.DB, products []models.Product, log zerolog.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		service := services.NewProductService(repositories.NewGORMProductRepository(tx))
		for i := range products {
			saved, err := service.Save(ctx, &products[i])
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			log.Debug().Int64("product_id", saved.ID).Int("record", i).Msg("product imported")
		}
		return nil
	})
}
