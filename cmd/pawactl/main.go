// Command pawactl seeds the database and exercises the booking API from a
// terminal.
package main

import (
	"fmt"
	"os"

	"pawatasty/internal/config"
	"pawatasty/internal/repositories"
	"pawatasty/internal/repositories/cache"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pawactl",
		Short:         "PawaTasty operations: seed data and book deal slots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
		},
	}

	root.AddCommand(newUserCmd())
	root.AddCommand(newMerchantCmd())
	root.AddCommand(newHoursCmd())
	root.AddCommand(newDealCmd())
	root.AddCommand(newPromoCmd())
	root.AddCommand(newBookCmd())

	return root
}

// openStore connects to Postgres and Redis with the environment's config.
// The returned func releases both.
func openStore() (*config.Config, *gorm.DB, *cache.CacheService, func(), error) {
	cfg := config.Load()
	db, cacheService, err := repositories.InitDB(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return cfg, db, cacheService, func() { repositories.Close(db, cacheService) }, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
