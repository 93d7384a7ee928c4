package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mesalabs/mesa/internal/apiserver"
	"github.com/mesalabs/mesa/internal/apiserver/database"
	"github.com/mesalabs/mesa/internal/auth/jwt"
	"github.com/mesalabs/mesa/internal/common/cnst"
	"github.com/mesalabs/mesa/internal/common/config"
	"github.com/mesalabs/mesa/internal/module"
	"github.com/mesalabs/mesa/internal/module/activation"
	"github.com/mesalabs/mesa/internal/plan"
	"github.com/mesalabs/mesa/pkg/logger"
	"github.com/mesalabs/mesa/pkg/metrics"
	"github.com/mesalabs/mesa/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Mesa API Server",
		Long:  `Mesa API Server provides the multi-tenant platform API`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "configs/apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("Starting apiserver", zap.String("version", version.Get()))

	db, err := database.Open(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	jwtService, err := jwt.NewService(jwt.Config(cfg.JWT))
	if err != nil {
		zapLogger.Fatal("Failed to create JWT service", zap.Error(err))
	}

	registry := module.NewDBRegistry(db)
	activations := activation.NewService(registry, activation.NewDBRepository(db))

	usage, err := newUsageStore(cfg, db)
	if err != nil {
		zapLogger.Fatal("Failed to create usage store", zap.Error(err))
	}
	ledger := plan.NewLedger(plan.NewDBRepository(db), usage)

	if err := apiserver.Seed(context.Background(), db, registry, ledger, zapLogger); err != nil {
		zapLogger.Fatal("Failed to seed database", zap.Error(err))
	}

	router := apiserver.NewRouter(apiserver.Deps{
		DB:          db,
		JWTService:  jwtService,
		Registry:    registry,
		Activations: activations,
		Ledger:      ledger,
		Metrics:     metrics.New(cnst.AppName),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zapLogger.Info("Server starting", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Server exited", zap.Error(err))
	}
}

// newUsageStore picks the usage-counter backend. The database store is
// the default; redis is for deployments with many apiserver replicas.
func newUsageStore(cfg *config.APIServerConfig, db *gorm.DB) (plan.UsageStore, error) {
	switch cfg.Usage.Store {
	case "redis":
		return plan.NewRedisUsageStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
	case "", "database":
		return plan.NewDBUsageStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported usage store: %s", cfg.Usage.Store)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
