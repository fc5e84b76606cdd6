package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/snowmapper/snowmapper/internal/config"
	"github.com/snowmapper/snowmapper/internal/export"
	"github.com/snowmapper/snowmapper/internal/logging"
	"github.com/snowmapper/snowmapper/internal/mapper"
	"github.com/snowmapper/snowmapper/internal/retry"
	"github.com/snowmapper/snowmapper/internal/snowflake"
)

var (
	databases         []string
	outputDir         string
	retries           uint
	retryDelay        uint
	skipFailedTables  bool
	fallbackWarehouse string
	logLevel          string
)

var rootCmd = &cobra.Command{
	Use:   "snowmapper",
	Short: "Fetch and map Snowflake database schemas",
	Long: `snowmapper connects to a Snowflake account, walks the schema catalog of
each accessible (or explicitly listed) database, and writes one JSON file
per database describing its tables and columns.

Connection settings come from the SNOWFLAKE_ACCOUNT, SNOWFLAKE_USERNAME,
SNOWFLAKE_PASSWORD and SNOWFLAKE_WAREHOUSE environment variables, with
SNOWFLAKE_DATABASE and SNOWFLAKE_ROLE optional. A .env file in the working
directory is also read.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	logger, err := logging.Setup(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	session := snowflake.NewSession(cfg, fallbackWarehouse, logger)
	if err := session.Connect(ctx); err != nil {
		return err
	}
	defer session.Close()

	m := mapper.New(
		snowflake.NewCatalog(session, logger),
		export.NewWriter(outputDir),
		mapper.Options{
			Databases:  databases,
			SkipFailed: skipFailedTables,
			Retry: retry.Policy{
				MaxRetries: retries,
				Delay:      time.Duration(retryDelay) * time.Second,
			},
		},
		logger,
	)

	if err := m.Run(ctx); err != nil {
		logger.Error("run failed", zap.Error(err))
		return err
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringSliceVarP(&databases, "databases", "d", nil,
		"Specific databases to process (comma-separated). If not provided, all accessible databases are processed")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "output",
		"Output directory for the JSON files")
	rootCmd.Flags().UintVarP(&retries, "retries", "r", 3,
		"Number of retries for failed operations")
	rootCmd.Flags().UintVar(&retryDelay, "retry-delay", 5,
		"Delay in seconds between retries")
	rootCmd.Flags().BoolVar(&skipFailedTables, "skip-failed-tables", false,
		"Skip databases that fail to process instead of aborting")
	rootCmd.Flags().StringVar(&fallbackWarehouse, "fallback-warehouse", snowflake.DefaultFallbackWarehouse,
		"Warehouse to activate when the configured one is not found")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
}
