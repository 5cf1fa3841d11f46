// Package cli provides the kbsync command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
	"github.com/custodia-labs/kbsync/internal/logger"
)

// version is set at build time.
var version = "dev"

// HealthChecker reports backend health.
type HealthChecker interface {
	Health(ctx context.Context) (*domain.HealthStatus, error)
}

// Scheduler runs background tasks until stopped.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
	OnResult(fn func(domain.TaskResult))
}

// Runner is a blocking background loop.
type Runner interface {
	Run(ctx context.Context) error
}

// Services holds the ports the commands call.
type Services struct {
	Synchronizer  driving.DocumentSynchronizer
	Query         driving.QueryController
	Upload        driving.UploadPipeline
	Session       driving.SessionService
	Categories    driving.CategoryService
	Health        HealthChecker
	Scheduler     Scheduler
	ConfigWatcher Runner
}

// GlobalOptions are the persistent flags.
type GlobalOptions struct {
	Verbose   bool
	ConfigDir string
}

// Initializer builds the services once flags are parsed. The returned
// cleanup runs after the command finishes.
type Initializer func(ctx context.Context, opts GlobalOptions) (Services, func(), error)

var (
	synchronizer    driving.DocumentSynchronizer
	queryController driving.QueryController
	uploadPipeline  driving.UploadPipeline
	sessionService  driving.SessionService
	categoryService driving.CategoryService
	healthChecker   HealthChecker
	scheduler       Scheduler
	configWatcher   Runner
)

var (
	globalOpts  GlobalOptions
	initializer Initializer
	teardown    func()
)

var rootCmd = &cobra.Command{
	Use:   "kbsync",
	Short: "Keep a knowledge base in sync and ask it questions",
	Long: `kbsync is a client for a knowledge backend. It keeps a local view of
the ingested documents, uploads new files and streams answers to
questions asked against the knowledge base.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if teardown != nil {
			teardown()
			teardown = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "Print debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigDir, "config-dir", "", "Configuration directory (default ~/.kbsync)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetInitializer registers the function that wires services before a command runs.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetServices installs services directly.
func SetServices(s Services) {
	synchronizer = s.Synchronizer
	queryController = s.Query
	uploadPipeline = s.Upload
	sessionService = s.Session
	categoryService = s.Categories
	healthChecker = s.Health
	scheduler = s.Scheduler
	configWatcher = s.ConfigWatcher
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	if globalOpts.Verbose {
		logger.SetVerbose(true)
	}
	if initializer == nil {
		return nil
	}

	services, done, err := initializer(cmd.Context(), globalOpts)
	if err != nil {
		return err
	}
	SetServices(services)
	teardown = done
	return nil
}

// explain adds a hint to errors the user can act on.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAuthRequired):
		return fmt.Errorf("%w: session expired, run 'kbsync login'", err)
	case errors.Is(err, domain.ErrUnreachable):
		return fmt.Errorf("%w: check api.base_url or KBSYNC_API_URL", err)
	default:
		return err
	}
}
