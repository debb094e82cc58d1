package cmd

import (
	"fmt"

	"github.com/compozy/repovault/internal/config"
	"github.com/compozy/repovault/internal/conflict"
	"github.com/compozy/repovault/internal/entity"
	"github.com/compozy/repovault/internal/ratelimit"
	"github.com/compozy/repovault/internal/registry"
	"github.com/compozy/repovault/internal/remap"
	"github.com/compozy/repovault/internal/repository"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.

type container struct {
	cfg *config.Config
	log *zap.Logger
}

// runOverrides are the command-line flag values that take precedence
// over the loaded configuration for one invocation.
type runOverrides struct {
	dataDir          string
	conflicts        string
	preserveMetadata *bool
}

// newContainer creates a new container with all the dependencies.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &container{cfg: cfg, log: log}, nil
}

// buildRun assembles the per-run collaborators: the rate-limited GitHub
// repository, the git mirror client, the snapshot store, the strategy
// context and the validated registry.
func (c *container) buildRun(overrides runOverrides) (*strategy.Context, *registry.Registry, error) {
	dataDir := c.cfg.DataDir
	if overrides.dataDir != "" {
		dataDir = overrides.dataDir
	}
	policyName := c.cfg.ConflictStrategy
	if overrides.conflicts != "" {
		policyName = overrides.conflicts
	}
	policy, err := conflict.ParsePolicy(policyName)
	if err != nil {
		return nil, nil, err
	}
	preserve := c.cfg.PreserveMetadata
	if overrides.preserveMetadata != nil {
		preserve = *overrides.preserveMetadata
	}

	filters, err := c.cfg.EntityFilters()
	if err != nil {
		return nil, nil, err
	}

	invoker := ratelimit.New(c.log)
	apiRepo, err := repository.NewGithubRepository(c.cfg.GithubToken, c.cfg.GithubOwner, c.cfg.GithubRepo, invoker)
	if err != nil {
		return nil, nil, err
	}
	store := repository.NewJSONSnapshotRepository(afero.NewOsFs(), dataDir)

	sctx := &strategy.Context{
		API:              apiRepo,
		Git:              repository.NewGitRepository(),
		Store:            store,
		Conflicts:        policy,
		IDs:              remap.NewMap(),
		Filters:          filters,
		PreserveMetadata: preserve,
		RemoteURL:        authenticatedRemoteURL(c.cfg),
		Log:              c.log,
	}

	reg := registry.New()
	for _, descriptor := range entity.Catalog() {
		if err := reg.Register(descriptor); err != nil {
			return nil, nil, err
		}
		reg.SetEnabled(descriptor.Name, filters[descriptor.Name].Enabled())
	}
	if err := reg.Validate(); err != nil {
		return nil, nil, err
	}
	return sctx, reg, nil
}

// authenticatedRemoteURL builds the HTTPS clone/push URL used by the
// git_repository entity. The token never appears in logs or reports.
func authenticatedRemoteURL(cfg *config.Config) string {
	return fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git",
		cfg.GithubToken, cfg.GithubOwner, cfg.GithubRepo)
}

// InitCommands registers all commands. The container itself is built
// lazily when a command runs, so `repovault version` works without any
// GitHub configuration present.
func InitCommands() error {
	rootCmd.AddCommand(NewSaveCmd())
	rootCmd.AddCommand(NewRestoreCmd())
	rootCmd.AddCommand(newVersionCmd())
	return nil
}
