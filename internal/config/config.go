package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/compozy/repovault/internal/domain"
	"github.com/spf13/viper"
)

type Config struct {
	GithubToken string `mapstructure:"github_token"`
	GithubOwner string `mapstructure:"github_owner"`
	GithubRepo  string `mapstructure:"github_repo"`
	DataDir     string `mapstructure:"data_dir"`

	// ConflictStrategy selects how restore treats pre-existing target
	// data for unique-keyed entities (labels).
	ConflictStrategy string `mapstructure:"conflict_strategy"`

	// PreserveMetadata prefixes restored bodies with an attribution
	// line naming the original author and timestamp.
	PreserveMetadata bool `mapstructure:"preserve_metadata"`

	// Per-entity selective filters: "true", "false", or a number/range
	// list such as "1-3 7 10-11".
	Labels        string `mapstructure:"labels"`
	Milestones    string `mapstructure:"milestones"`
	GitRepository string `mapstructure:"git_repository"`
	Issues        string `mapstructure:"issues"`
	IssueComments string `mapstructure:"issue_comments"`
	SubIssues     string `mapstructure:"sub_issues"`
	PullRequests  string `mapstructure:"pull_requests"`
	Reviews       string `mapstructure:"reviews"`
	Releases      string `mapstructure:"releases"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DataDir:          "./backup",
		ConflictStrategy: "fail-if-conflict",
		Labels:           "true",
		Milestones:       "true",
		GitRepository:    "true",
		Issues:           "true",
		IssueComments:    "true",
		SubIssues:        "true",
		PullRequests:     "true",
		Reviews:          "true",
		Releases:         "true",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.GithubToken != "" {
		if err := ValidateGitHubToken(c.GithubToken); err != nil {
			return fmt.Errorf("invalid github_token: %w", err)
		}
	}
	if err := ValidateGitHubOwnerRepo(c.GithubOwner, c.GithubRepo); err != nil {
		return fmt.Errorf("invalid github configuration: %w", err)
	}
	if c.DataDir == "" {
		return domain.NewConfigurationError("data_dir cannot be empty")
	}
	if strings.Contains(c.DataDir, "..") {
		return domain.NewConfigurationError("data_dir contains invalid path traversal")
	}
	if _, err := c.EntityFilters(); err != nil {
		return err
	}
	return nil
}

// EntityFilters parses every per-entity filter value once.
func (c *Config) EntityFilters() (map[domain.EntityName]Filter, error) {
	raw := map[domain.EntityName]string{
		domain.EntityLabels:        c.Labels,
		domain.EntityMilestones:    c.Milestones,
		domain.EntityGitRepository: c.GitRepository,
		domain.EntityIssues:        c.Issues,
		domain.EntityIssueComments: c.IssueComments,
		domain.EntitySubIssues:     c.SubIssues,
		domain.EntityPullRequests:  c.PullRequests,
		domain.EntityReviews:       c.Reviews,
		domain.EntityReleases:      c.Releases,
	}
	filters := make(map[domain.EntityName]Filter, len(raw))
	for entity, value := range raw {
		filter, err := ParseFilter(value)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", entity, err)
		}
		filters[entity] = filter
	}
	return filters, nil
}

// ValidateGitHubToken validates GitHub token format (exported for reuse).
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	classicPAT := regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	fineGrainedPAT := regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken := regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken := regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
	if !classicPAT.MatchString(token) &&
		!fineGrainedPAT.MatchString(token) &&
		!appToken.MatchString(token) &&
		!oauthToken.MatchString(token) {
		return fmt.Errorf("invalid token format")
	}
	return nil
}

// ValidateGitHubOwnerRepo validates GitHub owner and repository names
// (exported for reuse).
func ValidateGitHubOwnerRepo(owner, repo string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}
	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)
	if !validName.MatchString(owner) {
		return fmt.Errorf("invalid owner format: %s", owner)
	}
	if len(owner) > 39 {
		return fmt.Errorf("owner too long: maximum 39 characters")
	}
	if !validName.MatchString(repo) {
		return fmt.Errorf("invalid repository format: %s", repo)
	}
	if len(repo) > 100 {
		return fmt.Errorf("repository too long: maximum 100 characters")
	}
	return nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".repovault")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("REPOVAULT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// BindEnv allows multiple env vars - it will check them in order
	bindings := map[string][]string{
		"github_token":      {"GITHUB_TOKEN", "REPOVAULT_GITHUB_TOKEN"},
		"github_owner":      {"GITHUB_OWNER", "REPOVAULT_GITHUB_OWNER"},
		"github_repo":       {"GITHUB_REPO", "REPOVAULT_GITHUB_REPO"},
		"data_dir":          {"REPOVAULT_DATA_DIR"},
		"conflict_strategy": {"REPOVAULT_CONFLICT_STRATEGY"},
		"preserve_metadata": {"REPOVAULT_PRESERVE_METADATA"},
		"labels":            {"REPOVAULT_LABELS"},
		"milestones":        {"REPOVAULT_MILESTONES"},
		"git_repository":    {"REPOVAULT_GIT_REPOSITORY"},
		"issues":            {"REPOVAULT_ISSUES"},
		"issue_comments":    {"REPOVAULT_ISSUE_COMMENTS"},
		"sub_issues":        {"REPOVAULT_SUB_ISSUES"},
		"pull_requests":     {"REPOVAULT_PULL_REQUESTS"},
		"reviews":           {"REPOVAULT_REVIEWS"},
		"releases":          {"REPOVAULT_RELEASES"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := viper.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind %s env: %w", key, err)
		}
	}
	defaults := DefaultConfig()
	viper.SetDefault("data_dir", defaults.DataDir)
	viper.SetDefault("conflict_strategy", defaults.ConflictStrategy)
	viper.SetDefault("labels", defaults.Labels)
	viper.SetDefault("milestones", defaults.Milestones)
	viper.SetDefault("git_repository", defaults.GitRepository)
	viper.SetDefault("issues", defaults.Issues)
	viper.SetDefault("issue_comments", defaults.IssueComments)
	viper.SetDefault("sub_issues", defaults.SubIssues)
	viper.SetDefault("pull_requests", defaults.PullRequests)
	viper.SetDefault("reviews", defaults.Reviews)
	viper.SetDefault("releases", defaults.Releases)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
