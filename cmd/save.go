package cmd

import (
	"fmt"
	"os"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/orchestrator"
	"github.com/spf13/cobra"
)

// NewSaveCmd creates the save command
func NewSaveCmd() *cobra.Command {
	var saveDataDir string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save repository metadata into a local snapshot",
		Long: `Save downloads the repository's metadata entity by entity, following
the dependency order, and writes each collection into a checksummed JSON
file under the data directory. A manifest records what was saved.

Per-entity filters (REPOVAULT_ISSUES="1-3 7", REPOVAULT_RELEASES=false, ...)
select what to include.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			return runMode(cmd, c, domain.ModeSave, runOverrides{dataDir: saveDataDir})
		},
	}
	cmd.Flags().StringVar(&saveDataDir, "data-dir", "", "Directory to write the snapshot to (default from config)")
	return cmd
}

// runMode is the shared execution path for save and restore: build the
// run collaborators, execute the plan, print the report, and fail the
// process when any entity type failed.
func runMode(cmd *cobra.Command, c *container, mode domain.Mode, overrides runOverrides) error {
	defer func() { _ = c.log.Sync() }()
	sctx, reg, err := c.buildRun(overrides)
	if err != nil {
		return err
	}
	orch := orchestrator.New(reg, sctx, c.cfg.GithubOwner, c.cfg.GithubRepo, c.log)
	report, err := orch.Run(cmd.Context(), mode)
	if err != nil {
		return err
	}
	orchestrator.PrintReport(os.Stdout, report)
	if report.Failed() {
		return fmt.Errorf("%s finished with failures: %s", mode, report.Summary())
	}
	return nil
}
