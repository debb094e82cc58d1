package cmd

import (
	"github.com/compozy/repovault/internal/domain"
	"github.com/spf13/cobra"
)

// NewRestoreCmd creates the restore command
func NewRestoreCmd() *cobra.Command {
	var (
		restoreDataDir          string
		restoreConflicts        string
		restorePreserveMetadata bool
	)
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore a snapshot into a repository",
		Long: `Restore replays a saved snapshot into the configured repository in
dependency order: labels and milestones first, then issues, then the
entities that reference them. Restored items receive new identifiers;
cross-references (issue comments, sub-issue links, review comments) are
remapped onto the newly created items.

The conflict strategy decides what happens when the target already
contains data: fail-if-existing, fail-if-conflict, overwrite, skip, or
delete-all.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			overrides := runOverrides{
				dataDir:   restoreDataDir,
				conflicts: restoreConflicts,
			}
			if cmd.Flags().Changed("preserve-metadata") {
				overrides.preserveMetadata = &restorePreserveMetadata
			}
			return runMode(cmd, c, domain.ModeRestore, overrides)
		},
	}
	cmd.Flags().StringVar(&restoreDataDir, "data-dir", "", "Directory to read the snapshot from (default from config)")
	cmd.Flags().StringVar(&restoreConflicts, "conflicts", "",
		"Conflict strategy: fail-if-existing, fail-if-conflict, overwrite, skip, delete-all")
	cmd.Flags().BoolVar(&restorePreserveMetadata, "preserve-metadata", false,
		"Prefix restored bodies with original author and timestamp")
	return cmd
}
