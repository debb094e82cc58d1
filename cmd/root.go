package cmd

import (
	"github.com/compozy/repovault/pkg/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "repovault",
	Version: version.Summary(),
	Short:   "A CLI tool for backing up and restoring GitHub repository metadata",
	Long: `repovault saves the metadata of a GitHub repository (labels, milestones,
issues, comments, sub-issues, pull requests, reviews, releases and the git
history itself) into a local snapshot directory, and restores a snapshot
into a repository.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
