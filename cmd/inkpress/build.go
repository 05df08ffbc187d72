package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/calmloop/inkpress"
)

var (
	buildDrafts bool
	buildForce  bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the static site",
	Long: `Build reads Markdown documents from the content directory, lints
them, renders each through its layout, copies static assets, and writes
sitemap.xml, feed.xml, and robots.txt to the output directory. Pages whose
inputs are unchanged since the last build are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newEngine()
		result, err := engine.Build(inkpress.BuildOptions{
			Drafts: buildDrafts,
			Force:  buildForce,
		})
		if err != nil {
			return err
		}
		log.Printf("built %d page(s), skipped %d, removed %d in %s",
			result.PagesBuilt, result.PagesSkipped, result.PagesRemoved, result.Duration.Round(time.Millisecond))
		fmt.Printf("Site written to %s\n", siteConfig.OutputDir)
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildDrafts, "drafts", false, "include draft documents")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "rebuild every page, ignoring the build index")
	rootCmd.AddCommand(buildCmd)
}
