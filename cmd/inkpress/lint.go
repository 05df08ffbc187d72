package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calmloop/inkpress/lint"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check content without building",
	Long: `Lint loads every document and reports content-level problems:
missing titles or layouts, layouts that do not exist, duplicate permalinks,
and internal links that resolve to nothing. Exits non-zero if any errors
are found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newEngine()
		docs, err := engine.LoadContent()
		if err != nil {
			return err
		}

		findings := lint.Run(docs, lint.Options{
			LayoutExists: layoutExists(siteConfig.LayoutsDir),
			AssetExists:  assetExists(siteConfig.StaticDir),
		})

		for _, f := range findings {
			fmt.Println(f)
		}
		if lint.HasErrors(findings) {
			return fmt.Errorf("%d problem(s) found in %d document(s)", len(findings), len(docs))
		}
		fmt.Printf("%d document(s), no problems\n", len(docs))
		return nil
	},
}

// layoutExists checks for <layouts>/<name>.html on disk. Lint runs without
// parsing templates, so existence is a file check.
func layoutExists(dir string) func(string) bool {
	return func(name string) bool {
		if !strings.HasSuffix(name, ".html") {
			name += ".html"
		}
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
		return err == nil
	}
}

// assetExists reports whether a site-absolute link maps to a file under the
// static dir. A directory is not a servable asset; the built site 404s it.
func assetExists(staticDir string) func(string) bool {
	return func(urlPath string) bool {
		rel := filepath.FromSlash(strings.TrimPrefix(urlPath, "/"))
		if rel == "" {
			return false
		}
		info, err := os.Stat(filepath.Join(staticDir, rel))
		return err == nil && !info.IsDir()
	}
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
