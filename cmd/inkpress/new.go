package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/calmloop/inkpress"
	"github.com/calmloop/inkpress/scaffold"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new site or post",
}

var newSiteCmd = &cobra.Command{
	Use:   "site <name>",
	Short: "Scaffold a starter site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNewSite(args[0])
	},
}

var newPostCmd = &cobra.Command{
	Use:   "post <title>",
	Short: "Create a post with front matter filled in",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNewPost(strings.Join(args, " "))
	},
}

// siteData holds the template variables passed to scaffold templates.
type siteData struct {
	SiteName string
}

func runNewSite(name string) error {
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("directory %q already exists", name)
	}

	data := siteData{SiteName: toTitle(name)}
	fmt.Printf("Creating new inkpress site: %s\n\n", name)

	root := "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := filepath.Join(name, relPath)

		// gitignore ships undotted so the scaffold tree itself stays visible.
		if filepath.Base(outPath) == "gitignore" {
			outPath = filepath.Join(filepath.Dir(outPath), ".gitignore")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		src, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		// Only .tmpl files are templates; layouts contain their own
		// template syntax and must be copied verbatim.
		if strings.HasSuffix(outPath, ".tmpl") {
			outPath = strings.TrimSuffix(outPath, ".tmpl")
			tmpl, err := template.New(filepath.Base(path)).Parse(string(src))
			if err != nil {
				return fmt.Errorf("parse template %s: %w", path, err)
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			defer f.Close()
			if err := tmpl.Execute(f, data); err != nil {
				return fmt.Errorf("execute template %s: %w", path, err)
			}
		} else {
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(outPath, src, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
		}

		fmt.Printf("  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  cd %s\n", name)
	fmt.Println("  inkpress serve")
	fmt.Println()
	return nil
}

// postFrontMatter is the YAML shape written into a new post.
type postFrontMatter struct {
	Title   string   `yaml:"title"`
	Layout  string   `yaml:"layout"`
	Date    string   `yaml:"date"`
	Tags    []string `yaml:"tags"`
	Summary string   `yaml:"summary"`
	Draft   bool     `yaml:"draft"`
}

func runNewPost(title string) error {
	slug := inkpress.Slugify(title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", title)
	}
	path := filepath.Join(siteConfig.ContentDir, "posts", slug+".md")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	fm, err := yaml.Marshal(postFrontMatter{
		Title:  title,
		Layout: "post",
		Date:   time.Now().Format("2006-01-02"),
		Tags:   []string{},
		Draft:  true,
	})
	if err != nil {
		return fmt.Errorf("marshal front matter: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	body := "---\n" + string(fm) + "---\n\nWrite here.\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("Created %s (draft)\n", path)
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func init() {
	newCmd.AddCommand(newSiteCmd)
	newCmd.AddCommand(newPostCmd)
	rootCmd.AddCommand(newCmd)
}
