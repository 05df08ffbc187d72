package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calmloop/inkpress"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile    string
	siteConfig inkpress.SiteConfig
)

var rootCmd = &cobra.Command{
	Use:   "inkpress",
	Short: "A static blog publishing engine for front-matter Markdown",
	Long: `inkpress turns a directory of Markdown documents with YAML front
matter (layout, title, permalink) into a static HTML site, checks the
content-level invariants, and serves it locally with live rebuilds.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the inkpress version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("inkpress %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./inkpress.yaml)")
	rootCmd.AddCommand(versionCmd)
}

func initializeConfig() error {
	v := viper.New()

	v.SetDefault("title", "Blog")
	v.SetDefault("contentDir", "content")
	v.SetDefault("layoutsDir", "layouts")
	v.SetDefault("staticDir", "static")
	v.SetDefault("outputDir", "public")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("inkpress")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("INKPRESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				return fmt.Errorf("config file %s not found: %w", cfgFile, err)
			}
			// No config file is fine; defaults and env vars apply.
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&siteConfig); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func newEngine() *inkpress.Engine {
	return inkpress.New(siteConfig)
}
