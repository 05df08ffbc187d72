package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/calmloop/inkpress"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build, serve locally, and rebuild on change",
	Long: `Serve performs an initial build, starts a local web server for the
output directory, and watches the content, layouts, and static directories,
rebuilding whenever something changes. Drafts are browsable under /drafts/
without ever entering the built output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			siteConfig.Addr = serveAddr
		}
		engine := newEngine()
		server := inkpress.NewDevServer(engine)
		log.Printf("serving %s on %s", siteConfig.OutputDir, engine.Config.Addr)
		return server.Start()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default :1414)")
	rootCmd.AddCommand(serveCmd)
}
