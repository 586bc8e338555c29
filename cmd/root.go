package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"kubel/internal/app"
)

var (
	rootDebug      bool
	rootConfigPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kubel",
	Short: "Run kubectl proxy and resource watches on behalf of an editor",
	Long: `kubel keeps one kubectl proxy and one "kubectl get <resource> --watch"
poller per resource kind alive for the current session. The proxy is only
handed out once its /readyz and /livez endpoints answer 200, and every
child is killed quietly when it is released or the session ends.

Use 'kubel serve' to drive a session from an editor over MCP.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. a poller that is already running)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "kubel version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// newApplication builds a session from the persistent flags.
func newApplication(editorMode bool) (*app.Application, error) {
	cfg := app.NewConfig(rootDebug, rootConfigPath)
	cfg.EditorMode = editorMode
	return app.NewApplication(cfg)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Config file (default: ~/.config/kubel/config.yaml then ./.kubel/config.yaml)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newProxyCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
}
