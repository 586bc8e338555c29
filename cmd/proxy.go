package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProxyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proxy",
		Short: "Start kubectl proxy and keep it running until interrupted",
		Long: `Starts "kubectl proxy" on the configured port, waits until /readyz and
/livez both answer 200, then blocks until Ctrl+C or until the proxy exits.
The proxy is killed on the way out.`,
		Args: cobra.NoArgs,
		RunE: runProxy,
	}
}

func runProxy(cmd *cobra.Command, args []string) error {
	ctx, cancel := withInterrupt(cmd.Context())
	defer cancel()

	application, err := newApplication(false)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Shutdown()

	h, port, err := application.StartProxy(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "kubectl proxy ready on http://127.0.0.1:%d (pid %d)\n", port, h.PID())
	if kc, err := application.KubeContext(); err == nil {
		fmt.Fprintf(out, "context %s, namespace %s\n", kc.Context, kc.Namespace)
	}

	select {
	case <-ctx.Done():
		return nil
	case <-h.Done():
		return fmt.Errorf("kubectl proxy exited: %v %v", h.ExitErr(), h.Output().Tail(3))
	}
}
