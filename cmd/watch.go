package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"kubel/internal/process"
)

var watchForce bool

var prefixColors = []lipgloss.Color{"39", "205", "214", "42", "141", "208"}

func newWatchCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "watch RESOURCE...",
		Short: "Watch one or more resource kinds and stream their output",
		Long: `Starts "kubectl get <resource> --watch" for every RESOURCE and interleaves
their output, each line prefixed with the resource kind. Runs until Ctrl+C
or until every poller has exited.`,
		Example: "  kubel watch pods deployments",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runWatch,
	}
	c.Flags().BoolVar(&watchForce, "force", false, "Replace pollers that are already running")
	return c
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := withInterrupt(cmd.Context())
	defer cancel()

	application, err := newApplication(false)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Shutdown()

	out := &prefixWriter{w: cmd.OutOrStdout()}
	var wg sync.WaitGroup
	for i, resource := range args {
		h, err := application.Watch(ctx, resource, watchForce)
		if err != nil {
			return err
		}
		style := lipgloss.NewStyle().Bold(true).Foreground(prefixColors[i%len(prefixColors)])
		prefix := style.Render(fmt.Sprintf("[%s]", h.Name()))

		wg.Add(1)
		go func() {
			defer wg.Done()
			streamOutput(ctx, out, prefix, h)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
	case <-done:
	}
	return nil
}

// prefixWriter serialises lines from several pollers onto one writer.
type prefixWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *prefixWriter) println(prefix, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", prefix, line)
}

// streamOutput copies h's output to out until ctx ends or h exits.
func streamOutput(ctx context.Context, out *prefixWriter, prefix string, h *process.Handle) {
	lines, cancel := h.Output().Follow(256)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			out.println(prefix, line)
		case <-h.Done():
			for {
				select {
				case line, ok := <-lines:
					if !ok {
						return
					}
					out.println(prefix, line)
				default:
					return
				}
			}
		}
	}
}
