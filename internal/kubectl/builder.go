// Package kubectl builds the argv for kubel's kubectl children and spawns
// them through the process package.
package kubectl

import (
	"fmt"
	"strconv"
	"strings"

	"kubel/internal/config"
	"kubel/internal/process"
)

// Builder turns configuration into kubectl command lines.
type Builder struct {
	Binary     string
	Kubeconfig string
	Context    string
	Namespace  string
}

// NewBuilder creates a builder from the kubectl section of the config.
func NewBuilder(cfg config.KubectlConfig) *Builder {
	binary := cfg.Binary
	if binary == "" {
		binary = config.DefaultKubectlBinary
	}
	return &Builder{
		Binary:     binary,
		Kubeconfig: cfg.Kubeconfig,
		Context:    cfg.Context,
		Namespace:  cfg.Namespace,
	}
}

func (b *Builder) globalFlags() []string {
	var args []string
	if b.Kubeconfig != "" {
		args = append(args, "--kubeconfig", b.Kubeconfig)
	}
	if b.Context != "" {
		args = append(args, "--context", b.Context)
	}
	return args
}

// ProxyCommand returns `<binary> proxy --port <port>`.
func (b *Builder) ProxyCommand(port int) process.Command {
	args := []string{"proxy", "--port", strconv.Itoa(port)}
	args = append(args, b.globalFlags()...)
	return process.Command{Binary: b.Binary, Args: args}
}

// PollCommand returns `<binary> get <resource> --watch` scoped to the
// configured namespace.
func (b *Builder) PollCommand(resource string) (process.Command, error) {
	resource = NormalizeResource(resource)
	if resource == "" {
		return process.Command{}, fmt.Errorf("resource name must not be empty")
	}
	args := []string{"get", resource, "--watch"}
	if b.Namespace != "" {
		args = append(args, "--namespace", b.Namespace)
	}
	args = append(args, b.globalFlags()...)
	return process.Command{Binary: b.Binary, Args: args}, nil
}

// NormalizeResource canonicalises a resource-kind name used as a ledger key.
func NormalizeResource(resource string) string {
	return strings.ToLower(strings.TrimSpace(resource))
}
