package kubectl

import (
	"fmt"

	"k8s.io/client-go/tools/clientcmd"
)

// KubeContext is the context/namespace pair kubectl would use by default.
type KubeContext struct {
	Context   string
	Namespace string
}

// CurrentContext reads the active context and its namespace from kubeconfig.
// An empty path uses the standard loading rules (KUBECONFIG, ~/.kube/config).
func CurrentContext(kubeconfig string) (KubeContext, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		loadingRules.ExplicitPath = kubeconfig
	}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{})

	raw, err := clientConfig.RawConfig()
	if err != nil {
		return KubeContext{}, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	if raw.CurrentContext == "" {
		return KubeContext{}, fmt.Errorf("current kubeconfig context is not set")
	}

	namespace, _, err := clientConfig.Namespace()
	if err != nil {
		return KubeContext{}, fmt.Errorf("failed to resolve namespace for context '%s': %w", raw.CurrentContext, err)
	}
	return KubeContext{Context: raw.CurrentContext, Namespace: namespace}, nil
}
