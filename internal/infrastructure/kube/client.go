package kube

import (
	"fmt"
	"time"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/nerrad567/deviceservice/internal/infrastructure/config"
)

// Client holds the REST configuration and dynamic client for one cluster.
type Client struct {
	rest    *rest.Config
	dynamic dynamic.Interface
}

// Connect builds a client for the configured cluster.
//
// No request is sent; reachability is verified later by Store.HealthCheck.
//
// Parameters:
//   - cfg: Kubernetes configuration from config.yaml
//   - version: Application version, reported in the User-Agent header
//
// Returns:
//   - *Client: Client ready to build a Store
//   - error: If no usable cluster configuration was found
func Connect(cfg config.KubernetesConfig, version string) (*Client, error) {
	restCfg, err := loadRESTConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading kubernetes config: %w", err)
	}

	if cfg.QPS > 0 {
		restCfg.QPS = cfg.QPS
	}
	if cfg.Burst > 0 {
		restCfg.Burst = cfg.Burst
	}
	if cfg.Timeout > 0 {
		restCfg.Timeout = time.Duration(cfg.Timeout) * time.Second
	}
	restCfg.UserAgent = "deviceservice/" + version

	dyn, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("creating dynamic client: %w", err)
	}

	return &Client{rest: restCfg, dynamic: dyn}, nil
}

// loadRESTConfig resolves the cluster configuration.
// An explicit kubeconfig wins; otherwise the in-cluster service account is
// used when present, falling back to ~/.kube/config and $KUBECONFIG.
func loadRESTConfig(cfg config.KubernetesConfig) (*rest.Config, error) {
	overrides := &clientcmd.ConfigOverrides{CurrentContext: cfg.Context}

	if cfg.Kubeconfig != "" {
		rules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: cfg.Kubeconfig}
		return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	}

	if restCfg, err := rest.InClusterConfig(); err == nil {
		return restCfg, nil
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
}

// Dynamic returns the dynamic client.
func (c *Client) Dynamic() dynamic.Interface {
	return c.dynamic
}

// Host returns the API server URL, for logging.
func (c *Client) Host() string {
	return c.rest.Host
}
