package loadbalancer

import (
	"os"
	"strings"
	"sync"
)

// LoadBalancer hands out service targets round-robin. Most deployments run a
// single replica per service; the balancer then always returns that one
// target.
type LoadBalancer struct {
	targets []string
	mu      sync.Mutex
	current int
}

func New(targets []string) *LoadBalancer {
	return &LoadBalancer{targets: targets}
}

// FromEnv reads a comma-separated replica list from the named env var,
// falling back to the given default target.
func FromEnv(envVar, fallback string) *LoadBalancer {
	raw := os.Getenv(envVar)
	if raw == "" {
		return New([]string{fallback})
	}
	var targets []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		targets = []string{fallback}
	}
	return New(targets)
}

func (lb *LoadBalancer) NextTarget() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	target := lb.targets[lb.current]
	lb.current = (lb.current + 1) % len(lb.targets)
	return target
}
