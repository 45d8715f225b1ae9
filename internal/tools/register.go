package tools

import "time"

// RegisterAllTools registers every data tool, wrapped with timeout, retry
// and metrics middleware
func RegisterAllTools(registry *Registry, deps Deps) {
	log := deps.logger().With("component", "tool_registration")

	all := []Tool{
		NewGetQuotesTool(deps),
		NewGetTechnicalsTool(deps),
		NewGetPriceLevelsTool(deps),
		NewGetNewsTool(deps),
		NewGetSimilarTool(deps),
		NewGetSearchTool(deps),
		NewGetRecentPostsTool(deps),
	}

	for _, t := range all {
		t = WithRetry(WithTimeout(t, 20*time.Second), 2, 500*time.Millisecond)
		registry.Register(WithMetrics(t))
	}

	log.Debugf("Registered %d tools", len(all))
}
