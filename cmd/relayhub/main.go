// relayhub is a GitOps-native LLM governance runtime and policy engine.
//
// It acts as an HTTP proxy for LLM API requests, providing:
//   - Policy-based request governance and routing
//   - Multi-provider LLM routing (OpenAI, Anthropic, etc.)
//   - Cryptographic evidence generation for audit trails
//   - Cost tracking and budget enforcement
//   - Content analysis and PII detection
//
// Usage:
//
//	# Start server with default configuration
//	relayhub run
//
//	# Start with custom configuration file
//	relayhub run --config /path/to/config.yaml
//
//	# Show version information
//	relayhub version
//
//	# Validate policy files
//	relayhub lint --file policies.yaml
//
//	# Run policy tests
//	relayhub test --policy policies.yaml --tests policy_tests.yaml
//
//	# Query evidence database
//	relayhub evidence query --time-range "2025-11-19T00:00:00Z/2025-11-20T00:00:00Z"
//
// For complete documentation, see: https://github.com/github.com/relayhub/gateway
package main

func main() {
	Execute()
}
