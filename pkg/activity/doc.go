// Package activity is the process-local registry of in-flight and recently
// completed requests, exposed to the dashboard as an SSE snapshot feed.
package activity
