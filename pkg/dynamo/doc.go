// Package dynamo provides the process-wide DynamoDB client: env-driven
// configuration, a connector that verifies table reachability at startup,
// and a readiness probe for health checks.
//
// The client is constructed once at process start and injected into the
// storage layer; nothing in this package keeps global state.
package dynamo
