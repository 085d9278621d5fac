// Package store provides the vector index behind the assistant: a shared
// chunk model, a Milvus-backed implementation for production, and an
// in-memory implementation for tests and single-node deployments.
package store
