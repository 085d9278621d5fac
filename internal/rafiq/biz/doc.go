// Package biz holds the assistant's business logic.
//
// The core is a prioritized response chain: an FAQ matcher, the retrieval
// engine, a TF-IDF lexical fallback, a direct model fallback, a pattern
// matcher and a terminal department template. The Engine owns the vector
// index lifecycle; the Assistant wires the chain to the answer cache and
// the worker pool.
package biz
