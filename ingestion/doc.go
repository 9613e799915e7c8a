// Package ingestion provides pipeline orchestration for loading catalog documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Validating and adding documents to storage
//   - Generating embeddings asynchronously in batches
//
// Embedding is performed concurrently using a worker pool to maximize
// throughput. Wait joins the submitted batches and reports their errors;
// Release frees the pool.
package ingestion
