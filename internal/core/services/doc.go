// Package services implements the driving port interfaces.
// IndexerService feeds the index from the document source;
// SearcherService answers hybrid queries and similarity scans.
// All scoring happens here so every store backend ranks identically.
package services
