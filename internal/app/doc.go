// Package app provides the main application logic for batch-downloading playlist tracks.
// It acquires the state directory lock, loads the download history, initializes the
// catalog client and service components, and orchestrates the download process.
package app
