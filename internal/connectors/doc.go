// Package connectors provides sources of local artifacts for ingestion.
// The filesystem connector scans and watches a directory for files in the
// supported upload formats.
package connectors
