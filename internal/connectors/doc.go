// Package connectors holds clients for remote code hosts. Each connector
// implements a driven port so ingestion can pull sources from outside the
// local filesystem.
package connectors
