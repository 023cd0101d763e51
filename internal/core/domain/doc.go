// Package domain defines the core business entities for repochat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: A {path, content} pair discovered in an extracted archive
//   - IndexEntry: A vector and its originating path
//   - Mode: The closed set of assistant operating modes
//   - ConversationTurn: One displayed exchange of a chat session
//   - FileEdit: A full-file proposal parsed from a developer response
//   - RepoRef: A hosted repository and ref to download for ingestion
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
