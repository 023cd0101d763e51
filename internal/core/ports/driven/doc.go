// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Generates vectors at build time and query time
//   - VectorIndexConnector / VectorIndex: Embedding collection (Milvus or SQLite)
//   - RecordStoreFactory / RecordStore: Extracted {path, content} tables
//   - LLMService: Chat-completion model
//   - PromptStore: Mode instruction templates
//   - ConfigStore: Application configuration
//   - CredentialProvider: Model API key resolution
//   - FileReader: Grounding file access
//   - RepositoryFetcher: Hosted repository archive download
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
