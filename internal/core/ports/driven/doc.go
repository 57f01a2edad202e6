// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ProjectStore: Project registration persistence
//   - SnapshotStore: Immutable snapshot persistence
//   - RiskCacheStore: Memoised risk classifications (SQLite, memory or Redis)
//   - SummaryStore: Executive summary audit trail
//   - Normaliser: Extracts text from one document format
//   - NormaliserRegistry: Selects appropriate normaliser
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Language model operations. Without it, extraction, LLM
//     classification and summaries are disabled and the rule classifier is used.
//   - PromptStore: Customisable prompt templates. Without it, built-in defaults apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
