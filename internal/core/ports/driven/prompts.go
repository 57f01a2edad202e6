package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptExtractSnapshot turns report text into snapshot JSON.
	// The prompt template expects a single %s placeholder for the report text.
	PromptExtractSnapshot = "extract_snapshot"

	// PromptClassifyRisks asks for a risk classification of a KPI delta.
	// The prompt template expects %s (current KPIs) and %s (KPI delta) placeholders.
	PromptClassifyRisks = "classify_risks"

	// PromptExecutiveSummary writes an executive summary across snapshots.
	// The prompt template expects %s (tone) and %s (snapshot digest) placeholders.
	PromptExecutiveSummary = "executive_summary"

	// PromptInsights lists cross-snapshot trends as bullets.
	// The prompt template expects a single %s placeholder for the snapshot digest.
	PromptInsights = "insights"

	// PromptSuggestRisks proposes new risks not already tracked.
	// The prompt template expects %s (date), %s (current KPIs), %s (KPI delta)
	// and %s (tracked risk names) placeholders.
	PromptSuggestRisks = "suggest_risks"

	// PromptSearch answers a free-text question across stored snapshots.
	// The prompt template expects %s (question) and %s (snapshot digest) placeholders.
	PromptSearch = "search"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
