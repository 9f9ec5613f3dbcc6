package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer asks the model to answer a question from retrieved context.
	// The template expects two %s placeholders: the context, then the question.
	PromptAnswer = "answer"

	// PromptPing is the lightweight connectivity check sent to a model.
	// This prompt has no format placeholders.
	PromptPing = "ping"
)

// DefaultAnswerPrompt is the built-in PromptAnswer template.
const DefaultAnswerPrompt = "Answer the question concisely based on the context below.\n\n" +
	"Context:\n%s\n\nQuestion: %s\n\nAnswer:"

// DefaultPingPrompt is the built-in PromptPing text.
const DefaultPingPrompt = "Respond with 'Ok'"
