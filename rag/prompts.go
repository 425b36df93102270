package rag

// Prompts used by the engine. The QA pair anchors answers to retrieved
// context; the rest cover the auxiliary LLM operations.
const (
	qaSystemPrompt = `You are a helpful assistant that answers questions based on provided context.
Always use the context provided to answer the question accurately.
If the context doesn't contain relevant information, say so clearly.
Provide clear, concise, and accurate answers.`

	qaUserTemplate = `Context:
%s

Question: %s

Based on the context above, please answer the question.`

	summarySystemPrompt = "You are a helpful assistant that creates concise summaries."

	summaryUserTemplate = "Please provide a concise summary of the following text:\n\n%s"

	rephraseSystemPrompt = "You are a helpful assistant that rephrases questions to be clearer and more specific for document retrieval."

	rephraseUserTemplate = "Rephrase the following question to make it clearer and more specific:\n%s"

	keywordsSystemPrompt = "Extract the main keywords from the text and return them as a comma-separated list."
)

// noContextMessage is returned by RetrieveContext when the store yields
// no usable hits.
const noContextMessage = "No relevant context found."
