package openai

import "fmt"

// answerPromptTemplate is the grounding contract for answer generation: the
// model must answer only from the supplied context and admit when the
// context does not contain the answer. Changing this wording changes the
// system's hallucination-avoidance behavior, so treat it as an interface,
// not copy.
const answerPromptTemplate = `You are an expert assistant. You must answer the user's question
based *only* on the following context.
If the context does not contain the answer, state that you don't know.
Do not use any information outside of this context.

CONTEXT:
%s

USER'S QUESTION:
%s

ANSWER:
`

// buildAnswerPrompt formats the answer prompt with the retrieved context and
// the user's question. An empty context is passed through as-is; the model
// is expected to state it does not know.
func buildAnswerPrompt(query, context string) string {
	return fmt.Sprintf(answerPromptTemplate, context, query)
}
