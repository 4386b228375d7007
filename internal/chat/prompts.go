package chat

import "fmt"

// Answer prompts instruct the model to ground every claim in the
// supplied context and to return a JSON object so the response can be
// decoded into llm.AnswerOutput.

const ragTemplate = `You are an AI assistant that ONLY answers questions based on the provided context.

INSTRUCTIONS:
1. ONLY use information explicitly stated in the source context delimited by triple hashes (###)
2. NEVER use your external knowledge or information outside the provided context
3. If the context doesn't contain information to answer the question, respond with ONLY:
   "I don't have information about this in the provided documents."
4. DO NOT GUESS or MAKE UP information that isn't explicitly in the context
5. Include citation ids in the answer to verify the information found in the context

Source context:
###%s###

User question: %s

Respond with a JSON object of the form {"answer": "...", "citations": [0, 1]} where citations lists the source ids supporting the answer.
`

const chatRAGTemplate = `You are an AI assistant with memory of previous conversations that ONLY answers based on provided context.

INSTRUCTIONS:
1. ONLY use information explicitly stated in the context below
2. NEVER use your external knowledge or information outside the provided context
3. If the context doesn't contain information to answer the question, respond with ONLY:
   "I don't have information about this in the provided documents."
4. DO NOT GUESS or MAKE UP information that isn't explicitly mentioned in the context
5. Include citation ids in the answer to verify the information is derived from the given context
6. Answer to user question in full sentences, similar to how a human would respond
7. If user asks something based on previous conversation, summarize the history and use it to answer the question

Previous conversation summary:
%s

Source context:
###%s###

The user asked: %s

Respond with a JSON object of the form {"answer": "...", "citations": [0, 1]} where citations lists the source ids supporting the answer.
`

const chatWikiTemplate = `You are an AI assistant with memory of previous conversations that ONLY answers based on provided context.

INSTRUCTIONS:
1. ONLY use information explicitly stated in the context below
2. NEVER use your external knowledge or information outside the provided context
3. If the context doesn't contain information to answer the question, respond with ONLY:
   "I don't have information to answer the question based on the provided context."
4. DO NOT GUESS or MAKE UP information that isn't explicitly mentioned in the context
5. Include citation ids in output to verify the information is derived from the given context
6. Answer to user question in full sentences, similar to how a human would respond

Previous conversation summary:
%s

Source context:
###%s###

The user asked: %s

Respond with a JSON object of the form {"answer": "...", "citations": [0, 1]} where citations lists the source ids supporting the answer.
`

const summarizationTemplate = `Summarize the following conversation history concisely, focusing on key topics and information:

%s

Summary:
`

const reformulationTemplate = `Given the following conversation history and a follow-up question, rewrite the follow-up
as a complete, standalone question that includes all necessary context. Keep the question simple.

Conversation history:
%s

Follow-up question: %s

Respond with a JSON object of the form {"question": "..."} containing the standalone question.
`

// RAGPrompt builds the one-off answer prompt used without session
// context.
func RAGPrompt(contextText, question string) string {
	return fmt.Sprintf(ragTemplate, contextText, question)
}

// ChatRAGPrompt builds the document-grounded conversational prompt.
func ChatRAGPrompt(history, contextText, question string) string {
	return fmt.Sprintf(chatRAGTemplate, history, contextText, question)
}

// ChatWikiPrompt builds the Wikipedia-grounded conversational prompt.
func ChatWikiPrompt(history, contextText, question string) string {
	return fmt.Sprintf(chatWikiTemplate, history, contextText, question)
}

func summarizationPrompt(historyText string) string {
	return fmt.Sprintf(summarizationTemplate, historyText)
}

func reformulationPrompt(historyText, question string) string {
	return fmt.Sprintf(reformulationTemplate, historyText, question)
}
