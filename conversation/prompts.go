package conversation

import "github.com/tmc/langchaingo/prompts"

const condenseTemplate = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question.

Chat History:
{{.chat_history}}
Follow Up Input: {{.question}}
Standalone question:`

const qaTemplate = `You are a helpful AI assistant. Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say you don't know. DO NOT try to make up an answer.
If the question is not related to the context, politely respond that you are tuned to only answer questions that are related to the context.

{{.context}}

Question: {{.question}}
Helpful answer in markdown format:`

// CondensePrompt rewrites a follow-up question. Variables: chat_history, question.
var CondensePrompt = prompts.NewPromptTemplate(condenseTemplate, []string{"chat_history", "question"})

// QAPrompt answers a question from retrieved context. Variables: context, question.
var QAPrompt = prompts.NewPromptTemplate(qaTemplate, []string{"context", "question"})
