package chat

import (
	"context"
	"errors"
	"fmt"

	"ragchat/internal/llm"
	"ragchat/internal/logging"
	"ragchat/internal/retrieval"
)

// ErrSessionNotFound is returned when a chat call references a session
// id that was never created.
var ErrSessionNotFound = errors.New("session not found. Create a new session first")

// ExternalError marks a retriever or model failure. The turn it
// occurred in is aborted without recording anything.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// TakeoverNotice accompanies answers produced after a farewell-closed
// session was replaced with a fresh one.
const TakeoverNotice = "Previous conversation was closed. Created a new session."

// ChatResult is the outcome of one conversational turn.
type ChatResult struct {
	Answer       string
	Citations    []retrieval.Citation
	NewSessionID string
	Notice       string
}

// Responder is the answer orchestrator. One state machine serves both
// groundings; they differ only in the retriever consulted, the prompt
// template and how citations are rendered.
type Responder struct {
	Store       *Store
	Condenser   *Condenser
	Provider    llm.Provider
	Model       string
	Temperature float32
	Documents   retrieval.Retriever
	Wikipedia   retrieval.Retriever
}

// DocumentChat answers a question grounded in the uploaded document
// index. The session must already exist.
func (r *Responder) DocumentChat(ctx context.Context, sessionID, question string) (*ChatResult, error) {
	if !r.Store.Exists(sessionID) {
		return nil, ErrSessionNotFound
	}
	return r.chat(ctx, sessionID, question, r.Documents, false)
}

// WikipediaChat answers a question grounded in Wikipedia. The session
// is created on first reference.
func (r *Responder) WikipediaChat(ctx context.Context, sessionID, question string) (*ChatResult, error) {
	r.Store.Create(sessionID)
	return r.chat(ctx, sessionID, question, r.Wikipedia, true)
}

func (r *Responder) chat(ctx context.Context, sessionID, question string, retriever retrieval.Retriever, wiki bool) (*ChatResult, error) {
	// A session that already said goodbye is closed; redirect the
	// conversation to a fresh one and tell the caller its id.
	var newID string
	if r.Store.IsFarewell(sessionID) {
		newID = NewSessionID()
		r.Store.Create(newID)
		sessionID = newID
	}

	result, err := r.respond(ctx, sessionID, question, retriever, wiki)
	if err != nil {
		return nil, err
	}
	result.NewSessionID = newID
	if newID != "" {
		result.Notice = TakeoverNotice
	}
	return result, nil
}

func (r *Responder) respond(ctx context.Context, sessionID, question string, retriever retrieval.Retriever, wiki bool) (*ChatResult, error) {
	intent := Classify(question)

	switch intent {
	case IntentGreeting:
		answer := GreetingResponse(question)
		r.Store.AddInteraction(sessionID, question, answer, "", nil, nil)
		return &ChatResult{Answer: answer, Citations: []retrieval.Citation{}}, nil
	case IntentFarewell:
		r.Store.AddInteraction(sessionID, question, FarewellResponse, "", nil, nil)
		r.Store.MarkFarewell(sessionID)
		return &ChatResult{Answer: FarewellResponse, Citations: []retrieval.Citation{}}, nil
	}

	history := r.Store.History(sessionID)
	query := question
	historySummary := ""
	if len(history) > 0 {
		if intent == IntentFollowUp {
			reformulated, err := r.Condenser.Reformulate(ctx, question, history)
			if err != nil {
				return nil, &ExternalError{Op: "reformulate", Err: err}
			}
			logging.Debugf("reformulated %q into %q", question, reformulated)
			query = reformulated
		}
		summary, err := r.Condenser.Summarize(ctx, history)
		if err != nil {
			return nil, &ExternalError{Op: "summarize", Err: err}
		}
		historySummary = summary
	}

	retrieved, err := retriever.Retrieve(ctx, query)
	if err != nil {
		if errors.Is(err, retrieval.ErrNoIndex) {
			return nil, err
		}
		return nil, &ExternalError{Op: "retrieve", Err: err}
	}
	contextText := retrieved.Format()

	var prompt string
	if wiki {
		prompt = ChatWikiPrompt(historySummary, contextText, question)
	} else {
		prompt = ChatRAGPrompt(historySummary, contextText, question)
	}

	var out llm.AnswerOutput
	err = llm.CompleteJSON(ctx, r.Provider, llm.CompletionRequest{
		Model: r.Model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: r.Temperature,
	}, &out)
	if err != nil {
		return nil, &ExternalError{Op: "answer", Err: err}
	}

	// Citation ids index this call's retrieval result only; resolve
	// them now, before another retrieval can replace the result set.
	var citations []retrieval.Citation
	if wiki {
		citations = retrieval.ResolveWikiCitations(out.Citations, retrieved)
	} else {
		citations = retrieval.ResolveCitations(out.Citations, retrieved)
	}

	r.Store.AddInteraction(sessionID, question, out.Answer, contextText, out.Citations, citations)
	return &ChatResult{Answer: out.Answer, Citations: citations}, nil
}

// Answer handles a one-off question grounded in the document index,
// with no session context.
func (r *Responder) Answer(ctx context.Context, question string) (*ChatResult, error) {
	retrieved, err := r.Documents.Retrieve(ctx, question)
	if err != nil {
		if errors.Is(err, retrieval.ErrNoIndex) {
			return nil, err
		}
		return nil, &ExternalError{Op: "retrieve", Err: err}
	}
	contextText := retrieved.Format()

	var out llm.AnswerOutput
	err = llm.CompleteJSON(ctx, r.Provider, llm.CompletionRequest{
		Model: r.Model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: RAGPrompt(contextText, question)},
		},
		Temperature: r.Temperature,
	}, &out)
	if err != nil {
		return nil, &ExternalError{Op: "answer", Err: err}
	}

	return &ChatResult{
		Answer:    out.Answer,
		Citations: retrieval.ResolveCitations(out.Citations, retrieved),
	}, nil
}

// Describe returns a short description of the responder's model setup
// for startup logging.
func (r *Responder) Describe() string {
	return fmt.Sprintf("provider=%s model=%s", r.Provider.Name(), r.Model)
}
