package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ragchat/internal/retrieval"
)

// fakeRetriever records queries and serves a fixed result.
type fakeRetriever struct {
	result  *retrieval.Result
	err     error
	queries []string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string) (*retrieval.Result, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func docResult() *retrieval.Result {
	return &retrieval.Result{Chunks: []retrieval.Chunk{
		{Content: "Paris is the capital of France.", Source: "france.txt", Page: 1},
		{Content: "France has about 67 million inhabitants.", Source: "france.txt", Page: 2},
	}}
}

func wikiResult() *retrieval.Result {
	return &retrieval.Result{Chunks: []retrieval.Chunk{
		{Content: "Paris is the capital of France.", Source: "France", URL: "https://en.wikipedia.org/wiki/France"},
	}}
}

func newTestResponder(mock *mockProvider, docs, wiki *fakeRetriever) *Responder {
	return &Responder{
		Store:       NewStore(10, 0),
		Condenser:   NewCondenser(mock, "mock-small", 0.2),
		Provider:    mock,
		Model:       "mock-model",
		Temperature: 0.2,
		Documents:   docs,
		Wikipedia:   wiki,
	}
}

func TestGreetingShortCircuit(t *testing.T) {
	mock := &mockProvider{}
	docs := &fakeRetriever{result: docResult()}
	r := newTestResponder(mock, docs, &fakeRetriever{})
	r.Store.Create("s")

	result, err := r.DocumentChat(context.Background(), "s", "hello")
	if err != nil {
		t.Fatalf("DocumentChat() error = %v", err)
	}
	if result.Answer != "Hello! How can I help you with your documents today?" {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Citations) != 0 {
		t.Errorf("greeting carried %d citations", len(result.Citations))
	}
	if got := len(r.Store.History("s")); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
	if len(docs.queries) != 0 || mock.callCount() != 0 {
		t.Errorf("greeting made external calls: retriever=%d llm=%d", len(docs.queries), mock.callCount())
	}
}

func TestFarewellMarksSession(t *testing.T) {
	mock := &mockProvider{}
	r := newTestResponder(mock, &fakeRetriever{result: docResult()}, &fakeRetriever{})
	r.Store.Create("s")

	result, err := r.DocumentChat(context.Background(), "s", "bye")
	if err != nil {
		t.Fatalf("DocumentChat() error = %v", err)
	}
	if result.Answer != FarewellResponse {
		t.Errorf("answer = %q", result.Answer)
	}
	if !r.Store.IsFarewell("s") {
		t.Error("session not marked farewell")
	}
	if mock.callCount() != 0 {
		t.Errorf("farewell made %d model calls", mock.callCount())
	}
}

func TestDocumentChatUnknownSession(t *testing.T) {
	r := newTestResponder(&mockProvider{}, &fakeRetriever{result: docResult()}, &fakeRetriever{})

	_, err := r.DocumentChat(context.Background(), "session_nope", "hello")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestWikipediaChatCreatesSession(t *testing.T) {
	r := newTestResponder(&mockProvider{}, &fakeRetriever{}, &fakeRetriever{result: wikiResult()})

	if _, err := r.WikipediaChat(context.Background(), "session_new1", "hello"); err != nil {
		t.Fatalf("WikipediaChat() error = %v", err)
	}
	if !r.Store.Exists("session_new1") {
		t.Error("session not created on first reference")
	}
}

// Full conversation: greeting, fresh question, short follow-up,
// farewell, then a post-farewell question that takes over a new
// session.
func TestConversationFlow(t *testing.T) {
	mock := &mockProvider{responses: []string{
		`{"answer": "Paris is the capital of France.", "citations": [0]}`,
		`{"question": "What is the population of France?"}`,
		`{"answer": "France has about 67 million inhabitants.", "citations": [0, 1]}`,
	}}
	docs := &fakeRetriever{result: docResult()}
	r := newTestResponder(mock, docs, &fakeRetriever{})
	ctx := context.Background()

	id := NewSessionID()
	r.Store.Create(id)

	// Turn 1: greeting, no external calls.
	if _, err := r.DocumentChat(ctx, id, "hello"); err != nil {
		t.Fatalf("greeting turn: %v", err)
	}
	if mock.callCount() != 0 || len(docs.queries) != 0 {
		t.Fatalf("greeting made external calls")
	}

	// Turn 2: fresh question goes to the retriever verbatim.
	result, err := r.DocumentChat(ctx, id, "What is the capital of France?")
	if err != nil {
		t.Fatalf("fresh question turn: %v", err)
	}
	if len(docs.queries) != 1 || docs.queries[0] != "What is the capital of France?" {
		t.Fatalf("retriever queries = %v", docs.queries)
	}
	if mock.callCount() != 1 {
		t.Fatalf("model calls = %d, want 1 (answer only)", mock.callCount())
	}
	if len(result.Citations) != 1 || result.Citations[0].FileName != "france.txt" {
		t.Fatalf("citations = %+v", result.Citations)
	}
	if got := len(r.Store.History(id)); got != 2 {
		t.Fatalf("history length = %d, want 2", got)
	}

	// Turn 3: two-word follow-up is reformulated before retrieval.
	result, err = r.DocumentChat(ctx, id, "and population?")
	if err != nil {
		t.Fatalf("follow-up turn: %v", err)
	}
	if mock.callCount() != 3 {
		t.Fatalf("model calls = %d, want 3 (reformulate + answer)", mock.callCount())
	}
	if docs.queries[1] != "What is the population of France?" {
		t.Fatalf("retriever got %q, want the reformulated question", docs.queries[1])
	}
	if len(result.Citations) != 2 {
		t.Fatalf("citations = %+v", result.Citations)
	}

	// Turn 4: farewell closes the session.
	if _, err := r.DocumentChat(ctx, id, "bye"); err != nil {
		t.Fatalf("farewell turn: %v", err)
	}
	if !r.Store.IsFarewell(id) {
		t.Fatal("session not marked farewell")
	}

	// Turn 5: the closed session is taken over by a fresh one.
	result, err = r.DocumentChat(ctx, id, "hello")
	if err != nil {
		t.Fatalf("post-farewell turn: %v", err)
	}
	if result.NewSessionID == "" || result.NewSessionID == id {
		t.Fatalf("new session id = %q", result.NewSessionID)
	}
	if result.Notice != TakeoverNotice {
		t.Errorf("notice = %q", result.Notice)
	}
	if !r.Store.IsFarewell(id) {
		t.Error("original session lost its farewell flag")
	}
	if got := len(r.Store.History(result.NewSessionID)); got != 1 {
		t.Errorf("new session history length = %d, want 1", got)
	}
}

func TestFarewellTakeoverOnWikipediaChat(t *testing.T) {
	r := newTestResponder(&mockProvider{}, &fakeRetriever{}, &fakeRetriever{result: wikiResult()})
	r.Store.Create("s")
	r.Store.MarkFarewell("s")

	result, err := r.WikipediaChat(context.Background(), "s", "hello")
	if err != nil {
		t.Fatalf("WikipediaChat() error = %v", err)
	}
	if result.NewSessionID == "" || result.NewSessionID == "s" {
		t.Fatalf("new session id = %q", result.NewSessionID)
	}
}

func TestWikipediaCitationsCarryURLs(t *testing.T) {
	mock := &mockProvider{responses: []string{
		`{"answer": "Paris.", "citations": [0]}`,
	}}
	wiki := &fakeRetriever{result: wikiResult()}
	r := newTestResponder(mock, &fakeRetriever{}, wiki)

	result, err := r.WikipediaChat(context.Background(), "s", "capital of France")
	if err != nil {
		t.Fatalf("WikipediaChat() error = %v", err)
	}
	if len(result.Citations) != 1 {
		t.Fatalf("citations = %+v", result.Citations)
	}
	if result.Citations[0].URL != "https://en.wikipedia.org/wiki/France" {
		t.Errorf("citation url = %q", result.Citations[0].URL)
	}
	if result.Citations[0].FileName != "" {
		t.Errorf("wiki citation carries a file name: %q", result.Citations[0].FileName)
	}
}

// External failures abort the turn atomically: nothing is recorded.
func TestExternalFailureLeavesStoreUntouched(t *testing.T) {
	mock := &mockProvider{err: errors.New("model unavailable")}
	r := newTestResponder(mock, &fakeRetriever{result: docResult()}, &fakeRetriever{})
	r.Store.Create("s")

	_, err := r.DocumentChat(context.Background(), "s", "capital of France")
	var external *ExternalError
	if !errors.As(err, &external) {
		t.Fatalf("error = %v, want ExternalError", err)
	}
	if got := len(r.Store.History("s")); got != 0 {
		t.Errorf("failed turn recorded %d interactions", got)
	}
}

func TestMalformedAnswerAborts(t *testing.T) {
	mock := &mockProvider{responses: []string{"no json here"}}
	r := newTestResponder(mock, &fakeRetriever{result: docResult()}, &fakeRetriever{})
	r.Store.Create("s")

	_, err := r.DocumentChat(context.Background(), "s", "capital of France")
	var external *ExternalError
	if !errors.As(err, &external) {
		t.Fatalf("error = %v, want ExternalError", err)
	}
	if got := len(r.Store.History("s")); got != 0 {
		t.Errorf("failed turn recorded %d interactions", got)
	}
}

func TestRetrieverFailure(t *testing.T) {
	r := newTestResponder(&mockProvider{}, &fakeRetriever{err: errors.New("index offline")}, &fakeRetriever{})
	r.Store.Create("s")

	_, err := r.DocumentChat(context.Background(), "s", "capital of France")
	var external *ExternalError
	if !errors.As(err, &external) {
		t.Fatalf("error = %v, want ExternalError", err)
	}
}

// An empty index is a configuration problem, not a transient failure;
// the sentinel must survive the orchestrator unchanged.
func TestNoIndexPassesThrough(t *testing.T) {
	noIndex := &fakeRetriever{err: fmt.Errorf("retrieving: %w", retrieval.ErrNoIndex)}
	r := newTestResponder(&mockProvider{}, noIndex, &fakeRetriever{})
	r.Store.Create("s")

	_, err := r.DocumentChat(context.Background(), "s", "capital of France")
	if !errors.Is(err, retrieval.ErrNoIndex) {
		t.Fatalf("error = %v, want ErrNoIndex", err)
	}
	var external *ExternalError
	if errors.As(err, &external) {
		t.Error("no-index error should not be classified as external failure")
	}
}

func TestAnswerWithoutSession(t *testing.T) {
	mock := &mockProvider{responses: []string{
		`{"answer": "Paris is the capital of France.", "citations": [0]}`,
	}}
	docs := &fakeRetriever{result: docResult()}
	r := newTestResponder(mock, docs, &fakeRetriever{})

	result, err := r.Answer(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if result.Answer != "Paris is the capital of France." {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Citations) != 1 || result.Citations[0].PageNumber != "1" {
		t.Errorf("citations = %+v", result.Citations)
	}
	req := mock.lastCall()
	if !req.JSONMode {
		t.Error("answer request not in JSON mode")
	}
}

func TestOutOfRangeCitationGetsSentinel(t *testing.T) {
	mock := &mockProvider{responses: []string{
		`{"answer": "Paris.", "citations": [5]}`,
	}}
	r := newTestResponder(mock, &fakeRetriever{result: docResult()}, &fakeRetriever{})
	r.Store.Create("s")

	result, err := r.DocumentChat(context.Background(), "s", "capital of France")
	if err != nil {
		t.Fatalf("DocumentChat() error = %v", err)
	}
	if len(result.Citations) != 1 || result.Citations[0].FileName != "N/A" {
		t.Errorf("citations = %+v", result.Citations)
	}
}
