package biz

// Answer source labels, one per tier of the response chain.
const (
	SourceFAQ      = "faq"
	SourceRAG      = "rag"
	SourceLexical  = "tfidf"
	SourceExternal = "llm_fallback"
	SourcePatterns = "patterns"
	SourceTemplate = "department_template"
)

// Reference points at a document chunk that backed an answer.
type Reference struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Department   string  `json:"department"`
	Score        float32 `json:"score"`
}

// Answer is a resolved response to a user question.
type Answer struct {
	// Text is the answer body, in the response language.
	Text string `json:"text"`
	// TextEN is the English form of the answer. For English responses it
	// matches Text; for Arabic RAG responses it is the generation before
	// back-translation.
	TextEN string `json:"answer_en,omitempty"`
	// Source names the chain tier that produced the answer.
	Source string `json:"source"`
	// Language is "en" or "ar".
	Language string `json:"language"`
	// Departments lists the departments the question was matched to.
	Departments []string `json:"departments,omitempty"`
	// References lists the chunks the answer was grounded on, RAG only.
	References []Reference `json:"references,omitempty"`
	// RetrievedChunks is how many chunks retrieval returned, RAG only.
	RetrievedChunks int `json:"retrieved_chunk_count,omitempty"`
	// Cached reports whether the answer came from the answer cache.
	Cached bool `json:"cached"`
}
