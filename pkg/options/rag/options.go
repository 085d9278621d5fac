// Package rag provides retrieval and document pipeline configuration options.
package rag

import (
	"fmt"

	"github.com/kart-io/rafiq/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains configuration for the document pipeline and retrieval.
type Options struct {
	// ChunkSize is the size of text chunks in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between consecutive chunks.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of results to return from similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Collection is the name of the Milvus collection.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// UploadsDir is the directory where uploaded documents are stored.
	UploadsDir string `json:"uploads-dir" mapstructure:"uploads-dir"`

	// WatchDir is an optional directory to watch for new documents.
	// Empty disables watching.
	WatchDir string `json:"watch-dir" mapstructure:"watch-dir"`

	// FAQPath is the path to the FAQ markdown file.
	FAQPath string `json:"faq-path" mapstructure:"faq-path"`

	// FAQThreshold is the minimum similarity score for an FAQ match.
	FAQThreshold float64 `json:"faq-threshold" mapstructure:"faq-threshold"`

	// LexicalThreshold is the minimum cosine similarity for a TF-IDF match.
	LexicalThreshold float64 `json:"lexical-threshold" mapstructure:"lexical-threshold"`

	// PromptTemplate overrides the built-in answer prompt. Empty keeps
	// the default.
	PromptTemplate string `json:"prompt-template" mapstructure:"prompt-template"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:        800,
		ChunkOverlap:     100,
		TopK:             5,
		Collection:       "rafiq_docs",
		EmbeddingDim:     768, // nomic-embed-text dimension
		UploadsDir:       "_output/uploads",
		WatchDir:         "",
		FAQPath:          "configs/faq.md",
		FAQThreshold:     0.3,
		LexicalThreshold: 0.3,
	}
}

// AddFlags adds flags for retrieval options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"rag.chunk-size", o.ChunkSize, "Size of text chunks in characters.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"rag.chunk-overlap", o.ChunkOverlap, "Overlap between consecutive chunks.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"rag.top-k", o.TopK, "Number of results from similarity search.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"rag.collection", o.Collection, "Milvus collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"rag.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.StringVar(&o.UploadsDir, options.Join(prefixes...)+"rag.uploads-dir", o.UploadsDir, "Directory for uploaded documents.")
	fs.StringVar(&o.WatchDir, options.Join(prefixes...)+"rag.watch-dir", o.WatchDir, "Directory to watch for new documents (empty disables watching).")
	fs.StringVar(&o.FAQPath, options.Join(prefixes...)+"rag.faq-path", o.FAQPath, "Path to the FAQ markdown file.")
	fs.Float64Var(&o.FAQThreshold, options.Join(prefixes...)+"rag.faq-threshold", o.FAQThreshold, "Minimum similarity score for an FAQ match.")
	fs.Float64Var(&o.LexicalThreshold, options.Join(prefixes...)+"rag.lexical-threshold", o.LexicalThreshold, "Minimum cosine similarity for a TF-IDF match.")
}

// Validate validates the retrieval options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("chunk-overlap must not be negative"))
	}
	if o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be smaller than chunk-size"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.FAQThreshold < 0 || o.FAQThreshold > 1 {
		errs = append(errs, fmt.Errorf("faq-threshold must be in [0, 1]"))
	}
	if o.LexicalThreshold < 0 || o.LexicalThreshold > 1 {
		errs = append(errs, fmt.Errorf("lexical-threshold must be in [0, 1]"))
	}
	return errs
}

// Complete completes the retrieval options with defaults.
func (o *Options) Complete() error {
	if o.FAQThreshold == 0 {
		o.FAQThreshold = 0.3
	}
	if o.LexicalThreshold == 0 {
		o.LexicalThreshold = 0.3
	}
	return nil
}
