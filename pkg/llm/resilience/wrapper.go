// Package resilience provides resilient wrappers for LLM providers.
package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/pkg/llm"
)

// ResilientEmbeddingProvider wraps an EmbeddingProvider with retries
// and circuit breaking.
type ResilientEmbeddingProvider struct {
	provider llm.EmbeddingProvider
	retry    *RetryConfig
	cb       *CircuitBreaker
}

// NewResilientEmbeddingProvider creates a resilient embedding provider.
func NewResilientEmbeddingProvider(
	provider llm.EmbeddingProvider,
	retryConfig *RetryConfig,
	cbConfig *CircuitBreakerConfig,
) *ResilientEmbeddingProvider {
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
	}
	if cbConfig == nil {
		cbConfig = DefaultCircuitBreakerConfig()
	}

	// Default retryable-error predicate
	if retryConfig.RetryableErrors == nil {
		retryConfig.RetryableErrors = IsRetryableError
	}

	return &ResilientEmbeddingProvider{
		provider: provider,
		retry:    retryConfig,
		cb:       NewCircuitBreaker(cbConfig),
	}
}

// Embed generates vector embeddings for multiple texts, with retries
// and circuit breaking.
func (r *ResilientEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var result [][]float32
	var err error

	err = RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		result, err = r.provider.Embed(ctx, texts)
		return err
	})

	return result, err
}

// EmbedSingle generates a vector embedding for one text, with retries
// and circuit breaking.
func (r *ResilientEmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	var result []float32
	var err error

	err = RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		result, err = r.provider.EmbedSingle(ctx, text)
		return err
	})

	return result, err
}

// Name returns the underlying provider name.
func (r *ResilientEmbeddingProvider) Name() string {
	return r.provider.Name() + "-resilient"
}

// CircuitBreaker exposes the breaker for monitoring.
func (r *ResilientEmbeddingProvider) CircuitBreaker() *CircuitBreaker {
	return r.cb
}

// ResilientChatProvider wraps a ChatProvider with retries and circuit
// breaking.
type ResilientChatProvider struct {
	provider llm.ChatProvider
	retry    *RetryConfig
	cb       *CircuitBreaker
}

// NewResilientChatProvider creates a resilient chat provider.
func NewResilientChatProvider(
	provider llm.ChatProvider,
	retryConfig *RetryConfig,
	cbConfig *CircuitBreakerConfig,
) *ResilientChatProvider {
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
	}
	if cbConfig == nil {
		cbConfig = DefaultCircuitBreakerConfig()
	}

	// Default retryable-error predicate
	if retryConfig.RetryableErrors == nil {
		retryConfig.RetryableErrors = IsRetryableError
	}

	return &ResilientChatProvider{
		provider: provider,
		retry:    retryConfig,
		cb:       NewCircuitBreaker(cbConfig),
	}
}

// Chat runs a multi-turn conversation, with retries and circuit
// breaking.
func (r *ResilientChatProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	var result string
	var err error

	err = RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		result, err = r.provider.Chat(ctx, messages)
		return err
	})

	return result, err
}

// Generate produces text from a single prompt, with retries and
// circuit breaking.
func (r *ResilientChatProvider) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	var result string
	var err error

	err = RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		result, err = r.provider.Generate(ctx, prompt, systemPrompt)
		return err
	})

	return result, err
}

// Name returns the underlying provider name.
func (r *ResilientChatProvider) Name() string {
	return r.provider.Name() + "-resilient"
}

// CircuitBreaker exposes the breaker for monitoring.
func (r *ResilientChatProvider) CircuitBreaker() *CircuitBreaker {
	return r.cb
}

// IsRetryableError reports whether an error is worth retrying.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// An open breaker is not retryable
	if errors.Is(err, ErrCircuitBreakerOpen) {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Network errors are retryable
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			logger.Debugw("network timeout, retryable", "error", err.Error())
			return true
		}
		// Temporary() is deprecated; most temporary errors are
		// timeouts, handled above
	}

	// DNS errors are retryable
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		logger.Debugw("DNS error, retryable", "error", err.Error())
		return true
	}

	// Connection errors are retryable
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		logger.Debugw("network operation error, retryable", "error", err.Error())
		return true
	}

	// HTTP 5xx is retryable
	errMsg := err.Error()
	if strings.Contains(errMsg, "status code 5") ||
		strings.Contains(errMsg, "status 5") ||
		strings.Contains(errMsg, "server error") {
		logger.Debugw("server error, retryable", "error", errMsg)
		return true
	}

	// HTTP 429 (Too Many Requests) is retryable
	if strings.Contains(errMsg, "status code 429") ||
		strings.Contains(errMsg, "status 429") ||
		strings.Contains(errMsg, "rate limit") {
		logger.Debugw("rate limit error, retryable", "error", errMsg)
		return true
	}

	// HTTP 408 (Request Timeout) is retryable
	if strings.Contains(errMsg, "status code 408") ||
		strings.Contains(errMsg, "status 408") {
		logger.Debugw("request timeout, retryable", "error", errMsg)
		return true
	}

	// HTTP 503 (Service Unavailable) is retryable
	if strings.Contains(errMsg, "status code 503") ||
		strings.Contains(errMsg, "status 503") ||
		strings.Contains(errMsg, "service unavailable") {
		logger.Debugw("service unavailable, retryable", "error", errMsg)
		return true
	}

	// EOF is retryable
	if errors.Is(err, http.ErrServerClosed) ||
		strings.Contains(errMsg, "EOF") ||
		strings.Contains(errMsg, "connection reset") {
		logger.Debugw("connection error, retryable", "error", errMsg)
		return true
	}

	// Everything else is not
	logger.Debugw("error not retryable", "error", errMsg)
	return false
}

// Stats carries resilience statistics.
type Stats struct {
	CircuitBreakerState    string
	CircuitBreakerFailures int
	CircuitBreakerStats    map[string]interface{}
}

// GetEmbeddingProviderStats reports the embedding provider's
// resilience statistics.
func GetEmbeddingProviderStats(provider llm.EmbeddingProvider) *Stats {
	if rp, ok := provider.(*ResilientEmbeddingProvider); ok {
		cbStats := rp.cb.Stats()
		return &Stats{
			CircuitBreakerState:    cbStats["state"].(string),
			CircuitBreakerFailures: cbStats["failures"].(int),
			CircuitBreakerStats:    cbStats,
		}
	}
	return nil
}

// GetChatProviderStats reports the chat provider's resilience
// statistics.
func GetChatProviderStats(provider llm.ChatProvider) *Stats {
	if rp, ok := provider.(*ResilientChatProvider); ok {
		cbStats := rp.cb.Stats()
		return &Stats{
			CircuitBreakerState:    cbStats["state"].(string),
			CircuitBreakerFailures: cbStats["failures"].(int),
			CircuitBreakerStats:    cbStats,
		}
	}
	return nil
}
