package generator

import "strings"

// FailureKind classifies why a generation call did not produce usable text.
type FailureKind string

const (
	FailureOverloaded    FailureKind = "overloaded"
	FailureRateLimited   FailureKind = "rate_limited"
	FailureQuotaExceeded FailureKind = "quota_exceeded"
	FailureUnauthorized  FailureKind = "unauthorized"
	FailureUnknown       FailureKind = "unknown"
)

// Failure describes a classified generation error.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Outcome is the result of one generation attempt after retry and
// classification. Exactly one of Content or Failure is meaningful.
type Outcome struct {
	Content      string         `json:"content"`
	FinishReason string         `json:"finish_reason"`
	RawMetadata  map[string]any `json:"raw_metadata,omitempty"`
	Failure      *Failure       `json:"failure,omitempty"`
}

// OK reports whether the generation produced usable text.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// errorSignatures are failure messages that can leak into Content when an
// upstream layer folds errors into the response body.
var errorSignatures = []string{
	"rate limit exceeded",
	"quota exceeded",
	"invalid api key",
}

// Storable reports whether the outcome should be persisted and scored. Failed
// outcomes, error finish reasons, and content that is actually an error
// message are all excluded.
func (o Outcome) Storable() bool {
	if o.Failure != nil {
		return false
	}
	if o.FinishReason == "ERROR" {
		return false
	}
	if strings.HasPrefix(o.Content, "Error:") {
		return false
	}
	lower := strings.ToLower(o.Content)
	for _, sig := range errorSignatures {
		if strings.Contains(lower, sig) {
			return false
		}
	}
	return true
}
