// Package agent decides whether a request comes from an automated client
// (CLI, crawler, LLM agent) or from a human using a browser.
package agent

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Reason names the rule that produced a classification.
type Reason string

const (
	ReasonSignature      Reason = "signature"
	ReasonPlainText      Reason = "accept_plain_text"
	ReasonWildcardAccept Reason = "accept_wildcard"
	ReasonNoUserAgent    Reason = "empty_user_agent"
	ReasonBrowser        Reason = "browser"
)

// Classification is the per-request verdict. It is computed once and passed
// explicitly down to rendering.
type Classification struct {
	IsAgent bool
	Reason  Reason
}

// Client returns "agent" or "human", for logs and metric labels.
func (c Classification) Client() string {
	if c.IsAgent {
		return "agent"
	}
	return "human"
}

// Classifier matches requests against a fixed set of client signatures.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	signatures []string
	matcher    *ahocorasick.Matcher
}

// NewClassifier builds a Classifier from user-agent signatures. Signatures
// are lowercased and blanks are dropped. With no signatures only the
// header-based rules apply.
func NewClassifier(signatures ...string) *Classifier {
	c := &Classifier{}
	seen := make(map[string]struct{}, len(signatures))
	for _, s := range signatures {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		c.signatures = append(c.signatures, s)
	}
	if len(c.signatures) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.signatures)
	}
	return c
}

// Signatures returns the normalised signature set.
func (c *Classifier) Signatures() []string {
	return append([]string(nil), c.signatures...)
}

// Classify evaluates the rules in order; the first match marks the request
// as an agent request:
//
//  1. the user agent contains a known client signature
//  2. the accept header asks for text/plain
//  3. the accept header is exactly "*/*"
//  4. the user agent is empty
//
// Anything else is a human request.
func (c *Classifier) Classify(userAgent, accept string) Classification {
	ua := strings.ToLower(userAgent)
	acc := strings.ToLower(strings.TrimSpace(accept))

	if c.matchSignature(ua) {
		return Classification{IsAgent: true, Reason: ReasonSignature}
	}
	if strings.Contains(acc, "text/plain") {
		return Classification{IsAgent: true, Reason: ReasonPlainText}
	}
	if acc == "*/*" && !strings.Contains(acc, "text/html") {
		return Classification{IsAgent: true, Reason: ReasonWildcardAccept}
	}
	if strings.TrimSpace(ua) == "" {
		return Classification{IsAgent: true, Reason: ReasonNoUserAgent}
	}
	return Classification{IsAgent: false, Reason: ReasonBrowser}
}

func (c *Classifier) matchSignature(ua string) bool {
	if c.matcher == nil || ua == "" {
		return false
	}
	return len(c.matcher.MatchThreadSafe([]byte(ua))) > 0
}
