package middleware

import (
	"context"
	"regexp"

	"github.com/veladahq/velada/pkg/domain"
	"github.com/veladahq/velada/pkg/ports"
)

type piiMiddleware struct {
	next     ports.DraftStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks draft values whose keys
// match the patterns before they reach the backing store. The in-memory
// draft the engine works with is left untouched.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.DraftStore) ports.DraftStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, flowID, key string, draft domain.SectionDraft) error {
	cloned := deepCopyDraft(draft)
	maskDraft(cloned, m.patterns)
	return m.next.Save(ctx, flowID, key, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, flowID, key string) (domain.SectionDraft, error) {
	return m.next.Load(ctx, flowID, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, flowID string, keys ...string) error {
	return m.next.Delete(ctx, flowID, keys...)
}

func (m *piiMiddleware) List(ctx context.Context, flowID string) ([]string, error) {
	return m.next.List(ctx, flowID)
}

// Helpers

func deepCopyDraft(d domain.SectionDraft) domain.SectionDraft {
	out := make(domain.SectionDraft, len(d))
	for k, v := range d {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = map[string]any(deepCopyDraft(subMap))
		} else {
			out[k] = v // shallow copy of value
		}
	}
	return out
}

func maskDraft(d domain.SectionDraft, patterns []*regexp.Regexp) {
	for k, v := range d {
		for _, p := range patterns {
			if p.MatchString(k) {
				d[k] = "***"
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok {
			maskDraft(subMap, patterns)
		}
	}
}
