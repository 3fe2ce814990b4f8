package advisor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/llm"
	"golang.org/x/sync/errgroup"
)

// Commentary is AI advice keyed by skill ID.
type Commentary map[string]string

// Enrich requests learning advice for the first limit roadmap items, at most
// MaxConcurrency at a time. Items whose call fails are left out, so the
// result may be empty; it is never an error. Without a provider no calls
// are made.
func (a *Advisor) Enrich(ctx context.Context, items []gap.RoadmapItem, limit int) Commentary {
	out := make(Commentary)
	if a.provider == nil || len(items) == 0 {
		return out
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeEnrich)
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(a.cfg.MaxConcurrency)

	for _, item := range items {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			reply := a.LearningAdvice(ctx, item.SkillName, item.Estimated*10, item.Target*10)
			if !reply.AI() {
				return nil
			}
			mu.Lock()
			out[item.SkillID] = reply.Text
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// MaxContextGaps is the number of gaps GapContext lists.
const MaxContextGaps = 3

// GapContext describes the user's target role and largest gaps for the
// chat system prompt.
func GapContext(roleName string, records []gap.Record) string {
	if roleName == "" {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "The user is preparing for the %s role.", roleName)
	gaps := gap.Gaps(records)
	if len(gaps) == 0 {
		b.WriteString(" They already meet every requirement.")
		return b.String()
	}
	if len(gaps) > MaxContextGaps {
		gaps = gaps[:MaxContextGaps]
	}
	b.WriteString(" Their biggest gaps on a 0-10 scale:")
	for _, r := range gaps {
		fmt.Fprintf(&b, "\n- %s: at %s, needs %s", r.SkillName, gap.FormatLevel(r.Estimated), gap.FormatLevel(r.Target))
	}
	return b.String()
}
