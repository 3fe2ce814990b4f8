package server

import (
	"sync"
	"time"

	"github.com/abhisek/skillforge/internal/quiz"
)

// DefaultQuizIdleTTL is how long an unanswered quiz stays resumable.
const DefaultQuizIdleTTL = 30 * time.Minute

// quizEntry is an in-progress quiz. Its mutex serializes answers, which
// may wait on a model call.
type quizEntry struct {
	mu       sync.Mutex
	session  *quiz.Session
	lastUsed time.Time
}

// quizRegistry holds one in-progress quiz per (profile, skill).
type quizRegistry struct {
	mu      sync.Mutex
	entries map[string]*quizEntry
	idleTTL time.Duration
	now     func() time.Time
}

func newQuizRegistry(idleTTL time.Duration) *quizRegistry {
	if idleTTL <= 0 {
		idleTTL = DefaultQuizIdleTTL
	}
	return &quizRegistry{
		entries: make(map[string]*quizEntry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

func quizKey(profileKey, skillID string) string {
	return profileKey + "\x00" + skillID
}

// put replaces any quiz for the key with s. A new quiz always starts
// fresh; nothing of the previous one carries over.
func (r *quizRegistry) put(profileKey, skillID string, s *quiz.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	r.entries[quizKey(profileKey, skillID)] = &quizEntry{session: s, lastUsed: r.now()}
}

func (r *quizRegistry) get(profileKey, skillID string) (*quizEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	e, ok := r.entries[quizKey(profileKey, skillID)]
	if ok {
		e.lastUsed = r.now()
	}
	return e, ok
}

// remove drops the entry only if it still holds s.
func (r *quizRegistry) remove(profileKey, skillID string, s *quiz.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := quizKey(profileKey, skillID)
	if e, ok := r.entries[k]; ok && e.session == s {
		delete(r.entries, k)
	}
}

func (r *quizRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *quizRegistry) pruneLocked() {
	cutoff := r.now().Add(-r.idleTTL)
	for k, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, k)
		}
	}
}
