package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/abhisek/skillforge/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type skillSet map[string]bool

func (s skillSet) HasSkill(id string) bool { return s[id] }

func testCodec() *profile.Codec {
	return profile.NewCodec(skillSet{"sql": true, "python": true})
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWALOnFileDatabase(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "skillforge.db"))
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{userStateTable, llmEventTable, quizSessionTable, "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestProfileRepo_AbsentIsNil(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo(testCodec())

	p, err := repo.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileRepo_PutGetOverwrite(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo(testCodec())
	ctx := context.Background()

	p := profile.New("Ada")
	p.SelectedRole = "data-analyst"
	p.SelfRatings["sql"] = profile.SelfRating{Value: 3}
	require.NoError(t, profile.Save(ctx, repo, p))

	got, err := repo.Get(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, 3, got.SelfRatings["sql"].Value)

	got.SelfRatings["sql"] = profile.SelfRating{Value: 5}
	got.AppendResponses(profile.QuizResponse{QuestionID: "sql-b1", SkillID: "sql", Correct: true, Difficulty: 0.2})
	require.NoError(t, repo.Put(ctx, got.Key(), got))

	again, err := repo.Get(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 5, again.SelfRatings["sql"].Value)
	assert.Len(t, again.QuizHistory, 1)

	require.NoError(t, repo.Delete(ctx, "ada"))
	gone, err := repo.Get(ctx, "ada")
	require.NoError(t, err)
	assert.Nil(t, gone)
	require.NoError(t, repo.Delete(ctx, "ada"))
}

func TestProfileRepo_RejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo(testCodec())
	ctx := context.Background()

	p := profile.New("bad")
	p.SelfRatings["sql"] = profile.SelfRating{Value: 9}
	err := repo.Put(ctx, p.Key(), p)
	assert.ErrorIs(t, err, profile.ErrInvalidRating)

	raw := repo.(*profileRepo)
	require.NoError(t, raw.putRaw(ctx, "corrupt", []byte(`{"version":1,"profile_name":"x","self_ratings":{"sql":{"value":0}},"quiz_history":[]}`)))
	_, err = repo.Get(ctx, "corrupt")
	assert.True(t, errors.Is(err, profile.ErrInvalidRating), "got %v", err)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "grade-answer", InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "advice", InputTokens: 50, OutputTokens: 80, LatencyMs: 500, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "grade-answer", InputTokens: 10, LatencyMs: 100, Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "openai", all[0].Provider)
	assert.Equal(t, int64(3), all[0].Sequence)
	assert.False(t, all[0].Success)
	assert.Equal(t, "rate limited", all[0].ErrorMessage)

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Before: 3})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "advice", limited[0].Purpose)

	first, err := repo.GetLLMEvent(ctx, all[2].ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "req", first.RequestBody)
	assert.Equal(t, "resp", first.ResponseBody)
	assert.False(t, first.Timestamp.IsZero())

	missing, err := repo.GetLLMEvent(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "advice", byPurpose[0].Purpose)
	assert.Equal(t, "grade-answer", byPurpose[1].Purpose)
	assert.Equal(t, 2, byPurpose[1].Calls)
	assert.Equal(t, 110, byPurpose[1].InputTokens)
	assert.Equal(t, int64(200), byPurpose[1].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "claude-haiku-4-5", byModel[0].Model)
	assert.Equal(t, 100, byModel[0].OutputTokens)
}

func TestQuizSessions(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, skill := range []string{"sql", "python", "sql"} {
		require.NoError(t, repo.AppendQuizSession(ctx, QuizSessionEventData{
			ProfileName: "ada",
			SessionID:   fmt.Sprintf("s%d", i),
			SkillID:     skill,
			State:       "converged",
			Estimate:    0.1 * float64(i+1),
			Confidence:  0.7,
			Asked:       5 + i,
			Correct:     3,
		}))
	}
	require.NoError(t, repo.AppendQuizSession(ctx, QuizSessionEventData{
		ProfileName: "bob", SessionID: "other", SkillID: "sql", State: "exhausted", LowConfidence: true,
	}))

	got, err := repo.QuizSessions(ctx, "ada", "sql", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].SessionID)
	assert.Equal(t, 7, got[0].Asked)
	assert.InDelta(t, 0.3, got[0].Estimate, 1e-9)

	all, err := repo.QuizSessions(ctx, "ada", "", QueryOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bob, err := repo.QuizSessions(ctx, "bob", "", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.True(t, bob[0].LowConfidence)
}

func TestDefaultDBPath_Env(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "x.db")
	t.Setenv("SKILLFORGE_DB", p)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.DirExists(t, filepath.Dir(p))
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SKILLFORGE_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "skillforge", "skillforge.db"), got)
}
