package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type skillSet map[string]bool

func (s skillSet) HasSkill(id string) bool { return s[id] }

func TestKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Alice ", "alice"},
		{"BOB", "bob"},
		{"", "guest"},
		{"   ", "guest"},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNew_DefaultsToGuest(t *testing.T) {
	p := New(" ")
	assert.Equal(t, GuestName, p.Name)
	assert.Equal(t, SchemaVersion, p.Version)
	assert.NotNil(t, p.SelfRatings)
}

func TestMemoryRepo_AbsentIsNil(t *testing.T) {
	repo := NewMemoryRepo(nil)
	p, err := repo.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = LoadOrNew(context.Background(), repo, "Nobody")
	require.NoError(t, err)
	assert.Equal(t, "Nobody", p.Name)
	assert.Empty(t, p.SelfRatings)
}

func TestMemoryRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo(NewCodec(skillSet{"sql": true}))

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := New("Ada")
	p.SelectedRole = "data-analyst"
	p.SelfRatings["sql"] = SelfRating{Value: 3, UpdatedAt: now}
	p.AppendResponses(QuizResponse{SessionID: "s1", QuestionID: "sql-b1", SkillID: "sql", Correct: true, Difficulty: 0.2, AnsweredAt: now})
	require.NoError(t, Save(ctx, repo, p))

	got, err := repo.Get(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "data-analyst", got.SelectedRole)
	assert.Equal(t, 3, got.SelfRatings["sql"].Value)
	require.Len(t, got.Responses("sql"), 1)
	assert.Empty(t, got.Responses("python"))
}

func TestCodec_Decode(t *testing.T) {
	codec := NewCodec(skillSet{"sql": true})

	tests := []struct {
		name    string
		blob    string
		wantErr error
	}{
		{
			name: "valid",
			blob: `{"version":1,"profile_name":"a","self_ratings":{"sql":{"value":4}}}`,
		},
		{
			name:    "rating out of scale",
			blob:    `{"version":1,"profile_name":"a","self_ratings":{"sql":{"value":9}}}`,
			wantErr: ErrInvalidRating,
		},
		{
			name:    "unknown skill",
			blob:    `{"version":1,"profile_name":"a","self_ratings":{"cobol":{"value":2}}}`,
			wantErr: competency.ErrNotFound,
		},
		{
			name:    "unknown skill in history",
			blob:    `{"version":1,"profile_name":"a","quiz_history":[{"question_id":"q","skill_id":"cobol","correct":true}]}`,
			wantErr: competency.ErrNotFound,
		},
		{
			name:    "wrong shape",
			blob:    `{"version":1,"profile_name":"a","self_ratings":{"sql":{"value":"high"}}}`,
			wantErr: ErrMalformed,
		},
		{
			name:    "not json",
			blob:    `{{`,
			wantErr: ErrMalformed,
		},
		{
			name:    "future version",
			blob:    `{"version":7,"profile_name":"a"}`,
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := codec.Decode([]byte(tt.blob))
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.NotNil(t, p)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestMemoryRepo_CorruptBlobFailsFast(t *testing.T) {
	repo := NewMemoryRepo(NewCodec(skillSet{"sql": true}))
	repo.PutRaw("eve", []byte(`{"version":1,"profile_name":"eve","self_ratings":{"sql":{"value":0}}}`))

	_, err := repo.Get(context.Background(), "eve")
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestTouch_ClearsCache(t *testing.T) {
	p := New("x")
	p.Cache = Cache{RoleID: "r", Readiness: 50}
	now := time.Now()
	p.Touch(now)
	assert.Equal(t, Cache{}, p.Cache)
	assert.Equal(t, now, p.UpdatedAt)
}
