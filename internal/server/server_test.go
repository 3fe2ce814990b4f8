package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/auth"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/llm"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/store"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `version: 1.0.0
skills:
  - {id: sql, name: SQL, keywords: [sql, postgresql]}
  - {id: statistics, name: Statistics}
roles:
  - id: data-analyst
    name: Data Analyst
    requirements:
      - {skill: sql, level: 0.8}
      - {skill: statistics, level: 0.6}
resources:
  sql:
    - {title: SQL Course, kind: course, duration: 4 weeks, platform: Web}
questions:
  - {id: s1, skill: sql, tier: beginner, difficulty: 0.2, prompt: p1, choices: [right, wrong], answer: 0}
  - {id: s2, skill: sql, tier: intermediate, difficulty: 0.4, prompt: p2, choices: [right, wrong], answer: 0}
  - {id: s3, skill: sql, tier: advanced, difficulty: 0.6, prompt: p3, choices: [right, wrong], answer: 0}
  - {id: s4, skill: sql, tier: expert, difficulty: 0.8, prompt: p4, choices: [right, wrong], answer: 0}
`

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	srv      *Server
	profiles *profile.MemoryRepo
	events   store.EventRepo
	logs     *bytes.Buffer
}

func newTestEnv(t *testing.T, provider llm.Provider) *testEnv {
	t.Helper()
	cat, err := competency.Load(strings.NewReader(testCatalogYAML))
	require.NoError(t, err)

	st, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logs := &bytes.Buffer{}
	profiles := profile.NewMemoryRepo(profile.NewCodec(cat))
	srv := New(Deps{
		Aggregator: assessment.NewAggregator(cat, quiz.DefaultConfig()),
		Profiles:   profiles,
		Tokens:     auth.NewHMACService("test-secret", time.Hour),
		Events:     st.EventRepo(),
		Advisor:    advisor.New(cat, provider, advisor.DefaultConfig()),
		Logger:     log.New(logs, "", 0),
	}, Config{AdvisorTimeout: time.Second})

	return &testEnv{srv: srv, profiles: profiles, events: st.EventRepo(), logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) envelope {
	t.Helper()
	resp := e.raw(t, method, path, token, body)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, resp.StatusCode, env.Status)
	return env
}

func (e *testEnv) raw(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.App().Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T, name string) string {
	t.Helper()
	env := e.do(t, "POST", "/v1/sessions", "", map[string]string{"profile": name})
	require.Equal(t, http.StatusCreated, env.Status)

	var s sessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &s))
	require.NotEmpty(t, s.Token)
	return s.Token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, nil)
	env := e.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Equal(t, "ok", env.Message)
	assert.Contains(t, e.logs.String(), "HTTP access | rid=")
}

func TestRequestIDEchoed(t *testing.T) {
	e := newTestEnv(t, nil)
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := e.srv.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestRoles(t *testing.T) {
	e := newTestEnv(t, nil)

	env := e.do(t, "GET", "/v1/roles", "", nil)
	roles := decode[[]competency.RoleProfile](t, env)
	require.Len(t, roles, 1)
	assert.Equal(t, "data-analyst", roles[0].ID)

	env = e.do(t, "GET", "/v1/roles/data-analyst", "", nil)
	role := decode[roleResponse](t, env)
	assert.Equal(t, "Data Analyst", role.Name)
	require.Len(t, role.Skills, 2)
	assert.Equal(t, "SQL", role.Skills[0].Name)

	env = e.do(t, "GET", "/v1/roles/astronaut", "", nil)
	assert.Equal(t, http.StatusNotFound, env.Status)
	assert.Contains(t, env.Message, "not found")
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEnv(t, nil)
	env := e.do(t, "GET", "/v2/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t, nil)
	expired := auth.NewHMACService("test-secret", time.Nanosecond)
	stale, _, err := expired.Issue("ada")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"missing", "", "Unauthorized"},
		{"garbage", "nope", "Invalid token"},
		{"expired", stale, "Token expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := e.do(t, "GET", "/v1/me", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, env.Status)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestDataAnalystScenario(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")

	env := e.do(t, "PUT", "/v1/me/role", token, map[string]any{"role": "data-analyst", "hours_per_week": 6})
	require.Equal(t, http.StatusOK, env.Status)

	env = e.do(t, "PUT", "/v1/me/ratings/sql", token, map[string]int{"value": 3})
	require.Equal(t, http.StatusOK, env.Status)
	est := decode[assessment.SkillEstimate](t, env)
	assert.InDelta(t, 0.6, est.Value, 1e-9)

	env = e.do(t, "PUT", "/v1/me/ratings/statistics", token, map[string]int{"value": 5})
	require.Equal(t, http.StatusOK, env.Status)

	env = e.do(t, "GET", "/v1/me/gaps", token, nil)
	require.Equal(t, http.StatusOK, env.Status)
	gaps := decode[gapsResponse](t, env)
	assert.Equal(t, "data-analyst", gaps.Role)
	require.Len(t, gaps.Records, 2)
	assert.Equal(t, "sql", gaps.Records[0].SkillID)
	assert.InDelta(t, 0.2, gaps.Records[0].Gap, 1e-9)
	assert.Equal(t, 1, gaps.Records[0].Rank)
	assert.Equal(t, "statistics", gaps.Records[1].SkillID)
	assert.Zero(t, gaps.Records[1].Gap)
	assert.True(t, gaps.Records[1].Strength)
	require.Len(t, gaps.Strengths, 1)

	env = e.do(t, "GET", "/v1/me", token, nil)
	me := decode[meResponse](t, env)
	assert.Equal(t, "Ada", me.Profile)
	assert.Equal(t, "ada", me.Key)
	assert.Equal(t, 6, me.HoursPerWeek)
	assert.Equal(t, map[string]int{"sql": 3, "statistics": 5}, me.Ratings)
	require.Len(t, me.Estimates, 2)
	require.NotNil(t, me.Readiness)

	stored, err := e.profiles.Get(t.Context(), "ada")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "data-analyst", stored.SelectedRole)
}

func TestRatingErrors(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")

	tests := []struct {
		name   string
		skill  string
		value  int
		status int
	}{
		{"above scale", "sql", 6, http.StatusUnprocessableEntity},
		{"below scale", "sql", 0, http.StatusUnprocessableEntity},
		{"unknown skill", "cobol", 3, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := e.do(t, "PUT", "/v1/me/ratings/"+tt.skill, token, map[string]int{"value": tt.value})
			assert.Equal(t, tt.status, env.Status)
		})
	}

	stored, err := e.profiles.Get(t.Context(), "ada")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestPutRole_Unknown(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")
	env := e.do(t, "PUT", "/v1/me/role", token, map[string]string{"role": "astronaut"})
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestGaps_AbsentUser(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Nobody")

	env := e.do(t, "GET", "/v1/me/gaps", token, nil)
	assert.Equal(t, http.StatusBadRequest, env.Status)
	assert.Equal(t, "role is required", env.Message)

	env = e.do(t, "GET", "/v1/me/gaps?role=data-analyst", token, nil)
	require.Equal(t, http.StatusOK, env.Status)
	gaps := decode[gapsResponse](t, env)
	require.Len(t, gaps.Records, 2)
	for _, r := range gaps.Records {
		assert.Equal(t, r.Target, r.Gap, r.SkillID)
	}
	assert.Empty(t, gaps.Strengths)

	env = e.do(t, "GET", "/v1/me/gaps?role=astronaut", token, nil)
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestRoadmap(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")
	e.do(t, "PUT", "/v1/me/ratings/sql", token, map[string]int{"value": 2})

	env := e.do(t, "GET", "/v1/me/roadmap?role=data-analyst&advice=true", token, nil)
	require.Equal(t, http.StatusOK, env.Status)
	rm := decode[roadmapResponse](t, env)
	require.Len(t, rm.Items, 2)
	assert.Equal(t, "statistics", rm.Items[0].SkillID, "gap 0.6 ranks before gap 0.4")
	assert.Equal(t, "sql", rm.Items[1].SkillID)
	assert.Len(t, rm.Items[1].Resources, 1)
	assert.NotEmpty(t, rm.Plan)
	assert.Empty(t, rm.Commentary)
}

func TestQuiz_NoQuestions(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")

	env := e.do(t, "POST", "/v1/me/quiz/statistics", token, nil)
	assert.Equal(t, http.StatusConflict, env.Status)

	env = e.do(t, "POST", "/v1/me/quiz/cobol", token, nil)
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestQuiz_AnswerWithoutStart(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")

	env := e.do(t, "POST", "/v1/me/quiz/sql/answers", token, map[string]string{"answer": "right"})
	assert.Equal(t, http.StatusNotFound, env.Status)

	env = e.do(t, "POST", "/v1/me/quiz/sql/answers", token, map[string]string{"answer": " "})
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestQuiz_RunsToTerminalAndPersists(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")
	e.do(t, "PUT", "/v1/me/ratings/sql", token, map[string]int{"value": 4})

	env := e.do(t, "POST", "/v1/me/quiz/sql", token, nil)
	require.Equal(t, http.StatusCreated, env.Status)
	start := decode[quizStartResponse](t, env)
	require.NotNil(t, start.Question)
	assert.Equal(t, quiz.StateInProgress, start.State)
	assert.Equal(t, "s4", start.Question.ID, "first question targets the self rating")
	assert.NotContains(t, string(env.Data), `"answer"`)

	seen := map[string]bool{start.Question.ID: true}
	var last answerResponse
	for i := 0; i < 10; i++ {
		env = e.do(t, "POST", "/v1/me/quiz/sql/answers", token, map[string]string{"answer": "right"})
		require.Equal(t, http.StatusOK, env.Status)
		last = decode[answerResponse](t, env)
		assert.True(t, last.Correct)
		assert.Equal(t, "rules", last.GradedBy)
		if last.State.Terminal() {
			break
		}
		require.NotNil(t, last.Next)
		assert.False(t, seen[last.Next.ID], "question %s served twice", last.Next.ID)
		seen[last.Next.ID] = true
	}
	require.True(t, last.State.Terminal())
	require.NotNil(t, last.Result)
	assert.Equal(t, last.Result.Asked, last.Result.Correct)
	assert.Zero(t, e.srv.quizzes.len())

	stored, err := e.profiles.Get(t.Context(), "ada")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Responses("sql"), last.Result.Asked)

	events, err := e.events.QuizSessions(t.Context(), "Ada", "sql", store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, last.Result.SessionID, events[0].SessionID)
	assert.Equal(t, string(last.Result.State), events[0].State)

	env = e.do(t, "POST", "/v1/me/quiz/sql/answers", token, map[string]string{"answer": "right"})
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestQuiz_AnswerByChoiceNumber(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")
	e.do(t, "POST", "/v1/me/quiz/sql", token, nil)

	env := e.do(t, "POST", "/v1/me/quiz/sql/answers", token, map[string]int{"choice": 5})
	assert.Equal(t, http.StatusBadRequest, env.Status)

	env = e.do(t, "POST", "/v1/me/quiz/sql/answers", token, map[string]int{"choice": 1})
	require.Equal(t, http.StatusOK, env.Status)
	assert.True(t, decode[answerResponse](t, env).Correct)

	env = e.do(t, "POST", "/v1/me/quiz/sql/answers", token, map[string]int{"choice": 2})
	require.Equal(t, http.StatusOK, env.Status)
	assert.False(t, decode[answerResponse](t, env).Correct)
}

func TestQuiz_RestartStartsFresh(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")

	first := decode[quizStartResponse](t, e.do(t, "POST", "/v1/me/quiz/sql", token, nil))
	e.do(t, "POST", "/v1/me/quiz/sql/answers", token, map[string]string{"answer": "wrong"})
	second := decode[quizStartResponse](t, e.do(t, "POST", "/v1/me/quiz/sql", token, nil))

	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, 1, e.srv.quizzes.len())

	stored, err := e.profiles.Get(t.Context(), "ada")
	require.NoError(t, err)
	assert.Nil(t, stored, "abandoned quiz answers are not persisted")
}

func TestQuiz_SessionsAreIsolatedPerProfile(t *testing.T) {
	e := newTestEnv(t, nil)
	ada := e.login(t, "Ada")
	bob := e.login(t, "Bob")

	e.do(t, "POST", "/v1/me/quiz/sql", ada, nil)
	env := e.do(t, "POST", "/v1/me/quiz/sql/answers", bob, map[string]string{"answer": "right"})
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestAdvice(t *testing.T) {
	t.Run("fallback without provider", func(t *testing.T) {
		e := newTestEnv(t, nil)
		token := e.login(t, "Ada")

		env := e.do(t, "POST", "/v1/me/advice", token, map[string]string{"message": "how do I build a roadmap?"})
		require.Equal(t, http.StatusOK, env.Status)
		res := decode[adviceResponse](t, env)
		assert.Equal(t, advisor.SourceFallback, res.Source)
		assert.NotEmpty(t, res.Reply)
	})

	t.Run("model reply with role context", func(t *testing.T) {
		b, _ := json.Marshal(map[string]string{"reply": "Practice window functions."})
		mock := llm.NewMockProvider(llm.MockResponse{Content: b})
		e := newTestEnv(t, mock)
		token := e.login(t, "Ada")
		e.do(t, "PUT", "/v1/me/role", token, map[string]string{"role": "data-analyst"})

		env := e.do(t, "POST", "/v1/me/advice", token, map[string]string{"message": "what next?"})
		require.Equal(t, http.StatusOK, env.Status)
		res := decode[adviceResponse](t, env)
		assert.Equal(t, advisor.SourceAI, res.Source)
		assert.Equal(t, "Practice window functions.", res.Reply)
		require.Equal(t, 1, mock.CallCount())
		assert.Contains(t, mock.Calls[0].System, "Data Analyst")
	})

	t.Run("skill advice falls back on failure", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
		e := newTestEnv(t, mock)
		token := e.login(t, "Ada")

		env := e.do(t, "POST", "/v1/me/advice", token, map[string]string{"skill": "sql"})
		require.Equal(t, http.StatusOK, env.Status)
		res := decode[adviceResponse](t, env)
		assert.Equal(t, advisor.SourceFallback, res.Source)
		assert.Contains(t, res.Reply, "SQL")
		assert.Contains(t, e.logs.String(), "[Advisor] using fallback reply")
	})

	t.Run("validation", func(t *testing.T) {
		e := newTestEnv(t, nil)
		token := e.login(t, "Ada")
		env := e.do(t, "POST", "/v1/me/advice", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, env.Status)
		env = e.do(t, "POST", "/v1/me/advice", token, map[string]string{"skill": "cobol"})
		assert.Equal(t, http.StatusNotFound, env.Status)
	})
}

func TestResume(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada")

	env := e.do(t, "POST", "/v1/me/resume", token, map[string]string{
		"text": "Senior analyst. Daily SQL and PostgreSQL work.",
	})
	require.Equal(t, http.StatusOK, env.Status)
	res := decode[resumeResponse](t, env)
	assert.Equal(t, advisor.SourceKeywords, res.Source)
	assert.Equal(t, map[string]int{"sql": 6}, res.Levels)
	assert.Equal(t, []string{"sql"}, res.Updated)

	stored, err := e.profiles.Get(t.Context(), "ada")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 3, stored.SelfRatings["sql"].Value)
	require.NotNil(t, stored.Resume)
	assert.Equal(t, "keywords", stored.Resume.Source)
}

func TestReport(t *testing.T) {
	e := newTestEnv(t, nil)
	token := e.login(t, "Ada <script>")
	e.do(t, "PUT", "/v1/me/role", token, map[string]string{"role": "data-analyst"})

	resp := e.raw(t, "GET", "/v1/me/report", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "skillforge_report_")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Data Analyst")
	assert.NotContains(t, string(body), "<script>")
}

func TestPanicRecovered(t *testing.T) {
	e := newTestEnv(t, nil)
	e.srv.App().Get("/boom", func(c fiber.Ctx) error { panic("boom") })

	env := e.do(t, "GET", "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, env.Status)
	assert.Equal(t, "internal server error", env.Message)
	assert.Contains(t, e.logs.String(), "panic recovered: boom")
}

func TestQuizRegistry_PrunesIdle(t *testing.T) {
	r := newQuizRegistry(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.put("ada", "sql", &quiz.Session{})
	now = now.Add(2 * time.Minute)
	_, ok := r.get("ada", "sql")
	assert.False(t, ok)
	assert.Zero(t, r.len())
}
