package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz [skill-id...]",
	Short: "Take an adaptive quiz in the terminal",
	Long: `Answer adaptive questions until each skill's estimate converges or its
question bank runs out. Without skill IDs every skill of the target role is
quizzed in requirement order; skills without questions are skipped.

Responses are saved only for quizzes that reach a final state.`,
	RunE: runQuiz,
}

func runQuiz(cmd *cobra.Command, args []string) error {
	d, err := loadDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := commandContext(cmd)
	p, err := d.loadProfile(ctx, cmd)
	if err != nil {
		return err
	}

	items, err := quizItems(cmd, d, p, args)
	if err != nil {
		return err
	}

	in := bufio.NewScanner(os.Stdin)
	grader := d.grader()
	for _, item := range items {
		if item.Skipped {
			fmt.Printf("Skipping %s: no questions available.\n\n", item.SkillName)
			continue
		}
		sess, err := quiz.NewPlannedSession(d.catalog, item, p, quiz.WithConfig(d.cfg.Quiz))
		if errors.Is(err, quiz.ErrNoQuestionsAvailable) {
			fmt.Printf("Skipping %s: no questions available.\n\n", item.SkillName)
			continue
		}
		if err != nil {
			return err
		}

		fmt.Printf("Skill: %s\n\n", item.SkillName)
		res, done := askAll(ctx, in, os.Stdout, sess, grader)
		if !done {
			fmt.Println("\n(input closed, quiz abandoned)")
			return nil
		}

		d.agg.RecordResponses(p, sess.Responses())
		if err := d.saveProfile(ctx, p); err != nil {
			return err
		}
		recordQuizEvent(ctx, d, p, res)

		fmt.Printf("── %s: %d/%d correct, estimate %s/10 (%s) ──\n",
			item.SkillName, res.Correct, res.Asked, gap.FormatLevel(res.Estimate), res.State)
		if res.LowConfidence {
			fmt.Println("Low confidence: the question bank ran out before the estimate settled.")
		}
		if est, err := d.agg.Estimate(p, item.SkillID); err == nil {
			fmt.Printf("Combined estimate with self rating: %s/10\n", gap.FormatLevel(est.Value))
		}
		fmt.Println()
	}
	return nil
}

// quizItems resolves explicit skill IDs, or plans the whole target role.
func quizItems(cmd *cobra.Command, d *deps, p *profile.Profile, args []string) ([]quiz.PlanItem, error) {
	if len(args) == 0 {
		roleID, err := d.roleID(cmd, p)
		if err != nil {
			return nil, err
		}
		role, err := d.catalog.GetRole(roleID)
		if err != nil {
			return nil, fmt.Errorf("role not available: %w", err)
		}
		return quiz.Plan(d.catalog, role, p), nil
	}

	items := make([]quiz.PlanItem, 0, len(args))
	for _, id := range args {
		s, err := d.catalog.Skill(id)
		if err != nil {
			return nil, err
		}
		item := quiz.PlanItem{SkillID: s.ID, SkillName: s.Name}
		if r, ok := p.Rating(s.ID); ok {
			level := float64(r.Value) / profile.RatingMax
			item.StartLevel = &level
		}
		item.Skipped = len(d.catalog.Questions(s.ID)) == 0
		items = append(items, item)
	}
	return items, nil
}

// askAll runs a started session to a terminal state. It returns false when
// input ends first.
func askAll(ctx context.Context, in *bufio.Scanner, out io.Writer, sess *quiz.Session, grader quiz.Grader) (quiz.Result, bool) {
	n := 0
	for !sess.State().Terminal() {
		q, ok := sess.Current()
		if !ok {
			break
		}
		n++
		printQuestion(out, n, q)

		var answer string
		for answer == "" {
			fmt.Fprint(out, "\nYour answer: ")
			if !in.Scan() {
				return quiz.Result{}, false
			}
			answer = strings.TrimSpace(in.Text())
		}
		if n, err := strconv.Atoi(answer); err == nil {
			if text, ok := quiz.ChoiceText(q, n); ok {
				answer = text
			}
		}

		fb, err := sess.Answer(ctx, grader, answer)
		if err != nil {
			fmt.Fprintf(out, "Could not grade answer: %v\n", err)
			break
		}
		if fb.Correct {
			fmt.Fprintln(out, "\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Fprintf(out, "\033[31m✗ Not quite.\033[0m Answer: %s\n", fb.CorrectAnswer)
		}
		if fb.Explanation != "" {
			fmt.Fprintf(out, "Explanation: %s\n", fb.Explanation)
		}
		fmt.Fprintln(out)
	}
	return sess.Result(), true
}

func printQuestion(out io.Writer, n int, q competency.Question) {
	fmt.Fprintf(out, "── Question %d (%s) ──\n", n, q.Tier.DisplayName())
	fmt.Fprintln(out, q.Prompt)
	if q.Format == competency.FormatChoice {
		for j, c := range q.Choices {
			fmt.Fprintf(out, "  %d) %s\n", j+1, c)
		}
	}
}

// recordQuizEvent appends the outcome to the event log. Failures are
// reported but never undo the saved responses.
func recordQuizEvent(ctx context.Context, d *deps, p *profile.Profile, res quiz.Result) {
	err := quiz.RecordOutcome(ctx, d.events, p.Name, res)
	if err != nil {
		d.logger.Printf("[Quiz] failed to record session: %v", err)
	}
}
