package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/llm"
	"github.com/spf13/cobra"
)

var adviseCmd = &cobra.Command{
	Use:   "advise [question...]",
	Short: "Ask the career advisor",
	Long: `Ask the career advisor a question. The advisor sees your top gaps for the
target role. With --skill it gives learning advice for that skill instead.
Without an LLM provider the advisor answers from built-in guidance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		roleID, _ := d.roleID(cmd, p)

		actx, cancel := d.advisorContext(ctx)
		defer cancel()

		var reply advisor.Reply
		if skillID, _ := cmd.Flags().GetString("skill"); skillID != "" {
			s, err := d.catalog.Skill(skillID)
			if err != nil {
				return err
			}
			est, err := d.agg.Estimate(p, skillID)
			if err != nil {
				return err
			}
			target := 1.0
			if role, err := d.catalog.GetRole(roleID); err == nil {
				if lvl, ok := role.Required(skillID); ok {
					target = lvl
				}
			}
			reply = d.advisor.LearningAdvice(actx, s.Name, est.Value*10, target*10)
		} else {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return fmt.Errorf("ask a question, or pass --skill for learning advice")
			}
			contextText := ""
			if role, err := d.catalog.GetRole(roleID); err == nil {
				if records, err := gap.ComputeGaps(d.agg, p, roleID); err == nil {
					contextText = advisor.GapContext(role.Name, records)
				}
			}
			reply = d.advisor.Chat(actx, message, contextText)
		}

		fmt.Println(reply.Text)
		if reply.Err != nil && d.advisor.Available() {
			fmt.Fprintf(os.Stderr, "\n(showing built-in guidance: %s)\n", llm.Reason(reply.Err))
		}
		return nil
	},
}

var interviewCmd = &cobra.Command{
	Use:   "interview <transcript-file>",
	Short: "Analyze an interview answer transcript",
	Long: `Score a typed or transcribed interview answer for confidence, sentiment and
complexity. When an LLM provider is configured, interviewer feedback is added.
Use - to read the transcript from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, err := readInput(args[0])
		if err != nil {
			return err
		}

		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := commandContext(cmd)
		roleName := ""
		if p, err := d.loadProfile(ctx, cmd); err == nil {
			if roleID, err := d.roleID(cmd, p); err == nil {
				if role, err := d.catalog.GetRole(roleID); err == nil {
					roleName = role.Name
				}
			}
		}
		question, _ := cmd.Flags().GetString("question")

		actx, cancel := d.advisorContext(ctx)
		defer cancel()
		a, err := d.advisor.InterviewAnswer(actx, roleName, question, transcript)
		if err != nil {
			fmt.Fprintf(os.Stderr, "interviewer feedback unavailable: %s\n\n", llm.Reason(err))
		}

		fmt.Printf("Words:      %d\n", a.WordCount)
		fmt.Printf("Confidence: %s\n", a.Confidence)
		fmt.Printf("Sentiment:  %s\n", a.Sentiment)
		fmt.Printf("Complexity: %s\n", a.Complexity)
		if len(a.Keywords) > 0 {
			fmt.Printf("Keywords:   %s\n", strings.Join(a.Keywords, ", "))
		}
		if fb := a.Feedback; fb != nil {
			fmt.Printf("\nScore: %d/10\n%s\n", fb.Score, fb.Impression)
			printList("Strengths", fb.Strengths)
			printList("Improve", fb.Improvements)
		}
		return nil
	},
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, it := range items {
		fmt.Printf("  - %s\n", it)
	}
}

// readInput reads a whole file, or stdin for "-".
func readInput(name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

func init() {
	adviseCmd.Flags().String("skill", "", "Skill ID to get learning advice for")
	interviewCmd.Flags().String("question", "", "The interview question that was answered")
}
