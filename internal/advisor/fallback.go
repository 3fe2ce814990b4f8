package advisor

import (
	"fmt"
	"strings"
)

type cannedReply struct {
	keyword string
	text    string
}

// cannedReplies are checked in order; the first keyword contained in the
// lowercased message wins.
var cannedReplies = []cannedReply{
	{"roadmap", `Here's a general approach:
1. Prioritize skills with the largest gap and highest role weight.
2. Dedicate focused 2-hour daily blocks.
3. Build projects that combine multiple skills.
4. Review weekly with practice quizzes.
Tip: run "skillforge roadmap" for your personalized plan.`},
	{"python", `Python is foundational for data and AI roles.
- Start with "Automate the Boring Stuff" for basics.
- Move to "Fluent Python" for intermediate mastery.
- Build 2-3 portfolio projects on GitHub.`},
	{"interview", `Preparation tips:
1. Practice coding problems on LeetCode or HackerRank.
2. Review system-design fundamentals.
3. Prepare STAR-format stories for behavioral rounds.
4. Study the company's tech stack.`},
	{"motivat", `Consistency beats intensity.
- Set small daily goals.
- Track progress visually; rerun "skillforge gaps" every week.
- Celebrate each skill-level improvement.`},
}

const defaultFallbackReply = `Here are some general tips:
1. Focus on your highest-priority skill gaps first.
2. Use project-based learning to retain knowledge.
3. Reassess every 2 weeks with the quiz.
4. Check the gap analysis and roadmap for details.

Configure an LLM provider for personalised AI advice.`

// FallbackChat answers without a model by matching topic keywords.
func FallbackChat(message string) string {
	msg := strings.ToLower(message)
	for _, c := range cannedReplies {
		if strings.Contains(msg, c.keyword) {
			return c.text
		}
	}
	return defaultFallbackReply
}

// FallbackAdvice is a generic three-step plan scaled to the size of the gap.
func FallbackAdvice(skillName string, current, target float64) string {
	gap := target - current
	if gap <= 0 {
		return fmt.Sprintf("You already meet the target for %s. Keep it fresh with one project a month.", skillName)
	}
	pace := "2-3 focused sessions a week"
	if gap >= 5 {
		pace = "a daily 2-hour block"
	}
	return fmt.Sprintf(`1. Review %s fundamentals and fill gaps with a structured course.
2. Practice with %s until you can solve intermediate exercises unaided.
3. Ship a small project that uses %s end to end, then retake the quiz.`, skillName, pace, skillName)
}
