package chat

import (
	"context"
	"math/rand"
	"strings"
)

// Responder produces the assistant's reply to a transcript.
type Responder interface {
	Reply(ctx context.Context, transcript string) (string, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, transcript string) (string, error)

// Reply implements Responder.
func (f ResponderFunc) Reply(ctx context.Context, transcript string) (string, error) {
	return f(ctx, transcript)
}

// rule matches any of its keywords against a lowercased transcript
// and answers with one of its replies.
type rule struct {
	keywords []string
	replies  []string
}

// ScriptedResponder is a keyword-match responder. Rules are checked
// in order; the first rule with a keyword present in the transcript
// wins, and one of its replies is chosen at random. No rule matching
// falls through to a generic prompt.
type ScriptedResponder struct {
	rules    []rule
	fallback []string
	pick     func(n int) int
}

// ScriptedOption configures a ScriptedResponder.
type ScriptedOption func(*ScriptedResponder)

// WithRule appends a keyword rule. Rules added this way are checked
// before the built-in ones.
func WithRule(keywords []string, replies ...string) ScriptedOption {
	return func(r *ScriptedResponder) {
		r.rules = append(r.rules, rule{keywords: keywords, replies: replies})
	}
}

// WithPicker overrides reply selection. Tests use this to make the
// responder deterministic.
func WithPicker(pick func(n int) int) ScriptedOption {
	return func(r *ScriptedResponder) {
		r.pick = pick
	}
}

// NewScriptedResponder creates a responder with health-coach replies.
func NewScriptedResponder(opts ...ScriptedOption) *ScriptedResponder {
	r := &ScriptedResponder{pick: rand.Intn}
	for _, opt := range opts {
		opt(r)
	}
	r.rules = append(r.rules, defaultRules()...)
	r.fallback = []string{
		"I'm here to help you track your health. You can tell me a reading, like your blood pressure or weight.",
		"Tell me a reading and I'll log it for you. For example, say \"my heart rate is 72\".",
		"I didn't catch a reading in that. Try telling me your blood pressure, weight, or glucose.",
	}
	return r
}

func defaultRules() []rule {
	return []rule{
		{
			keywords: []string{"hello", "hi ", "hey"},
			replies: []string{
				"Hi! Ready to log a reading? Just say it out loud.",
				"Hello! Tell me a health reading and I'll record it.",
			},
		},
		{
			keywords: []string{"blood pressure", "pressure"},
			replies: []string{
				"Got it. Keeping an eye on your blood pressure is a great habit.",
				"Noted. Regular blood pressure checks really pay off over time.",
			},
		},
		{
			keywords: []string{"heart rate", "pulse"},
			replies: []string{
				"Thanks, I've noted your heart rate.",
				"Heart rate logged. A resting rate between 60 and 100 is typical.",
			},
		},
		{
			keywords: []string{"weight", "weigh"},
			replies: []string{
				"Weight noted. Consistency matters more than any single number.",
				"Logged. Weighing in at the same time each day gives the cleanest trend.",
			},
		},
		{
			keywords: []string{"glucose", "sugar"},
			replies: []string{
				"Glucose reading noted. Nice work staying on top of it.",
				"Logged your glucose. Tracking around meals shows the clearest picture.",
			},
		},
		{
			keywords: []string{"temperature", "fever"},
			replies: []string{
				"Temperature noted. Rest up if you're feeling under the weather.",
				"Logged. Let me know if it changes and I'll track the trend.",
			},
		},
		{
			keywords: []string{"thank"},
			replies: []string{
				"You're welcome! I'm here whenever you want to log something.",
				"Anytime. Keep those readings coming.",
			},
		},
		{
			keywords: []string{"bye", "goodbye"},
			replies: []string{
				"Take care! Talk soon.",
				"Goodbye! I'll keep your readings safe.",
			},
		},
	}
}

// Reply implements Responder.
func (r *ScriptedResponder) Reply(ctx context.Context, transcript string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lower := strings.ToLower(transcript)
	for _, rule := range r.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.replies[r.pick(len(rule.replies))], nil
			}
		}
	}
	return r.fallback[r.pick(len(r.fallback))], nil
}

var _ Responder = (*ScriptedResponder)(nil)
