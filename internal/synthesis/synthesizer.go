// Package synthesis builds moderation-aware reply suggestions. The
// generative provider is treated as untrusted: whatever it returns passes
// through a deterministic sanitize/inject pipeline before leaving this
// package, so hard constraints (no unsolicited links or hashtags, bounded
// length) hold even when the provider misbehaves.
package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/pkg/llm"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
)

// Config controls reply length and the probabilistic post-processing
// branches.
type Config struct {
	MaxReplyLen     int
	CTAProbability  float64
	LinkProbability float64
	CTAPhrases      []string
	FallbackReplies []string
}

func DefaultConfig() Config {
	return Config{
		MaxReplyLen:     240,
		CTAProbability:  0.4,
		LinkProbability: 1.0 / 3.0,
		CTAPhrases: []string{
			"more details on my profile if you're curious",
			"I left a pointer on my profile",
			"check my profile for the one I use",
		},
		FallbackReplies: []string{
			"Oh I've been looking at something just like this recently, small world",
			"Nice find, I came across a similar one a while back and really liked it",
			"This reminds me of one I picked up recently, totally worth it",
		},
	}
}

// Result is the synthesized reply with its risk assessment.
type Result struct {
	ReplyText  string
	IsRisky    bool
	RiskReason *string
}

// Synthesizer produces reply suggestions. A nil provider is valid and
// always takes the template fallback path.
type Synthesizer struct {
	provider llm.Provider
	cfg      Config
	logger   logging.Logger
	randFn   func() float64
	pickFn   func(n int) int
}

type Option func(*Synthesizer)

// WithRandSource replaces the probability and selection sources. Tests use
// this to force both branches deterministically.
func WithRandSource(randFn func() float64, pickFn func(n int) int) Option {
	return func(s *Synthesizer) {
		s.randFn = randFn
		s.pickFn = pickFn
	}
}

func NewSynthesizer(provider llm.Provider, cfg Config, logger logging.Logger, opts ...Option) *Synthesizer {
	if cfg.MaxReplyLen <= 0 {
		cfg.MaxReplyLen = 240
	}
	if len(cfg.CTAPhrases) == 0 {
		cfg.CTAPhrases = DefaultConfig().CTAPhrases
	}
	if len(cfg.FallbackReplies) == 0 {
		cfg.FallbackReplies = DefaultConfig().FallbackReplies
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Synthesizer{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		randFn:   rng.Float64,
		pickFn:   rng.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const systemPrompt = "You are a careful social media assistant writing short, human-sounding replies " +
	"that casually mention a product. You also moderate: you flag posts that are controversial, " +
	"political, tragic or otherwise risky to engage with commercially. " +
	"Respond ONLY with a JSON object: {\"replyText\": string, \"isRisky\": boolean, \"riskReason\": string or null}."

func buildPrompt(postText, productTitle string, maxLen int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Post: %q\n\n", postText)
	fmt.Fprintf(&b, "Product: %q\n\n", productTitle)
	b.WriteString("Rules:\n")
	b.WriteString("- First decide if the post is risky or controversial to reply to commercially; if so set isRisky=true with a one-sentence riskReason\n")
	b.WriteString("- The reply must sound human, friendly and conversational\n")
	b.WriteString("- Mention the product naturally, never salesy\n")
	b.WriteString("- Do NOT include any links, URLs or hashtags in the reply\n")
	fmt.Fprintf(&b, "- Keep the reply under %d characters\n", maxLen)
	b.WriteString("- Optionally end with a soft nudge toward your profile\n")
	return b.String()
}

// providerResult mirrors the JSON shape the provider is instructed to
// return.
type providerResult struct {
	ReplyText  string  `json:"replyText"`
	IsRisky    bool    `json:"isRisky"`
	RiskReason *string `json:"riskReason"`
}

// Synthesize generates a reply for a post. It never returns an empty
// reply: provider failure or malformed output degrades to a template, and
// the sanitize/CTA/link pipeline is applied on every path.
func (s *Synthesizer) Synthesize(ctx context.Context, postText, productTitle, shortLink string) Result {
	result, err := s.generate(ctx, postText, productTitle)
	if err != nil {
		s.logger.WithFields(logging.Fields{
			"error": err.Error(),
		}).Warn("Reply generation failed, using fallback template")
		result = providerResult{ReplyText: s.cfg.FallbackReplies[s.pickFn(len(s.cfg.FallbackReplies))]}
	}

	text := Sanitize(result.ReplyText, s.cfg.MaxReplyLen)
	if text == "" {
		text = Sanitize(s.cfg.FallbackReplies[s.pickFn(len(s.cfg.FallbackReplies))], s.cfg.MaxReplyLen)
	}
	text = s.injectCTA(text)
	text = s.injectLink(text, shortLink)

	return Result{ReplyText: text, IsRisky: result.IsRisky, RiskReason: result.RiskReason}
}

func (s *Synthesizer) generate(ctx context.Context, postText, productTitle string) (providerResult, error) {
	if s.provider == nil {
		return providerResult{}, fmt.Errorf("no generative provider configured")
	}

	raw, err := s.provider.Complete(ctx, llm.Request{
		System: systemPrompt,
		Prompt: buildPrompt(postText, productTitle, s.cfg.MaxReplyLen),
	})
	if err != nil {
		return providerResult{}, err
	}

	parsed, ok := parseProviderJSON(raw)
	if !ok {
		// Untrusted output that is not JSON is still usable as plain text.
		return providerResult{ReplyText: raw}, nil
	}
	return parsed, nil
}

// parseProviderJSON decodes the structured provider response, tolerating
// markdown code fences around the JSON object.
func parseProviderJSON(raw string) (providerResult, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	if !strings.HasPrefix(trimmed, "{") {
		return providerResult{}, false
	}
	var parsed providerResult
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return providerResult{}, false
	}
	if parsed.ReplyText == "" {
		return providerResult{}, false
	}
	return parsed, true
}

// injectCTA appends a soft call-to-action with probability CTAProbability,
// unless the text already points at a profile. The combined text is
// re-sanitized so the length bound still holds.
func (s *Synthesizer) injectCTA(text string) string {
	if strings.Contains(strings.ToLower(text), "profile") {
		return text
	}
	if s.randFn() >= s.cfg.CTAProbability {
		return text
	}
	phrase := s.cfg.CTAPhrases[s.pickFn(len(s.cfg.CTAPhrases))]
	joined := text
	if joined != "" && !strings.HasSuffix(joined, ".") && !strings.HasSuffix(joined, "!") && !strings.HasSuffix(joined, "?") {
		joined += "."
	}
	joined += " " + upperFirst(phrase)
	return Sanitize(joined, s.cfg.MaxReplyLen)
}

// injectLink appends the short link with probability LinkProbability. The
// link is the one deliberate exception to the no-link rule, so it is added
// after sanitization and never re-sanitized.
func (s *Synthesizer) injectLink(text, shortLink string) string {
	if shortLink == "" {
		return text
	}
	if s.randFn() >= s.cfg.LinkProbability {
		return text
	}
	return strings.TrimSpace(text + " " + shortLink)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
