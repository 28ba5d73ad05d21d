package caption

import (
	"context"
	"encoding/base64"
	"math/rand"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"snapcap/logger"
	"snapcap/tools/textx"
)

// HashtagCount is fixed: every result carries exactly four hashtags.
const HashtagCount = 4

// Context is the optional hints sent along with the image.
type Context struct {
	Location  string
	Mood      string
	TimeOfDay string
}

// Result is what callers get back. Generated reports whether the model path
// produced it; the fallback path sets it false.
type Result struct {
	Caption   string   `json:"caption"`
	Hashtags  []string `json:"hashtags"`
	Generated bool     `json:"generated"`
}

// Generator decorates posts with captions. It never returns a terminal
// error: any model failure, including a missing API key, degrades to the
// canned pool.
type Generator struct {
	client *openai.Client // nil when unconfigured
	model  string
	rng    func(n int) int
}

func NewGenerator(apiKey, model string) *Generator {
	g := &Generator{model: model, rng: rand.Intn}
	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
	}
	if g.model == "" {
		g.model = openai.GPT4oMini
	}
	return g
}

// Generate produces a caption plus exactly four hashtags for the image.
func (g *Generator) Generate(ctx context.Context, image []byte, imageMIME string, c Context) Result {
	if g.client == nil {
		return g.fallback(c)
	}

	caption, err := g.modelCaption(ctx, image, imageMIME, c)
	if err != nil {
		logger.Warnf("[caption] model caption failed, using fallback: %v", err)
		return g.fallback(c)
	}
	tags, err := g.modelHashtags(ctx, caption)
	if err != nil {
		logger.Warnf("[caption] model hashtags failed, using fallback: %v", err)
		return g.fallback(c)
	}
	return Result{
		Caption:   caption,
		Hashtags:  padHashtags(tags, g.rng),
		Generated: true,
	}
}

func (g *Generator) modelCaption(ctx context.Context, image []byte, imageMIME string, c Context) (string, error) {
	prompt := buildPrompt(c)
	dataURL := "data:" + imageMIME + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
			},
		}},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return StripQuotes(resp.Choices[0].Message.Content), nil
}

func (g *Generator) modelHashtags(ctx context.Context, caption string) ([]string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			Content: "Derive exactly 4 short hashtags from this caption, space separated, " +
				"each starting with #: " + caption,
		}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errEmptyCompletion
	}
	return ParseHashtags(resp.Choices[0].Message.Content), nil
}

func buildPrompt(c Context) string {
	var sb strings.Builder
	sb.WriteString("Write one short, upbeat social-media caption for this photo.")
	if c.Location != "" {
		sb.WriteString(" Location: " + c.Location + ".")
	}
	if c.Mood != "" {
		sb.WriteString(" Mood: " + c.Mood + ".")
	}
	if c.TimeOfDay != "" {
		sb.WriteString(" Time of day: " + c.TimeOfDay + ".")
	}
	sb.WriteString(" Reply with the caption only, no quotes.")
	return sb.String()
}

// StripQuotes removes a single layer of wrapping quotes the model tends to
// add.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, "'", "“"} {
		if strings.HasPrefix(s, q) {
			s = strings.TrimPrefix(s, q)
			break
		}
	}
	for _, q := range []string{`"`, "'", "”"} {
		if strings.HasSuffix(s, q) {
			s = strings.TrimSuffix(s, q)
			break
		}
	}
	return strings.TrimSpace(s)
}

// ParseHashtags extracts well-formed hashtag tokens from model output.
func ParseHashtags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
	var out []string
	for _, f := range fields {
		tag := textx.NormalizeHashtag(f)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// padHashtags truncates or pads to exactly HashtagCount, drawing extras from
// the generic pool without duplicating.
func padHashtags(tags []string, rng func(int) int) []string {
	seen := make(map[string]struct{}, HashtagCount)
	out := make([]string, 0, HashtagCount)
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == HashtagCount {
			return out
		}
	}
	for i := rng(len(genericTags)); len(out) < HashtagCount; i++ {
		t := genericTags[i%len(genericTags)]
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
