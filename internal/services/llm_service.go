package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/justsurfingit/job-board/internal/dtos"
)

// maxPostingBytes caps how much of a posting goes into the prompt.
const maxPostingBytes = 20000

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "tech_stack": ["Array", "of", "technologies", "mentioned", "e.g., Go, React, AWS"],
    "salary_range": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// Generator turns a prompt into a completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type langchainGenerator struct {
	model llms.Model
}

func (g langchainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g.model, prompt)
}

// NewGeminiGenerator builds a Generator backed by Google's Gemini API.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return nil, ErrLLMUnavailable
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return langchainGenerator{model: llm}, nil
}

type LLMService struct {
	gen    Generator
	logger *slog.Logger
}

// NewLLMService wraps gen. A nil gen yields a service whose extraction
// always fails with ErrLLMUnavailable.
func NewLLMService(gen Generator, logger *slog.Logger) *LLMService {
	return &LLMService{gen: gen, logger: logger}
}

// ExtractJobDetails asks the model for the structured fields of a posting.
// link, when set, is copied into the draft.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML, link string) (*dtos.JobDraft, error) {
	if s.gen == nil {
		return nil, ErrLLMUnavailable
	}

	resp, err := s.gen.Generate(ctx, fmt.Sprintf(jobExtractionPrompt, truncate(rawHTML, maxPostingBytes)))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	draft, err := parseDraft(resp)
	if err != nil {
		s.logger.Warn("unreadable extraction answer", slog.Int("bytes", len(resp)), slog.Any("error", err))
		return nil, err
	}
	if draft.Link == "" {
		draft.Link = link
	}
	return draft, nil
}

// parseDraft reads the JSON object out of a model answer, tolerating a
// markdown fence or chatter around it.
func parseDraft(resp string) (*dtos.JobDraft, error) {
	start := strings.Index(resp, "{")
	end := strings.LastIndex(resp, "}")
	if start < 0 || end < start {
		return nil, ErrExtractionFailed
	}
	var draft dtos.JobDraft
	if err := json.Unmarshal([]byte(resp[start:end+1]), &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return &draft, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
