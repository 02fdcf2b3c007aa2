package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	genai "google.golang.org/genai"

	"smarthealth/internal/checker"
)

const defaultModel = "gemini-2.5-flash"

// descCacheSize bounds the process-wide description cache. Descriptions
// are small and keyed by condition name, so a restart of the session
// can still reuse them without another round trip.
const descCacheSize = 256

const (
	conditionsSystemPrompt = "You are a helpful medical assistant AI. Analyze the user's symptoms and provide a list of potential conditions. Do not provide medical advice, but suggest potential conditions based on the described symptoms. For each condition, provide a name, a count of matching symptoms from the user's description, and a severity level (Mild, Moderate, Severe). Your response must strictly adhere to the provided JSON schema."
	detailsSystemPrompt    = "You are a helpful medical information assistant. Provide clear, concise information about medical conditions. Do not give medical advice or a diagnosis."
	adviceSystemPrompt     = "You are a helpful medical information assistant. Provide safe, general advice and always emphasize that the user should see a real doctor. Do not provide a diagnosis or medical treatment instructions."
	prepSystemPrompt       = "You are a helpful medical assistant AI. You provide practical, non-diagnostic guidance to help patients have productive conversations with their healthcare providers. Your response must be in JSON format and adhere to the provided schema."
)

var conditionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name": {
				Type:        genai.TypeString,
				Description: "The name of the potential medical condition.",
			},
			"matchingSymptoms": {
				Type:        genai.TypeInteger,
				Description: "A count of the user-described symptoms that match this condition.",
			},
			"severity": {
				Type:        genai.TypeString,
				Description: "An estimated severity level for the condition, such as 'Mild', 'Moderate', or 'Severe'.",
			},
		},
		Required: []string{"name", "matchingSymptoms", "severity"},
	},
}

var prepSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"questions": {
			Type:        genai.TypeArray,
			Description: "A list of questions the user should ask their doctor related to their potential conditions.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"preparation": {
			Type:        genai.TypeArray,
			Description: "A list of things the user should prepare or bring to their doctor's appointment (e.g., symptom timeline, current medications).",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"expectations": {
			Type:        genai.TypeArray,
			Description: "A list of things the user might expect during the doctor's visit (e.g., physical exam, questions from the doctor).",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"questions", "preparation", "expectations"},
}

// Gemini implements checker.Gateway on the official genai client.
type Gemini struct {
	cli       *genai.Client
	model     string
	descCache *lru.Cache[string, string]
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = defaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	cache, err := lru.New[string, string](descCacheSize)
	if err != nil {
		return nil, err
	}
	return &Gemini{cli: cli, model: model, descCache: cache}, nil
}

func (g *Gemini) generate(ctx context.Context, prompt, system string, schema *genai.Schema) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}
	if schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = schema
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, cfg)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// InferConditions asks the model for candidate conditions matching the
// described symptoms. The response must satisfy the condition schema;
// anything else is an AnalysisError, never silently coerced.
func (g *Gemini) InferConditions(ctx context.Context, text string) ([]checker.Condition, error) {
	prompt := fmt.Sprintf("Analyze the following symptoms and return a list of 3 potential conditions: %q", text)
	out, err := g.generate(ctx, prompt, conditionsSystemPrompt, conditionSchema)
	if err != nil {
		log.Error().Err(err).Msg("symptom analysis request failed")
		return nil, &checker.AnalysisError{Message: "Failed to analyze symptoms. Please try again."}
	}
	conditions, err := decodeConditions([]byte(strings.TrimSpace(out)))
	if err != nil {
		log.Error().Err(err).Msg("symptom analysis response rejected")
		return nil, &checker.AnalysisError{Message: "Failed to analyze symptoms. Please try again."}
	}
	return conditions, nil
}

// DescribeCondition returns a short plain-language description of the
// named condition, served from the LRU cache when the same name was
// described before.
func (g *Gemini) DescribeCondition(ctx context.Context, name string) (string, error) {
	if desc, ok := g.descCache.Get(name); ok {
		log.Debug().Str("condition", name).Msg("description cache hit")
		return desc, nil
	}
	prompt := fmt.Sprintf("Provide a brief, easy-to-understand description of %s. Focus on common symptoms, causes, and when to see a doctor. This is not medical advice. Keep it concise and clear for a general audience.", name)
	out, err := g.generate(ctx, prompt, detailsSystemPrompt, nil)
	if err != nil || strings.TrimSpace(out) == "" {
		log.Error().Err(err).Str("condition", name).Msg("detail request failed")
		return "", &checker.DetailError{Message: fmt.Sprintf("Failed to get details for %s.", name)}
	}
	g.descCache.Add(name, out)
	return out, nil
}

// GeneralAdvice returns non-diagnostic advice for the condition list,
// carried to the model as "Name (Severity)" pairs in held order.
func (g *Gemini) GeneralAdvice(ctx context.Context, conditions []checker.Condition) (string, error) {
	pairs := make([]string, len(conditions))
	for i, c := range conditions {
		pairs[i] = fmt.Sprintf("%s (%s)", c.Name, c.Severity)
	}
	prompt := fmt.Sprintf("Based on the following potential conditions: %s, provide a summary of general advice. This advice should not be a diagnosis. It should be safe, non-prescriptive, and strongly recommend consulting a healthcare professional. Focus on general well-being tips like rest and hydration, and explain why seeing a doctor is important for these conditions.", strings.Join(pairs, ", "))
	out, err := g.generate(ctx, prompt, adviceSystemPrompt, nil)
	if err != nil || strings.TrimSpace(out) == "" {
		log.Error().Err(err).Msg("advice request failed")
		return "", &checker.AdviceError{Message: "Failed to get general advice."}
	}
	return out, nil
}

// VisitPrep returns a doctor-visit preparation guide for the condition
// list. The response must carry all three sections; anything else is a
// PrepError.
func (g *Gemini) VisitPrep(ctx context.Context, conditions []checker.Condition) (checker.DoctorVisitPrep, error) {
	names := make([]string, len(conditions))
	for i, c := range conditions {
		names[i] = c.Name
	}
	prompt := fmt.Sprintf("Based on the following potential conditions: %s, generate a guide to help a patient prepare for their doctor's visit. Structure the response into three sections: questions to ask the doctor, information to prepare beforehand, and what to expect during the visit.", strings.Join(names, ", "))
	out, err := g.generate(ctx, prompt, prepSystemPrompt, prepSchema)
	if err != nil {
		log.Error().Err(err).Msg("visit prep request failed")
		return checker.DoctorVisitPrep{}, &checker.PrepError{Message: "Failed to generate preparation guide."}
	}
	prep, err := decodePrep([]byte(strings.TrimSpace(out)))
	if err != nil {
		log.Error().Err(err).Msg("visit prep response rejected")
		return checker.DoctorVisitPrep{}, &checker.PrepError{Message: "Failed to generate preparation guide."}
	}
	return prep, nil
}

func decodeConditions(raw []byte) ([]checker.Condition, error) {
	var conditions []checker.Condition
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	for i, c := range conditions {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("condition %d has no name", i)
		}
		if c.MatchingSymptoms < 0 {
			return nil, fmt.Errorf("condition %q has a negative symptom count", c.Name)
		}
	}
	return conditions, nil
}

func decodePrep(raw []byte) (checker.DoctorVisitPrep, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return checker.DoctorVisitPrep{}, fmt.Errorf("decode prep guide: %w", err)
	}
	for _, key := range []string{"questions", "preparation", "expectations"} {
		if _, ok := fields[key]; !ok {
			return checker.DoctorVisitPrep{}, fmt.Errorf("prep guide missing %q", key)
		}
	}
	var prep checker.DoctorVisitPrep
	if err := json.Unmarshal(raw, &prep); err != nil {
		return checker.DoctorVisitPrep{}, fmt.Errorf("decode prep guide: %w", err)
	}
	return prep, nil
}
