package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// EngagementPrediction is the model's estimate of how content will perform.
type EngagementPrediction struct {
	Likes           int    `json:"likes"`
	Comments        int    `json:"comments"`
	Shares          int    `json:"shares"`
	EngagementScore int    `json:"engagement_score"`
	BestTime        string `json:"best_time"`
	PredictedReach  string `json:"predicted_reach"`
	Confidence      int    `json:"confidence"`
}

// AudienceInsights describes the predicted audience for a piece of content.
type AudienceInsights struct {
	AgeGroup          string   `json:"age_group"`
	EngagementPattern string   `json:"engagement_pattern"`
	PreferredLength   string   `json:"preferred_length"`
	InterestTopics    []string `json:"interest_topics"`
	Sentiment         string   `json:"sentiment"`
	RetentionRate     int      `json:"retention_rate"`
}

// BehaviorPrediction models the user's likely focus in the next session.
type BehaviorPrediction struct {
	PredictedIntensity int    `json:"predicted_intensity"`
	FocusArea          string `json:"focus_area"`
	SuggestedAction    string `json:"suggested_action"`
	Satisfaction       int    `json:"satisfaction_prediction"`
	LearningConfidence int    `json:"learning_confidence"`
}

// Default fallbacks, returned alongside the error when the model's answer
// cannot be parsed. Callers that surface predictions to users show these
// instead of failing the whole request.
var (
	DefaultEngagement = EngagementPrediction{
		Likes: 45, Comments: 8, Shares: 12,
		EngagementScore: 62, BestTime: "Weekday Morning",
		PredictedReach: "Medium", Confidence: 75,
	}
	DefaultAudience = AudienceInsights{
		AgeGroup: "25-34", EngagementPattern: "Deep Readers",
		PreferredLength: "Medium",
		InterestTopics:  []string{"Technology", "Innovation", "Productivity"},
		Sentiment:       "Positive", RetentionRate: 68,
	}
	DefaultBehavior = BehaviorPrediction{
		PredictedIntensity: 75, FocusArea: "Content Refinement",
		SuggestedAction: "Optimize for Social Reach",
		Satisfaction:    82, LearningConfidence: 65,
	}
)

// PredictEngagement asks the model for engagement metrics. On any failure
// the default prediction is returned together with the error, so callers
// can choose between failing and degrading.
func PredictEngagement(ctx context.Context, g Generator, content, tone, platform string) (EngagementPrediction, error) {
	prompt := fmt.Sprintf(`You are an expert social media analyst and engagement predictor.

Analyze the following content and predict realistic engagement metrics:

CONTENT: %s
TONE: %s
PLATFORM: %s

Based on content quality, relevance, tone, and platform best practices, predict:
1. Expected Likes/Reactions (realistic number)
2. Expected Comments (realistic number)
3. Expected Shares (realistic number)
4. Engagement Score (0-100, where 100 is viral-level engagement)
5. Best Posting Time (e.g., "Weekday Morning", "Weekend Evening")
6. Predicted Reach (Low/Medium/High/Viral)

Respond ONLY in this exact JSON format:
{
    "likes": <number>,
    "comments": <number>,
    "shares": <number>,
    "engagement_score": <number 0-100>,
    "best_time": "<time recommendation>",
    "predicted_reach": "<Low/Medium/High/Viral>",
    "confidence": <number 0-100>
}`, clipTo(content, 3000), tone, platform)

	out := DefaultEngagement
	err := predictInto(ctx, g, prompt, &out)
	if err != nil {
		return DefaultEngagement, err
	}
	return out, nil
}

// PredictAudience asks the model for audience insights.
func PredictAudience(ctx context.Context, g Generator, content, audience string) (AudienceInsights, error) {
	prompt := fmt.Sprintf(`You are an audience behavior analyst.

Analyze this content and predict audience insights:

CONTENT: %s
TARGET AUDIENCE: %s

Predict:
1. Primary Age Group (e.g., "18-24", "25-34", "35-44")
2. Engagement Pattern (e.g., "Quick Scanners", "Deep Readers", "Visual Learners")
3. Preferred Content Length (Short/Medium/Long)
4. Key Interest Topics (list 3-5 topics)
5. Sentiment (Positive/Neutral/Negative)

Respond ONLY in this exact JSON format:
{
    "age_group": "<age range>",
    "engagement_pattern": "<pattern>",
    "preferred_length": "<Short/Medium/Long>",
    "interest_topics": ["topic1", "topic2", "topic3"],
    "sentiment": "<Positive/Neutral/Negative>",
    "retention_rate": <number 0-100>
}`, clipTo(content, 2000), audience)

	out := DefaultAudience
	err := predictInto(ctx, g, prompt, &out)
	if err != nil {
		return DefaultAudience, err
	}
	return out, nil
}

// PredictBehavior models the user's next-session focus from their recent
// history and stored preferences.
func PredictBehavior(ctx context.Context, g Generator, history []string, prefs map[string]string) (BehaviorPrediction, error) {
	prompt := fmt.Sprintf(`You are a user behavior predictive model.
Analyze the recent interaction history and preferences:

HISTORY: %s
PREFERENCES: %v

Predict the following for the next session:
1. Predicted Intensity (0-100)
2. Focus Area (e.g. SEO, Tone, Consistency)
3. Suggested Next Action
4. User Satisfaction Score (0-100 based on past tone feedback)

Respond ONLY in this exact JSON format:
{
    "predicted_intensity": <number>,
    "focus_area": "<string>",
    "suggested_action": "<string>",
    "satisfaction_prediction": <number>,
    "learning_confidence": <number>
}`, clipTo(strings.Join(history, "; "), 2000), prefs)

	out := DefaultBehavior
	err := predictInto(ctx, g, prompt, &out)
	if err != nil {
		return DefaultBehavior, err
	}
	return out, nil
}

// predictInto runs the prompt and decodes the first JSON object in the
// reply into dst.
func predictInto(ctx context.Context, g Generator, prompt string, dst any) error {
	if g == nil {
		return fmt.Errorf("ai: no generation backend configured")
	}
	reply, err := g.GenerateText(ctx, prompt, TaskPersonalization)
	if err != nil {
		return err
	}
	raw, ok := firstJSONObject(reply)
	if !ok {
		return fmt.Errorf("ai: no JSON object in model reply")
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("ai: malformed prediction: %w", err)
	}
	return nil
}

// firstJSONObject extracts the first balanced {...} block from s. Models
// often wrap their JSON in prose or markdown fences.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
