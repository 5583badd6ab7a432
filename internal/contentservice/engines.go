package contentservice

import (
	"context"
	"fmt"

	"github.com/sanhik/contentos/internal/ai"
	"github.com/sanhik/contentos/internal/models"
)

// GeneratedProject is the result of an AI creation request that was
// auto-saved as a project.
type GeneratedProject struct {
	Content   string `json:"content"`
	Folder    string `json:"folder"`
	ProjectID string `json:"project_id"`
}

// CreateGenerated runs the creation engine and saves the result as a new
// project owned by owner, tagged with the generation parameters.
func (s *Service) CreateGenerated(ctx context.Context, spec ai.CreationSpec, folder, owner string) (*GeneratedProject, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("content generation is not configured")
	}
	content, err := s.gen.GenerateText(ctx, ai.CreationPrompt(spec), ai.TaskCreation)
	if err != nil {
		return nil, err
	}

	tags := []string{"AI-Gen", spec.Mode, spec.Platform}
	if spec.ABVariants {
		tags = append(tags, "A/B Testing")
	}
	audience := spec.Audience
	if len(audience) > 15 {
		audience = audience[:15] + "..."
	}

	pid, _, err := s.CreateProject(ctx, CreateProjectParams{
		Title:   fmt.Sprintf("%s: %s", spec.Mode, audience),
		Folder:  folder,
		Owner:   owner,
		Content: content,
		Tags:    tags,
		ExtraMeta: models.ExtraMeta{
			Kind: models.ProvenanceGeneration,
			Generation: &models.GenerationMeta{
				Mode:     spec.Mode,
				Tone:     spec.Tone,
				Platform: spec.Platform,
				Audience: spec.Audience,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeneratedProject{Content: content, Folder: folder, ProjectID: pid}, nil
}

// Transform converts content to a new format with an optional secondary
// refinement goal.
func (s *Service) Transform(ctx context.Context, content, targetFormat, refinement string) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("content generation is not configured")
	}
	return s.gen.GenerateText(ctx, ai.TransformPrompt(content, targetFormat, refinement), ai.TaskTransformation)
}

// Analyze reviews a draft for tone, clarity and SEO.
func (s *Service) Analyze(ctx context.Context, content string) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("content generation is not configured")
	}
	return s.gen.GenerateText(ctx, ai.AnalysisPrompt(content), ai.TaskCMS)
}

// AdaptTone rewrites content in the target tone.
func (s *Service) AdaptTone(ctx context.Context, content, targetTone string) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("content generation is not configured")
	}
	return s.gen.GenerateText(ctx, ai.TonePrompt(content, targetTone), ai.TaskPersonalization)
}
