package ai

import (
	"fmt"
	"strings"
)

// CreationSpec describes a content-creation request.
type CreationSpec struct {
	Mode     string // e.g. "Blog Post", "LinkedIn Post"
	Context  string // source material
	Audience string
	Tone     string
	Length   string
	Depth    string
	Platform string

	// Advanced toggles.
	ABVariants bool
	Humanize   bool
	Analogies  bool
}

// CreationPrompt builds the prompt for the content-creation engine.
func CreationPrompt(spec CreationSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ACT AS: Expert Content Creator.\n")
	fmt.Fprintf(&b, "TASK: Write a %s.\n", spec.Mode)
	fmt.Fprintf(&b, "SOURCE MATERIAL: %s\n\n", clipTo(spec.Context, 20000))
	fmt.Fprintf(&b, "TARGET AUDIENCE: %s\n", spec.Audience)
	fmt.Fprintf(&b, "TONE: %s\n", spec.Tone)
	fmt.Fprintf(&b, "LENGTH: %s\n", spec.Length)
	fmt.Fprintf(&b, "DEPTH: %s\n", spec.Depth)
	fmt.Fprintf(&b, "PLATFORM: %s\n\n", spec.Platform)
	b.WriteString("ADVANCED INSTRUCTIONS:\n")
	if spec.ABVariants {
		b.WriteString("- Create 2 distinct variants (Option A and Option B)\n")
	} else {
		b.WriteString("- Single high-quality version\n")
	}
	if spec.Humanize {
		b.WriteString("- Use natural, human-like phrasing (avoid AI cliches)\n")
	}
	if spec.Analogies {
		b.WriteString("- Explain complex concepts using simple analogies\n")
	}
	return b.String()
}

// TransformPrompt builds the prompt for converting content to a new format,
// with an optional secondary refinement goal.
func TransformPrompt(content, targetFormat, refinement string) string {
	var b strings.Builder
	b.WriteString("TASK: Content Transformation\n")
	fmt.Fprintf(&b, "SOURCE: %s\n\n", clipTo(content, 15000))
	fmt.Fprintf(&b, "PRIMARY GOAL: Convert to %s\n", targetFormat)
	if refinement != "" {
		fmt.Fprintf(&b, "SECONDARY REFINEMENT: %s\n", refinement)
	}
	b.WriteString("\nKeep the core meaning but adapt strictly to the new format.\n")
	return b.String()
}

// AnalysisPrompt asks for an editorial review of a draft.
func AnalysisPrompt(content string) string {
	return fmt.Sprintf("Analyze this content for tone, clarity, and SEO improvements:\n\n%s", clipTo(content, 15000))
}

// TonePrompt asks for a rewrite in the target tone.
func TonePrompt(content, targetTone string) string {
	return fmt.Sprintf("Rewrite this content to match a %s tone. Content: %s", targetTone, clipTo(content, 2000))
}

func clipTo(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
