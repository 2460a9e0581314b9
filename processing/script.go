package processing

import (
	"fmt"
	"strings"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
)

// Scene pairs a visual prompt with the script sentence narrated over it.
type Scene struct {
	SceneNumber       int    `json:"scene_number" jsonschema_description:"1-based position of the scene in the video"`
	VisualPrompt      string `json:"visual_prompt" jsonschema_description:"Detailed AI image generation prompt for this scene"`
	VoiceoverSentence string `json:"voiceover_sentence" jsonschema_description:"Corresponding sentence from the script for this scene"`
}

// Script is the structured output of the script generation step. Immutable
// once produced.
type Script struct {
	Title  string  `json:"title" jsonschema_description:"Video title"`
	Script string  `json:"script" jsonschema_description:"Full voiceover script text"`
	Scenes []Scene `json:"scenes" jsonschema_description:"Ordered visual scenes covering the script"`
}

// Validate checks the parsed script against the schema the pipeline depends
// on downstream.
func (s *Script) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("script has no title")
	}
	if strings.TrimSpace(s.Script) == "" {
		return fmt.Errorf("script has no narration text")
	}
	if len(s.Scenes) == 0 {
		return fmt.Errorf("script has no scenes")
	}
	for i, scene := range s.Scenes {
		if strings.TrimSpace(scene.VisualPrompt) == "" {
			return fmt.Errorf("scene %d has no visual prompt", i+1)
		}
	}
	return nil
}

// StripCodeFences removes markdown code fences that generative models wrap
// around JSON payloads, e.g. ```json ... ```.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// VideoScriptPrompt builds the LLM prompt for a series brief.
func VideoScriptPrompt(series models.Series) string {
	sceneCount := "exactly 4-5"
	if strings.HasPrefix(series.TargetDuration, "60") {
		sceneCount = "exactly 5-6"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert video script writer. Generate a short video script for a %q video.\n", series.NicheType)
	fmt.Fprintf(&b, "- Series Name: %s\n", series.Title)
	fmt.Fprintf(&b, "- Specific Niche: %s\n", series.Niche)
	fmt.Fprintf(&b, "- Video Style: %s\n", series.VideoStyle)
	fmt.Fprintf(&b, "- Target Duration: %s\n", series.TargetDuration)
	fmt.Fprintf(&b, "- Language: %s\n", series.Language)
	if strings.TrimSpace(series.Description) != "" {
		fmt.Fprintf(&b, "- Description: %s\n", series.Description)
	}
	b.WriteString("\nRequirements:\n")
	b.WriteString("1. Create a compelling, natural-sounding script in the series language. NO raw text, strictly JSON.\n")
	b.WriteString("2. Generate a detailed visual image prompt for each scene.\n")
	fmt.Fprintf(&b, "3. Generate %s scenes, numbered from 1.\n", sceneCount)
	b.WriteString("4. Each scene's voiceover_sentence must be a sentence from the script, in order.\n")
	return b.String()
}
