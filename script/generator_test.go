package script

import (
	"testing"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
)

func TestParseFencedResponse(t *testing.T) {
	raw := "```json\n{\"title\": \"Fox Facts\", \"script\": \"Foxes are clever.\", \"scenes\": [{\"scene_number\": 1, \"visual_prompt\": \"a fox\", \"voiceover_sentence\": \"Foxes are clever.\"}]}\n```"

	s, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if s.Title != "Fox Facts" {
		t.Fatalf("title = %q", s.Title)
	}
	if len(s.Scenes) != 1 || s.Scenes[0].VisualPrompt != "a fox" {
		t.Fatalf("scenes mangled: %+v", s.Scenes)
	}
}

func TestParseBareJSON(t *testing.T) {
	s, err := Parse(`{"title": "T", "script": "S.", "scenes": []}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if s.Title != "T" {
		t.Fatalf("title = %q", s.Title)
	}
}

func TestParseProseIsParseError(t *testing.T) {
	_, err := Parse("Sure! Here is your script: the fox jumps...")
	if err == nil {
		t.Fatal("expected parse error for prose")
	}
	if pipeline.Classify(err) != pipeline.CodeParse {
		t.Fatalf("want parse error, got %v", err)
	}
}

func TestScriptSchemaGenerated(t *testing.T) {
	if scriptSchema == nil {
		t.Fatal("script schema was not generated at init")
	}
}
