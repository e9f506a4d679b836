package grading

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkgrade/core/internal/models"
)

// ParseGradingReply decodes a model reply into a GradingResult. Vision models
// routinely wrap JSON in code fences or prose, so parsing is defensive:
// fences are stripped and, failing that, the outermost brace pair is tried.
func ParseGradingReply(raw string) (*models.GradingResult, error) {
	var result models.GradingResult
	if err := unmarshalModelJSON(raw, &result); err != nil {
		return nil, &ParseError{Err: err}
	}
	normalizeResult(&result)
	return &result, nil
}

func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	// Some models emit a bare "json" tag before the object.
	if strings.HasPrefix(cleaned, "json") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "json"))
	}

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("invalid JSON response from AI")
}

// normalizeResult fills the defaults the display and export layers rely on,
// so absence never has to be handled downstream.
func normalizeResult(result *models.GradingResult) {
	if result.FeedbackDetail.Language.SentenceCorrections == nil {
		result.FeedbackDetail.Language.SentenceCorrections = []models.SentenceCorrection{}
	}
	if strings.TrimSpace(result.EssayType) == "" {
		result.EssayType = "未分类"
	}
}
