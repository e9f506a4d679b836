package grading

import (
	"errors"
	"testing"
)

const sampleReply = `{
	"recognized_text": "Dear Tom, ...",
	"essay_type": "应用文",
	"scores": {"dim1_score": 4, "dim2_score": 3, "dim3_score": 4, "total": 11},
	"feedback_detail": {
		"content": {"weakness": "w", "suggestion": "s"},
		"language": {
			"sentence_corrections": [
				{"original": "I has a pen.", "revised": "I have a pen.", "explanation": "主谓一致"}
			],
			"general_comment": "g"
		},
		"structure": "st",
		"overall_summary": "o"
	},
	"revised_version": "Dear Tom, revised ..."
}`

func TestParseGradingReply(t *testing.T) {
	result, err := ParseGradingReply(sampleReply)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Scores.Total != 11 || result.Scores.Content != 4 {
		t.Fatalf("unexpected scores %+v", result.Scores)
	}
	if len(result.FeedbackDetail.Language.SentenceCorrections) != 1 {
		t.Fatalf("expected one correction")
	}
	if result.FeedbackDetail.Language.SentenceCorrections[0].Revised != "I have a pen." {
		t.Fatalf("unexpected correction %+v", result.FeedbackDetail.Language.SentenceCorrections[0])
	}
}

func TestParseGradingReplyCodeFence(t *testing.T) {
	for _, raw := range []string{
		"```json\n" + sampleReply + "\n```",
		"```JSON\n" + sampleReply + "\n```",
		"```\n" + sampleReply + "\n```",
		"json\n" + sampleReply,
	} {
		result, err := ParseGradingReply(raw)
		if err != nil {
			t.Fatalf("fenced parse failed: %v", err)
		}
		if result.Scores.Total != 11 {
			t.Fatalf("unexpected total %d", result.Scores.Total)
		}
	}
}

func TestParseGradingReplySurroundingProse(t *testing.T) {
	raw := "好的，以下是批改结果：\n" + sampleReply + "\n希望对你有帮助。"
	result, err := ParseGradingReply(raw)
	if err != nil {
		t.Fatalf("prose-wrapped parse failed: %v", err)
	}
	if result.EssayType != "应用文" {
		t.Fatalf("unexpected essay type %q", result.EssayType)
	}
}

func TestParseGradingReplyDefaults(t *testing.T) {
	result, err := ParseGradingReply(`{"recognized_text": "x", "scores": {"total": 9}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.EssayType != "未分类" {
		t.Fatalf("expected default essay type, got %q", result.EssayType)
	}
	if result.FeedbackDetail.Language.SentenceCorrections == nil {
		t.Fatalf("corrections should be an empty slice, not nil")
	}
}

func TestParseGradingReplyInvalid(t *testing.T) {
	_, err := ParseGradingReply("the model refused to answer")
	if err == nil {
		t.Fatalf("expect parse error")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expect *ParseError, got %T", err)
	}
}
