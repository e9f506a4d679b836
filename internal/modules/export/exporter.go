package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/inkgrade/core/internal/models"
)

// ExportError is the single failure surface of report generation; callers
// show its message and nothing else.
type ExportError struct {
	Reason string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("导出失败: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("导出失败: %s", e.Reason)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ResultSource yields stored results; the session implements it.
type ResultSource interface {
	DocumentViews() []models.DocumentView
	Result(docID string) (*models.GradingResult, bool)
}

// Report is one generated batch report.
type Report struct {
	Markdown    string
	Included    int
	GeneratedAt time.Time
}

// BuildReport assembles the batch report in pending-list order. Documents
// without a stored result are skipped; an empty report is an error.
func BuildReport(src ResultSource) (*Report, error) {
	now := time.Now()

	var b strings.Builder
	b.Grow(16 * 1024)
	b.WriteString("# 作文批改报告\n\n")
	b.WriteString("生成时间: " + now.Format("2006-01-02 15:04:05") + "\n\n")

	included := 0
	for _, view := range src.DocumentViews() {
		result, ok := src.Result(view.ID)
		if !ok {
			continue
		}
		writeDocumentSection(&b, view.Document, result)
		included++
	}

	if included == 0 {
		return nil, &ExportError{Reason: "没有可导出的批改结果"}
	}
	return &Report{Markdown: b.String(), Included: included, GeneratedAt: now}, nil
}

func writeDocumentSection(b *strings.Builder, doc models.Document, result *models.GradingResult) {
	fmt.Fprintf(b, "## %s\n\n", doc.Label)
	fmt.Fprintf(b, "**文体**: %s\n\n", result.EssayType)

	b.WriteString("### 识别原文\n\n")
	b.WriteString(blockquote(result.RecognizedText) + "\n\n")

	b.WriteString("### 评分\n\n")
	b.WriteString("| 维度 | 得分 |\n| --- | --- |\n")
	fmt.Fprintf(b, "| 内容要点 | %d/5 |\n", result.Scores.Content)
	fmt.Fprintf(b, "| 语言表达 | %d/5 |\n", result.Scores.Language)
	fmt.Fprintf(b, "| 结构衔接 | %d/5 |\n", result.Scores.Structure)
	fmt.Fprintf(b, "| **总分** | **%d/15** |\n\n", result.Scores.Total)

	detail := result.FeedbackDetail

	b.WriteString("### 内容点评\n\n")
	if weakness := strings.TrimSpace(detail.Content.Weakness); weakness != "" {
		fmt.Fprintf(b, "- **不足**: %s\n", weakness)
	}
	if suggestion := strings.TrimSpace(detail.Content.Suggestion); suggestion != "" {
		fmt.Fprintf(b, "- **建议**: %s\n", suggestion)
	}
	b.WriteString("\n")

	b.WriteString("### 逐句修改\n\n")
	if len(detail.Language.SentenceCorrections) == 0 {
		b.WriteString("无\n\n")
	} else {
		for i, corr := range detail.Language.SentenceCorrections {
			fmt.Fprintf(b, "%d. 原句: %s\n", i+1, corr.Original)
			fmt.Fprintf(b, "   修改: %s\n", corr.Revised)
			fmt.Fprintf(b, "   解析: %s\n", corr.Explanation)
		}
		b.WriteString("\n")
	}
	if comment := strings.TrimSpace(detail.Language.GeneralComment); comment != "" {
		fmt.Fprintf(b, "**语言总评**: %s\n\n", comment)
	}

	if structure := strings.TrimSpace(detail.Structure); structure != "" {
		b.WriteString("### 结构点评\n\n")
		b.WriteString(structure + "\n\n")
	}

	if summary := strings.TrimSpace(detail.OverallSummary); summary != "" {
		b.WriteString("### 总评\n\n")
		b.WriteString(summary + "\n\n")
	}

	if revised := strings.TrimSpace(result.RevisedVersion); revised != "" {
		b.WriteString("### 满分范文参考\n\n")
		b.WriteString(blockquote(revised) + "\n\n")
	}

	b.WriteString("---\n\n")
}

// blockquote prefixes every line so multi-paragraph text stays inside one
// quote block.
func blockquote(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
