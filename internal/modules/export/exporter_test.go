package export

import (
	"strings"
	"testing"

	"github.com/inkgrade/core/internal/models"
)

type fakeSource struct {
	views   []models.DocumentView
	results map[string]*models.GradingResult
}

func (f *fakeSource) DocumentViews() []models.DocumentView { return f.views }

func (f *fakeSource) Result(id string) (*models.GradingResult, bool) {
	r, ok := f.results[id]
	return r, ok
}

func gradedDoc(id, label string) (models.DocumentView, *models.GradingResult) {
	view := models.DocumentView{
		Document: models.Document{ID: id, Label: label},
		Status:   models.DocumentGraded,
	}
	result := &models.GradingResult{
		RecognizedText: "Dear Tom,\nHow are you?",
		EssayType:      "应用文",
		Scores:         models.GradingScores{Content: 4, Language: 3, Structure: 4, Total: 11},
		FeedbackDetail: models.FeedbackDetail{
			Content: models.ContentFeedback{Weakness: "要点缺失", Suggestion: "补充细节"},
			Language: models.LanguageFeedback{
				SentenceCorrections: []models.SentenceCorrection{
					{Original: "I has a pen.", Revised: "I have a pen.", Explanation: "主谓一致"},
					{Original: "He go home.", Revised: "He goes home.", Explanation: "第三人称单数"},
				},
				GeneralComment: "语法基础尚可",
			},
			Structure:      "衔接自然",
			OverallSummary: "整体不错",
		},
		RevisedVersion: "Dear Tom, revised...",
	}
	return view, result
}

func TestBuildReportSkipsUnresultedDocuments(t *testing.T) {
	gradedView, result := gradedDoc("1", "essay-1.png")
	src := &fakeSource{
		views: []models.DocumentView{
			gradedView,
			{Document: models.Document{ID: "2", Label: "essay-2.png"}, Status: models.DocumentPending},
			{Document: models.Document{ID: "3", Label: "essay-3.png"}, Status: models.DocumentFailed},
		},
		results: map[string]*models.GradingResult{"1": result},
	}

	report, err := BuildReport(src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.Included != 1 {
		t.Fatalf("expected 1 included, got %d", report.Included)
	}
	if !strings.Contains(report.Markdown, "## essay-1.png") {
		t.Fatalf("graded document missing from report")
	}
	if strings.Contains(report.Markdown, "essay-2.png") || strings.Contains(report.Markdown, "essay-3.png") {
		t.Fatalf("unresulted documents must be skipped")
	}
}

func TestBuildReportSections(t *testing.T) {
	view, result := gradedDoc("1", "essay-1.png")
	src := &fakeSource{
		views:   []models.DocumentView{view},
		results: map[string]*models.GradingResult{"1": result},
	}

	report, err := BuildReport(src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	md := report.Markdown

	for _, want := range []string{
		"| 内容要点 | 4/5 |",
		"| 语言表达 | 3/5 |",
		"| 结构衔接 | 4/5 |",
		"| **总分** | **11/15** |",
		"1. 原句: I has a pen.",
		"2. 原句: He go home.",
		"### 满分范文参考",
		"> Dear Tom,",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q\n%s", want, md)
		}
	}
}

func TestBuildReportEmptyIsError(t *testing.T) {
	src := &fakeSource{
		views: []models.DocumentView{
			{Document: models.Document{ID: "1", Label: "a.png"}, Status: models.DocumentPending},
		},
		results: map[string]*models.GradingResult{},
	}
	_, err := BuildReport(src)
	if err == nil {
		t.Fatalf("expect export error")
	}
	if _, ok := err.(*ExportError); !ok {
		t.Fatalf("expect *ExportError, got %T", err)
	}
}

func TestBuildReportPreservesListOrder(t *testing.T) {
	viewA, resultA := gradedDoc("a", "alpha.png")
	viewB, resultB := gradedDoc("b", "beta.png")
	src := &fakeSource{
		views:   []models.DocumentView{viewA, viewB},
		results: map[string]*models.GradingResult{"a": resultA, "b": resultB},
	}

	report, err := BuildReport(src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	first := strings.Index(report.Markdown, "## alpha.png")
	second := strings.Index(report.Markdown, "## beta.png")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("sections out of order: alpha=%d beta=%d", first, second)
	}
}

func TestRenderHTMLDocument(t *testing.T) {
	view, result := gradedDoc("1", "essay-1.png")
	src := &fakeSource{
		views:   []models.DocumentView{view},
		results: map[string]*models.GradingResult{"1": result},
	}
	report, err := BuildReport(src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	html, err := RenderHTMLDocument("作文批改报告", report.Markdown)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>作文批改报告</title>",
		"<table>",
		"essay-1.png",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}
