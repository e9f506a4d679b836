package models

// GradingScores holds the three rubric sub-scores (each out of 5) and the
// total out of 15. Missing values decode as zero.
type GradingScores struct {
	Content   int `json:"dim1_score"`
	Language  int `json:"dim2_score"`
	Structure int `json:"dim3_score"`
	Total     int `json:"total"`
}

// SentenceCorrection is one original/revised/explanation triple.
type SentenceCorrection struct {
	Original    string `json:"original"`
	Revised     string `json:"revised"`
	Explanation string `json:"explanation"`
}

// ContentFeedback covers the content-points rubric dimension.
type ContentFeedback struct {
	Weakness   string `json:"weakness"`
	Suggestion string `json:"suggestion"`
}

// LanguageFeedback covers the language dimension with per-sentence edits.
type LanguageFeedback struct {
	SentenceCorrections []SentenceCorrection `json:"sentence_corrections"`
	GeneralComment      string               `json:"general_comment"`
}

// FeedbackDetail is the structured commentary attached to a grading result.
type FeedbackDetail struct {
	Content        ContentFeedback  `json:"content"`
	Language       LanguageFeedback `json:"language"`
	Structure      string           `json:"structure"`
	OverallSummary string           `json:"overall_summary"`
}

// GradingResult is the full reply for one graded essay page, mirroring the
// JSON schema the rubric prompt demands from the model.
type GradingResult struct {
	RecognizedText string         `json:"recognized_text"`
	EssayType      string         `json:"essay_type"`
	Scores         GradingScores  `json:"scores"`
	FeedbackDetail FeedbackDetail `json:"feedback_detail"`
	RevisedVersion string         `json:"revised_version"`
}

// GradingRecordModel archives one graded document when a database is
// configured. Survives restarts; the in-session store does not.
type GradingRecordModel struct {
	Base
	Label  string        `json:"label"  gorm:"index;not null"`
	Source string        `json:"source" gorm:"type:text"`
	Model  string        `json:"model"`
	Result GradingResult `json:"result" gorm:"type:longtext;serializer:json"`
	Total  int           `json:"total"`
}

func (GradingRecordModel) TableName() string { return "grading_records" }
