package generation

// ArtifactKind identifies what a request produces.
type ArtifactKind string

// Artifact kinds
const (
	KindQuiz           ArtifactKind = "quiz"
	KindFlashcards     ArtifactKind = "flashcards"
	KindMindmap        ArtifactKind = "mindmap"
	KindGrade          ArtifactKind = "theory-grade"
	KindSummary        ArtifactKind = "summary"
	KindChat           ArtifactKind = "chat-answer"
	KindSectionSummary ArtifactKind = "section-summary"
)

// QuizMode selects the question shapes of a quiz.
type QuizMode string

// Quiz modes
const (
	QuizModeOptions QuizMode = "options"
	QuizModeTheory  QuizMode = "theory"
	QuizModeBoth    QuizMode = "both"
)

// Question types
const (
	QuestionTypeOptions = "options"
	QuestionTypeTheory  = "theory"
)

// SummaryLength selects the size of a summary.
type SummaryLength string

// Summary lengths
const (
	SummaryShort  SummaryLength = "short"
	SummaryMedium SummaryLength = "medium"
	SummaryLong   SummaryLength = "long"
)

// SectionSize selects the size of a mind-map section explanation.
type SectionSize string

// Section sizes
const (
	SectionSmall  SectionSize = "small"
	SectionMedium SectionSize = "medium"
)

// OptionLabels is the closed set of multiple-choice labels, in order.
var OptionLabels = []string{"A", "B", "C", "D"}

// RootID is the fixed id of every mind-map root.
const RootID = "root"

// QuizRequest asks for a quiz generated from SourceText.
type QuizRequest struct {
	SourceText    string
	QuestionCount int
	Mode          QuizMode
	// Provider optionally bypasses provider precedence.
	Provider string
}

// FlashcardsRequest asks for a flashcard deck generated from SourceText.
type FlashcardsRequest struct {
	SourceText string
	CardCount  int
	Provider   string
}

// MindmapRequest asks for a mind map generated from SourceText.
type MindmapRequest struct {
	SourceText string
	MaxDepth   int
	MaxNodes   int
	Title      string
	Provider   string
}

// GradeItem is one free-text answer to grade.
type GradeItem struct {
	ID             int    `json:"id"`
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
	UserAnswer     string `json:"user_answer"`
}

// GradeRequest asks for scores of free-text answers.
type GradeRequest struct {
	Items    []GradeItem
	Provider string
}

// SummaryRequest asks for a bullet summary of SourceText.
type SummaryRequest struct {
	SourceText string
	Focus      string
	Length     SummaryLength
	Provider   string
}

// ChatRequest asks the study assistant a question.
type ChatRequest struct {
	Message  string
	Provider string
}

// SectionSummaryRequest asks for an explanation of one mind-map topic.
type SectionSummaryRequest struct {
	SourceText string
	Topic      string
	Size       SectionSize
	Provider   string
}

// Option is one labelled multiple-choice option.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is one quiz item. Options-type questions carry Options and
// Answer; theory-type questions carry AnswerText.
type Question struct {
	ID          int      `json:"id"`
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Options     []Option `json:"options,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	AnswerText  string   `json:"answer_text,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Quiz is a validated quiz.
type Quiz struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	Provider  string     `json:"provider"`
}

// Card is one flashcard.
type Card struct {
	ID    int    `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardSet is a validated flashcard deck.
type FlashcardSet struct {
	Title    string `json:"title"`
	Cards    []Card `json:"cards"`
	Provider string `json:"provider"`
}

// Node is one mind-map node. A node owns its children.
type Node struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Children []*Node `json:"children"`
}

// MindMap is a normalized mind map.
type MindMap struct {
	Title    string `json:"title"`
	Root     *Node  `json:"root"`
	Provider string `json:"provider"`
}

// Grade is the score of one answer.
type Grade struct {
	ID    int     `json:"id"`
	Score float64 `json:"score"`
}

// GradeSet holds the scores that could be recovered from the grader.
type GradeSet struct {
	Grades   []Grade `json:"grades"`
	Provider string  `json:"provider"`
}

// Summary is a bullet summary.
type Summary struct {
	Summary  string `json:"summary"`
	Provider string `json:"provider"`
}

// ChatAnswer is the assistant's reply.
type ChatAnswer struct {
	Answer   string `json:"answer"`
	Provider string `json:"provider"`
}

// SectionSummary explains one mind-map topic.
type SectionSummary struct {
	Summary  string `json:"summary"`
	Provider string `json:"provider"`
}
