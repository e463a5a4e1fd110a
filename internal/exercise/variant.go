package exercise

// Variant describes one learning domain served by the shared exercise
// engine: where tasks come from, where progress goes and which payload
// keys carry the question, answer, item ID and optional extra info.
type Variant struct {
	Name         string   `yaml:"name"`
	Title        string   `yaml:"title"`
	ExercisePath string   `yaml:"exercise_path"`
	ProgressPath string   `yaml:"progress_path"`
	ItemsPath    string   `yaml:"items_path"`
	QuestionKey  string   `yaml:"question_key"`
	AnswerKey    string   `yaml:"answer_key"`
	IDKey        string   `yaml:"id_key"`
	ExtraKeys    []string `yaml:"extra_keys,omitempty"`
	ListColumns  []string `yaml:"list_columns"`
}

// Default payload keys.
const (
	DefaultQuestionKey = "question_text"
	DefaultAnswerKey   = "answer_text"
	DefaultIDKey       = "id"
)

// ForeignWords is the foreign-word drill.
func ForeignWords() Variant {
	return Variant{
		Name:         "foreign",
		Title:        "Foreign words",
		ExercisePath: "/api/v1/foreign/exercise/",
		ProgressPath: "/api/v1/foreign/progress/",
		ItemsPath:    "/api/v1/foreign/",
		QuestionKey:  DefaultQuestionKey,
		AnswerKey:    DefaultAnswerKey,
		IDKey:        DefaultIDKey,
		ListColumns:  []string{"foreign_word", "native_word"},
	}
}

// GlossaryTerms is the glossary-term drill. It shows the term's extra
// info next to the question.
func GlossaryTerms() Variant {
	return Variant{
		Name:         "glossary",
		Title:        "Glossary terms",
		ExercisePath: "/api/v1/glossary/exercise/",
		ProgressPath: "/api/v1/glossary/progress/",
		ItemsPath:    "/api/v1/glossary/",
		QuestionKey:  DefaultQuestionKey,
		AnswerKey:    DefaultAnswerKey,
		IDKey:        DefaultIDKey,
		ExtraKeys:    []string{"info"},
		ListColumns:  []string{"term", "definition"},
	}
}

// WithDefaults fills empty payload keys with the defaults.
func (v Variant) WithDefaults() Variant {
	if v.QuestionKey == "" {
		v.QuestionKey = DefaultQuestionKey
	}
	if v.AnswerKey == "" {
		v.AnswerKey = DefaultAnswerKey
	}
	if v.IDKey == "" {
		v.IDKey = DefaultIDKey
	}
	if v.Title == "" {
		v.Title = v.Name
	}
	return v
}
