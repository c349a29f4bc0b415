package models

// authentication responses
type AuthResponse struct {
	Token  string `json:"token"`
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

// one started interview with its generated questions
type InterviewSession struct {
	ID        string     `json:"id"`
	JobTitle  string     `json:"jobTitle"`
	Questions []Question `json:"questions"`
}

// grading result for one submitted answer
type AnswerFeedback struct {
	Score      int    `json:"score"`
	AIFeedback string `json:"aiFeedback"`
}

// one past interview in the history listing
type HistoryEntry struct {
	ID           string `json:"id"`
	JobTitle     string `json:"jobTitle"`
	RoundType    string `json:"roundType"`
	OverallScore int    `json:"overallScore"`
	CreatedAt    string `json:"createdAt"`
}

// remote code execution result
type ExecuteResponse struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	Stdout        string `json:"stdout,omitempty"`
	Stderr        string `json:"stderr,omitempty"`
	CompileOutput string `json:"compile_output,omitempty"`
	Time          string `json:"time,omitempty"`
	Memory        int    `json:"memory,omitempty"`
}

// uploaded resume metadata
type ResumeUpload struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	UserID   string `json:"userId"`
}

// resume analysis result
type ResumeAnalysis struct {
	OverallScore int      `json:"overallScore"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Keywords     []string `json:"keywords"`
}

type VoiceChatResponse struct {
	Reply string `json:"reply"`
}

type VoiceFeedback struct {
	Score        int    `json:"score"`
	FeedbackText string `json:"feedbackText"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}
