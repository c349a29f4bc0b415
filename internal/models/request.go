package models

import (
	"strings"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// implements the Validator interface
func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return &ErrorResponse{
			Code:    "missing_email",
			Message: "Email field is required",
		}
	}

	if r.Password == "" {
		return &ErrorResponse{
			Code:    "missing_password",
			Message: "Password field is required",
		}
	}

	return nil
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ErrorResponse{
			Code:    "missing_name",
			Message: "Name field is required",
		}
	}

	return (&LoginRequest{Email: r.Email, Password: r.Password}).Validate()
}

type StartInterviewRequest struct {
	JobTitle       string    `json:"jobTitle"`
	JobDescription string    `json:"jobDescription"`
	RoundType      RoundType `json:"roundType"`
	UserID         string    `json:"userId"`
}

func (r *StartInterviewRequest) Validate() error {
	if strings.TrimSpace(r.JobTitle) == "" {
		return &ErrorResponse{
			Code:    "missing_job_title",
			Message: "Job title field is required",
		}
	}

	// default round keeps parity with the dashboard's default tab
	if r.RoundType == "" {
		r.RoundType = RoundBehavioral
	}

	if !r.RoundType.Valid() {
		return &ErrorResponse{
			Code:    "invalid_round_type",
			Message: "Round type must be one of: " + strings.Join(ValidRoundTypesList(), ", "),
		}
	}

	return nil
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if strings.TrimSpace(r.Answer) == "" {
		return &ErrorResponse{
			Code:    "missing_answer",
			Message: "Answer field is required",
		}
	}

	return nil
}

type ExecuteRequest struct {
	SourceCode string `json:"sourceCode"`
	Language   string `json:"language"`
	Stdin      string `json:"stdin,omitempty"`
}

func (r *ExecuteRequest) Validate() error {
	if strings.TrimSpace(r.SourceCode) == "" {
		return &ErrorResponse{
			Code:    "missing_source_code",
			Message: "Source code field is required",
		}
	}

	if r.Language == "" {
		return &ErrorResponse{
			Code:    "missing_language",
			Message: "Language field is required",
		}
	}

	return nil
}

type VoiceChatRequest struct {
	Message     string `json:"message"`
	InterviewID string `json:"interviewId"`
}

func (r *VoiceChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return &ErrorResponse{
			Code:    "missing_message",
			Message: "Message field is required",
		}
	}

	return nil
}

type VoiceSubmitRequest struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	UserAnswer   string `json:"userAnswer"`
}

func (r *VoiceSubmitRequest) Validate() error {
	if strings.TrimSpace(r.UserAnswer) == "" {
		return &ErrorResponse{
			Code:    "missing_answer",
			Message: "User answer field is required",
		}
	}

	return nil
}
