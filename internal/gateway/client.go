// Package gateway is the sole boundary to the InterviewFlow backend.
// Every remote operation the client performs goes through Client; all
// failures come back as *Error with a stable code.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rahul-150705/interviewflow-pro/internal/identity"
	"github.com/Rahul-150705/interviewflow-pro/internal/metrics"
	"github.com/Rahul-150705/interviewflow-pro/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu      sync.RWMutex
	session *identity.Session
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetSession installs the identity used for bearer injection. A nil
// session means requests go out unauthenticated.
func (c *Client) SetSession(session *identity.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
}

func (c *Client) Session() *identity.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) authorize(req *http.Request) {
	if auth := c.Session().Authorization(); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// doJSON issues one JSON request and decodes a 2xx body into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Code: ErrCodeInternal, Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Code: ErrCodeInternal, Message: "failed to build request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		code := transportCode(err)
		metrics.ObserveGateway(op, code, time.Since(start))
		c.logger.Warn("Backend request failed",
			zap.String("op", op),
			zap.String("code", code),
			zap.Error(err))
		return &Error{Op: op, Code: code, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := c.errorFromResponse(op, resp)
		metrics.ObserveGateway(op, gwErr.Code, time.Since(start))
		c.logger.Warn("Backend request rejected",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("code", gwErr.Code))
		return gwErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.ObserveGateway(op, ErrCodeDecode, time.Since(start))
			return &Error{Op: op, Code: ErrCodeDecode, Status: resp.StatusCode,
				Message: "failed to decode response body", Err: err}
		}
	}

	metrics.ObserveGateway(op, "ok", time.Since(start))
	return nil
}

func (c *Client) errorFromResponse(op string, resp *http.Response) *Error {
	gwErr := &Error{
		Op:      op,
		Code:    ErrCodeHTTP,
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
	}

	var body models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Code != "" {
		gwErr.Code = body.Code
		gwErr.Message = body.Message
	}
	return gwErr
}

func (c *Client) Login(ctx context.Context, req *models.LoginRequest) (*identity.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	if err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	session := &identity.Session{Token: resp.Token, Email: resp.Email, UserID: resp.UserID}
	c.SetSession(session)
	return session, nil
}

func (c *Client) Register(ctx context.Context, req *models.RegisterRequest) (*identity.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	if err := c.doJSON(ctx, "register", http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}

	session := &identity.Session{Token: resp.Token, Email: resp.Email, UserID: resp.UserID}
	c.SetSession(session)
	return session, nil
}

func (c *Client) StartInterview(ctx context.Context, req *models.StartInterviewRequest) (*models.InterviewSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp models.InterviewSession
	if err := c.doJSON(ctx, "start_interview", http.MethodPost, "/interview/start", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, questionID, answer string) (*models.AnswerFeedback, error) {
	req := &models.SubmitAnswerRequest{Answer: answer}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp models.AnswerFeedback
	path := "/interview/" + questionID + "/answer"
	if err := c.doJSON(ctx, "submit_answer", http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) History(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	var resp []models.HistoryEntry
	query := url.Values{"userId": {userID}}
	path := "/interview/history?" + query.Encode()
	if err := c.doJSON(ctx, "history", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DownloadReport fetches the PDF report for one interview. The filename
// comes from the Content-Disposition header when the backend sends one.
func (c *Client) DownloadReport(ctx context.Context, interviewID string) (string, []byte, error) {
	const op = "download_report"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/interview/"+interviewID+"/download-pdf", nil)
	if err != nil {
		return "", nil, &Error{Op: op, Code: ErrCodeInternal, Message: "failed to build request", Err: err}
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		code := transportCode(err)
		metrics.ObserveGateway(op, code, time.Since(start))
		return "", nil, &Error{Op: op, Code: code, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := c.errorFromResponse(op, resp)
		metrics.ObserveGateway(op, gwErr.Code, time.Since(start))
		return "", nil, gwErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveGateway(op, ErrCodeNetwork, time.Since(start))
		return "", nil, &Error{Op: op, Code: ErrCodeNetwork, Message: "failed to read report body", Err: err}
	}

	filename := "interview-report.pdf"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	}

	metrics.ObserveGateway(op, "ok", time.Since(start))
	return filename, data, nil
}

func (c *Client) ExecuteCode(ctx context.Context, req *models.ExecuteRequest) (*models.ExecuteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp models.ExecuteResponse
	if err := c.doJSON(ctx, "execute_code", http.MethodPost, "/compiler/execute", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UploadResume(ctx context.Context, filename string, file io.Reader, userID string) (*models.ResumeUpload, error) {
	fields := map[string]string{"userId": userID}

	var resp models.ResumeUpload
	if err := c.doMultipart(ctx, "upload_resume", "/resume/upload", filename, file, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AnalyzeResume(ctx context.Context, filename string, file io.Reader, jobDescription, userID string) (*models.ResumeAnalysis, error) {
	fields := map[string]string{"userId": userID}
	if jobDescription != "" {
		fields["jobDescription"] = jobDescription
	}

	var resp models.ResumeAnalysis
	if err := c.doMultipart(ctx, "analyze_resume", "/resume-analyzer/analyze", filename, file, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doMultipart(ctx context.Context, op, path, filename string, file io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return &Error{Op: op, Code: ErrCodeInternal, Message: "failed to build upload", Err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &Error{Op: op, Code: ErrCodeInternal, Message: "failed to read upload file", Err: err}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return &Error{Op: op, Code: ErrCodeInternal, Message: "failed to build upload", Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return &Error{Op: op, Code: ErrCodeInternal, Message: "failed to build upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return &Error{Op: op, Code: ErrCodeInternal, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, op, out)
}

func (c *Client) VoiceChat(ctx context.Context, message, interviewID string) (string, error) {
	req := &models.VoiceChatRequest{Message: message, InterviewID: interviewID}
	if err := req.Validate(); err != nil {
		return "", err
	}

	var resp models.VoiceChatResponse
	if err := c.doJSON(ctx, "voice_chat", http.MethodPost, "/voice-interview/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

func (c *Client) VoiceSubmit(ctx context.Context, req *models.VoiceSubmitRequest) (*models.VoiceFeedback, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp models.VoiceFeedback
	if err := c.doJSON(ctx, "voice_submit", http.MethodPost, "/voice-interview/submit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
