package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"expense-tracker/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AITransaction is one transaction read from free text or a receipt.
type AITransaction struct {
	Amount       decimal.Decimal
	Type         string // "expense" or "income"
	Date         string // YYYY-MM-DD, may be empty or garbage
	CategoryName string
	Note         string
	Merchant     string
	Confidence   float64
}

// Extractor turns unstructured input into a transaction draft.
type Extractor interface {
	ExtractFromText(ctx context.Context, text string) (*AITransaction, error)
	ExtractFromFile(ctx context.Context, data []byte, fileName, mimeType, note string) (*AITransaction, error)
}

// DisabledExtractor is used when no GigaChat key is configured.
type DisabledExtractor struct{}

func (DisabledExtractor) ExtractFromText(context.Context, string) (*AITransaction, error) {
	return nil, ErrAIUnavailable
}

func (DisabledExtractor) ExtractFromFile(context.Context, []byte, string, string, string) (*AITransaction, error) {
	return nil, ErrAIUnavailable
}

// completer sends a single user prompt and returns the model reply.
type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type gigagoCompleter struct {
	model *gigago.GenerativeModel
}

func (g *gigagoCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", &UpstreamError{Body: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return "", ErrMalformedExtraction
	}
	return resp.Choices[0].Message.Content, nil
}

// GigaChatExtractor reads text through the gigago client and receipts
// through the GigaChat files + chat completions REST API.
type GigaChatExtractor struct {
	client   *gigago.Client
	text     completer
	api      *gigaChatAPI
	receipts *ReceiptReader
	logger   *zap.Logger
	now      func() time.Time
}

const systemInstruction = `You extract exactly one financial transaction from user input (free text or receipt contents).
Reply with a single JSON object and nothing else, no markdown, no comments.`

func NewGigaChatExtractor(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatExtractor, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = systemInstruction
	model.Temperature = 0.1

	httpClient := &http.Client{Timeout: 90 * time.Second}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	e := newGigaChatExtractor(&gigagoCompleter{model: model}, newGigaChatAPI(cfg, httpClient, logger), logger)
	e.client = client
	logger.Info("GigaChat extractor ready", zap.String("model", cfg.Model))
	return e, nil
}

func newGigaChatExtractor(text completer, api *gigaChatAPI, logger *zap.Logger) *GigaChatExtractor {
	return &GigaChatExtractor{
		text:     text,
		api:      api,
		receipts: NewReceiptReader(logger),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (e *GigaChatExtractor) ExtractFromText(ctx context.Context, text string) (*AITransaction, error) {
	reply, err := e.text.Complete(ctx, buildExtractionPrompt(text, "", e.now()))
	if err != nil {
		return nil, err
	}
	return e.finish(reply, "text")
}

// ExtractFromFile handles PDF receipts through their text layer and falls
// back to the vision model for images and scanned PDFs.
func (e *GigaChatExtractor) ExtractFromFile(ctx context.Context, data []byte, fileName, mimeType, note string) (*AITransaction, error) {
	kind, err := receiptKind(fileName, mimeType)
	if err != nil {
		return nil, err
	}

	if kind == receiptPDF {
		text, err := e.receipts.PDFText(data)
		if err == nil {
			reply, err := e.text.Complete(ctx, buildExtractionPrompt(text, note, e.now()))
			if err != nil {
				return nil, err
			}
			return e.finish(reply, "pdf")
		}
		e.logger.Info("PDF has no text layer, sending it to the vision model", zap.Error(err))
	}

	fileID, err := e.api.UploadFile(ctx, data, fileName, uploadContentType(fileName, mimeType, kind))
	if err != nil {
		return nil, err
	}
	reply, err := e.api.CompleteWithFile(ctx, fileID, buildExtractionPrompt("", note, e.now()))
	if err != nil {
		return nil, err
	}
	return e.finish(reply, "vision")
}

func (e *GigaChatExtractor) finish(reply, source string) (*AITransaction, error) {
	tx, err := parseExtraction(reply)
	if err != nil {
		e.logger.Warn("Malformed AI extraction", zap.String("source", source), zap.String("reply", reply))
		return nil, err
	}
	e.logger.Info("AI extraction completed",
		zap.String("source", source),
		zap.String("type", tx.Type),
		zap.Float64("confidence", tx.Confidence),
	)
	return tx, nil
}

func (e *GigaChatExtractor) Close() error {
	if e.client != nil {
		e.client.Close()
	}
	return nil
}

func buildExtractionPrompt(text, note string, now time.Time) string {
	var b strings.Builder
	b.WriteString(`Extract ONE financial transaction from the input below (text and/or attached receipt).
Return strictly one JSON object with exactly these keys:
{"amount": number, "type": "expense"|"income", "date": "YYYY-MM-DD", "categoryName": string, "note": string, "merchant": string, "confidence": number}

Rules:
- amount must be a positive number without currency signs.
- type must be "expense" or "income".
- date must be YYYY-MM-DD. If missing, use today's date: `)
	b.WriteString(now.Format(dayLayout))
	b.WriteString(`.
- categoryName is a short human category like "Groceries", "Transport", "Salary".
- merchant can be empty if unknown.
- confidence is between 0 and 1.
`)
	if text = strings.TrimSpace(sanitizeUTF8(text)); text != "" {
		b.WriteString("\nInput:\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	b.WriteString("\nExtra user note: ")
	b.WriteString(strings.TrimSpace(sanitizeUTF8(note)))
	return b.String()
}

var extractionKeys = []string{"amount", "type", "date", "categoryname", "note", "merchant", "confidence"}

// parseExtraction validates the model reply. Keys match case-insensitively;
// all seven must be present.
func parseExtraction(content string) (*AITransaction, error) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, ErrMalformedExtraction
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}
	fields := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		fields[strings.ToLower(k)] = v
	}
	for _, k := range extractionKeys {
		if _, ok := fields[k]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedExtraction, k)
		}
	}

	tx := &AITransaction{}

	amount := bytes.TrimSpace(fields["amount"])
	if len(amount) == 0 || amount[0] == '"' {
		return nil, fmt.Errorf("%w: amount is not a number", ErrMalformedExtraction)
	}
	if err := tx.Amount.UnmarshalJSON(amount); err != nil {
		return nil, fmt.Errorf("%w: amount: %v", ErrMalformedExtraction, err)
	}
	if !tx.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrMalformedExtraction)
	}

	var typ string
	if err := json.Unmarshal(fields["type"], &typ); err != nil {
		return nil, fmt.Errorf("%w: type: %v", ErrMalformedExtraction, err)
	}
	tx.Type = strings.ToLower(strings.TrimSpace(typ))
	if tx.Type != "expense" && tx.Type != "income" {
		return nil, fmt.Errorf("%w: type %q", ErrMalformedExtraction, typ)
	}

	for key, dst := range map[string]*string{
		"date":         &tx.Date,
		"categoryname": &tx.CategoryName,
		"note":         &tx.Note,
		"merchant":     &tx.Merchant,
	} {
		var v *string
		if err := json.Unmarshal(fields[key], &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedExtraction, key, err)
		}
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}

	if err := json.Unmarshal(fields["confidence"], &tx.Confidence); err != nil {
		return nil, fmt.Errorf("%w: confidence: %v", ErrMalformedExtraction, err)
	}
	if tx.Confidence < 0 || tx.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrMalformedExtraction, tx.Confidence)
	}

	return tx, nil
}

// gigaChatAPI is the part of the GigaChat REST API gigago does not cover:
// file upload and completions with attachments.
type gigaChatAPI struct {
	httpClient *http.Client
	baseURL    string
	oauthURL   string
	apiKey     string
	scope      string
	model      string
	logger     *zap.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func newGigaChatAPI(cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) *gigaChatAPI {
	return &gigaChatAPI{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		oauthURL:   cfg.OAuthURL,
		apiKey:     cfg.APIKey,
		scope:      cfg.Scope,
		model:      cfg.Model,
		logger:     logger,
	}
}

// token returns the cached access token, requesting a new one a minute
// before the old one expires.
func (a *gigaChatAPI) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Add(time.Minute).Before(a.expiresAt) {
		return a.accessToken, nil
	}

	form := url.Values{}
	form.Set("scope", a.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.oauthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	// the key is already Base64-encoded client credentials
	req.Header.Set("Authorization", "Basic "+a.apiKey)

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"`
	}
	if err := a.do(req, &oauthResp); err != nil {
		return "", err
	}
	if oauthResp.AccessToken == "" {
		return "", &UpstreamError{Status: http.StatusOK, Body: "empty access token in OAuth response"}
	}

	a.accessToken = oauthResp.AccessToken
	a.expiresAt = time.Now().Add(30 * time.Minute)
	if oauthResp.ExpiresAt > 0 {
		a.expiresAt = time.UnixMilli(oauthResp.ExpiresAt)
	}
	a.logger.Debug("GigaChat access token obtained", zap.Time("expires_at", a.expiresAt))
	return a.accessToken, nil
}

// authorized sends a bearer request and forgets the token when the
// provider rejects it, so the next call requests a fresh one.
func (a *gigaChatAPI) authorized(req *http.Request, out interface{}) error {
	err := a.do(req, out)
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Status == http.StatusUnauthorized {
		a.mu.Lock()
		a.accessToken = ""
		a.mu.Unlock()
	}
	return err
}

// UploadFile stores the receipt with purpose "general" so completions can
// attach it, and returns the file id.
func (a *gigaChatAPI) UploadFile(ctx context.Context, data []byte, fileName, mimeType string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("purpose", "general"); err != nil {
		return "", fmt.Errorf("failed to write purpose field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteFileName(fileName)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	token, err := a.token(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	var uploadResp struct {
		ID string `json:"id"`
	}
	if err := a.authorized(req, &uploadResp); err != nil {
		return "", err
	}
	if uploadResp.ID == "" {
		return "", &UpstreamError{Status: http.StatusOK, Body: "file upload returned no id"}
	}

	a.logger.Info("File uploaded to GigaChat", zap.String("file_id", uploadResp.ID))
	return uploadResp.ID, nil
}

// CompleteWithFile asks the model about an uploaded file. Attachments are
// sent as [["file_id"]].
func (a *gigaChatAPI) CompleteWithFile(ctx context.Context, fileID, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"model": a.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": systemInstruction},
			{
				"role":        "user",
				"content":     prompt,
				"attachments": [][]string{{fileID}},
			},
		},
		"temperature": 0.1,
		"stream":      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	token, err := a.token(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := a.authorized(req, &completion); err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrMalformedExtraction
	}
	return completion.Choices[0].Message.Content, nil
}

// do sends req and decodes a 2xx JSON body into out. Other statuses come
// back as *UpstreamError with the body for diagnostics.
func (a *gigaChatAPI) do(req *http.Request, out interface{}) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &UpstreamError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &UpstreamError{Status: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.logger.Error("GigaChat request failed",
			zap.String("url", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(body)),
		)
		return &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}
	return nil
}

func quoteFileName(name string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
}
