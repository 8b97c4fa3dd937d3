// Package extract pulls plain text out of candidate resumes referenced by
// URL. Extraction is best effort: the screening worker treats any failure
// here as "no resume text", never as a reason to skip the candidate.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// maxResumeBytes caps the downloaded document size.
const maxResumeBytes = 20 << 20

// ResumeExtractor downloads a resume document and extracts its text based
// on the file extension, pdf and docx being the formats candidates upload.
type ResumeExtractor struct {
	client *http.Client
}

// NewResumeExtractor creates an extractor with a bounded request timeout.
func NewResumeExtractor() *ResumeExtractor {
	return &ResumeExtractor{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// ExtractText fetches the document at rawURL and returns its plain text.
func (e *ResumeExtractor) ExtractText(ctx context.Context, rawURL string) (string, error) {
	data, err := e.download(ctx, rawURL)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(urlPath(rawURL)))
	switch ext {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	case ".txt", "":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported resume file type: %s", ext)
	}
}

func (e *ResumeExtractor) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid resume URL: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resume: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch resume: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResumeBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read resume body: %w", err)
	}
	return data, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, textReader); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return sb.String(), nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer func() {
		_ = doc.Close()
	}()

	content := doc.Editable().GetContent()
	// The raw content is document XML; strip the markup, keep the runs.
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = xmlTagPattern.ReplaceAllString(content, "")
	return strings.TrimSpace(content), nil
}

func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
