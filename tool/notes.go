package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// snippetLimit caps the plain-text snippet extracted from a note body.
const snippetLimit = 280

// NotesSearch queries a social-content notes endpoint (Xiaohongshu-style
// review posts) for word-of-mouth signals: taste, atmosphere, scene fit.
// Note bodies arrive as HTML fragments and are reduced to plain-text
// snippets before they reach the summarizer.
type NotesSearch struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Client     *http.Client
}

var _ Invoker = (*NotesSearch)(nil)

// NotesOption configures a NotesSearch tool.
type NotesOption func(*NotesSearch)

// WithNotesBaseURL sets the notes endpoint URL.
func WithNotesBaseURL(baseURL string) NotesOption {
	return func(n *NotesSearch) {
		n.BaseURL = baseURL
	}
}

// WithNotesMaxResults sets the number of notes to request (1-20).
func WithNotesMaxResults(count int) NotesOption {
	return func(n *NotesSearch) {
		if count < 1 {
			count = 1
		}
		if count > 20 {
			count = 20
		}
		n.MaxResults = count
	}
}

// WithNotesClient sets the HTTP client used for requests.
func WithNotesClient(client *http.Client) NotesOption {
	return func(n *NotesSearch) {
		n.Client = client
	}
}

// NewNotesSearch creates a new notes search tool.
// If apiKey is empty, it tries to read from XHS_API_KEY environment variable.
func NewNotesSearch(apiKey string, opts ...NotesOption) (*NotesSearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("XHS_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("XHS_API_KEY not set")
	}

	n := &NotesSearch{
		APIKey:     apiKey,
		BaseURL:    "https://edith.xiaohongshu.com/api/sns/web/v1/search/notes",
		MaxResults: 10,
		Client:     &http.Client{},
	}

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// Name returns the registry name of the tool.
func (n *NotesSearch) Name() string {
	return NameNotesSearch
}

// Description returns the planner-facing description of the tool.
func (n *NotesSearch) Description() string {
	return "Search social review notes for real diner experiences: taste, atmosphere " +
		"and scene clues that validate a match. Input is a mixed-language keyword query."
}

// notesResponse is the wire shape of the notes endpoint.
type notesResponse struct {
	Notes []struct {
		Title       string `json:"title"`
		ContentHTML string `json:"content_html"`
		Likes       int    `json:"likes"`
		URL         string `json:"url"`
	} `json:"notes"`
}

// Invoke performs one notes search. params must carry a "query" string.
func (n *NotesSearch) Invoke(ctx context.Context, params map[string]any) (any, error) {
	query, _ := params["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("xhs.search: query parameter is required")
	}

	values := url.Values{}
	values.Set("keyword", query)
	values.Set("limit", fmt.Sprintf("%d", n.MaxResults))

	reqURL := fmt.Sprintf("%s?%s", n.BaseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.APIKey)

	resp, err := n.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notes api returned status: %d", resp.StatusCode)
	}

	var result notesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	rows := make([]map[string]any, 0, len(result.Notes))
	for _, note := range result.Notes {
		rows = append(rows, map[string]any{
			"title":   note.Title,
			"snippet": htmlToSnippet(note.ContentHTML),
			"likes":   note.Likes,
			"url":     note.URL,
		})
	}
	return rows, nil
}

// htmlToSnippet strips markup from a note body and collapses whitespace.
func htmlToSnippet(htmlFragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlFragment))
	if err != nil {
		return strings.TrimSpace(htmlFragment)
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if len(text) > snippetLimit {
		text = text[:snippetLimit]
	}
	return text
}
