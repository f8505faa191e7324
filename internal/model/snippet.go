package model

import "strings"

// Languages offered by the create form, in display order. The backend treats
// language as a free string, so other values are passed through untouched.
var Languages = []string{"python", "javascript", "cpp", "java", "sql", "html", "css"}

// DefaultLanguage is preselected for new snippets
const DefaultLanguage = "python"

// Tag is a label shared across snippets
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Snippet is a stored unit of code. IDs are assigned by the backend.
type Snippet struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Code        string     `json:"code"`
	Language    string     `json:"language"`
	IsPublic    bool       `json:"is_public"`
	Tags        []Tag      `json:"tags"`
	UserID      int64      `json:"user_id,omitempty"`
	ViewCount   int        `json:"view_count,omitempty"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

// TagNames returns the tag names in order
func (s Snippet) TagNames() []string {
	names := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Clone returns a copy that shares no slices or pointers with s
func (s Snippet) Clone() Snippet {
	c := s
	if s.Tags != nil {
		c.Tags = append([]Tag(nil), s.Tags...)
	}
	if s.CreatedAt != nil {
		t := *s.CreatedAt
		c.CreatedAt = &t
	}
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}

// SnippetInput is the create payload for POST /snippets
type SnippetInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Language    string   `json:"language"`
	IsPublic    bool     `json:"is_public"`
	Tags        []string `json:"tags"`
}

// SnippetPatch is the update payload for PUT /snippets/{id}. Nil fields are
// left unchanged by the server; a non-nil empty Tags clears all tags.
type SnippetPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Code        *string   `json:"code,omitempty"`
	Language    *string   `json:"language,omitempty"`
	IsPublic    *bool     `json:"is_public,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p SnippetPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Code == nil &&
		p.Language == nil && p.IsPublic == nil && p.Tags == nil
}

// ParseTags splits a comma separated tag field the way the create form
// does: entries are trimmed and empty ones dropped. The result is never nil.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// IsKnownLanguage reports whether lang is one of the form's choices
func IsKnownLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}
