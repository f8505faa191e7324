package fakeapi

import (
	"net/http"
	"strconv"

	"github.com/existflow/snipvault/internal/model"
	"github.com/labstack/echo/v4"
)

// tagsFor resolves names to tags, creating missing ones. Caller holds s.mu.
func (s *Server) tagsFor(names []string) []model.Tag {
	out := make([]model.Tag, 0, len(names))
	for _, name := range names {
		var found *model.Tag
		for i := range s.tags {
			if s.tags[i].Name == name {
				found = &s.tags[i]
				break
			}
		}
		if found == nil {
			s.nextTagID++
			s.tags = append(s.tags, model.Tag{ID: s.nextTagID, Name: name})
			found = &s.tags[len(s.tags)-1]
		}
		out = append(out, *found)
	}
	return out
}

// find returns the snippet with id. Caller holds s.mu.
func (s *Server) find(id int64) (int, *snippet) {
	for i, sn := range s.snippets {
		if sn.ID == id {
			return i, sn
		}
	}
	return -1, nil
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fail(http.StatusUnprocessableEntity, "snippet id must be an integer")
	}
	return id, nil
}

func snapshot(list []*snippet, keep func(*snippet) bool) []model.Snippet {
	out := []model.Snippet{}
	for _, sn := range list {
		if keep(sn) {
			out = append(out, sn.Clone())
		}
	}
	return out
}

func (s *Server) handleCreate(c echo.Context) error {
	var in model.SnippetInput
	if err := c.Bind(&in); err != nil {
		return fail(http.StatusUnprocessableEntity, "Invalid request body")
	}
	if in.Title == "" || in.Code == "" || in.Language == "" {
		return fail(http.StatusUnprocessableEntity, "title, code and language are required")
	}

	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSnipID++
	now := model.Timestamp{Time: s.now().UTC()}
	sn := &snippet{
		Snippet: model.Snippet{
			ID:          s.nextSnipID,
			Title:       in.Title,
			Description: in.Description,
			Code:        in.Code,
			Language:    in.Language,
			IsPublic:    in.IsPublic,
			Tags:        s.tagsFor(in.Tags),
			UserID:      u.ID,
			CreatedAt:   &now,
			UpdatedAt:   &now,
		},
		Owner: u.Username,
	}
	s.snippets = append(s.snippets, sn)

	return c.JSON(http.StatusOK, sn.Clone())
}

func (s *Server) handleList(c echo.Context) error {
	owner := currentUser(c).Username

	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(http.StatusOK, snapshot(s.snippets, func(sn *snippet) bool {
		return sn.Owner == owner
	}))
}

func (s *Server) handleListPublic(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(http.StatusOK, snapshot(s.snippets, func(sn *snippet) bool {
		return sn.IsPublic
	}))
}

func (s *Server) handleGet(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	owner := currentUser(c).Username

	s.mu.Lock()
	defer s.mu.Unlock()

	_, sn := s.find(id)
	if sn == nil {
		return fail(http.StatusNotFound, "Snippet not found")
	}
	if sn.Owner != owner && !sn.IsPublic {
		return fail(http.StatusForbidden, "Access denied")
	}
	if sn.IsPublic {
		sn.ViewCount++
	}
	return c.JSON(http.StatusOK, sn.Clone())
}

func (s *Server) handleUpdate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch model.SnippetPatch
	if err := c.Bind(&patch); err != nil {
		return fail(http.StatusUnprocessableEntity, "Invalid request body")
	}
	owner := currentUser(c).Username

	s.mu.Lock()
	defer s.mu.Unlock()

	_, sn := s.find(id)
	if sn == nil {
		return fail(http.StatusNotFound, "Snippet not found")
	}
	if sn.Owner != owner {
		return fail(http.StatusForbidden, "Access denied")
	}

	// empty strings leave title, code and language unchanged
	if patch.Title != nil && *patch.Title != "" {
		sn.Title = *patch.Title
	}
	if patch.Description != nil {
		sn.Description = *patch.Description
	}
	if patch.Code != nil && *patch.Code != "" {
		sn.Code = *patch.Code
	}
	if patch.Language != nil && *patch.Language != "" {
		sn.Language = *patch.Language
	}
	if patch.IsPublic != nil {
		sn.IsPublic = *patch.IsPublic
	}
	if patch.Tags != nil {
		sn.Tags = s.tagsFor(*patch.Tags)
	}
	now := model.Timestamp{Time: s.now().UTC()}
	sn.UpdatedAt = &now

	return c.JSON(http.StatusOK, sn.Clone())
}

func (s *Server) handleDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	owner := currentUser(c).Username

	s.mu.Lock()
	defer s.mu.Unlock()

	i, sn := s.find(id)
	if sn == nil {
		return fail(http.StatusNotFound, "Snippet not found")
	}
	if sn.Owner != owner {
		return fail(http.StatusForbidden, "Access denied")
	}
	s.snippets = append(s.snippets[:i], s.snippets[i+1:]...)

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleTags(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(http.StatusOK, append([]model.Tag{}, s.tags...))
}
