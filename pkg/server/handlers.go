// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jllopis/agentdeck/pkg/agents"
	"github.com/jllopis/agentdeck/pkg/audit"
	"github.com/jllopis/agentdeck/pkg/errors"
	"github.com/jllopis/agentdeck/pkg/workflow"
	"github.com/jllopis/agentdeck/pkg/workflow/schema"
)

// ValidateResponse is the body of a validation answer.
type ValidateResponse struct {
	RunID  string          `json:"run_id"`
	Name   string          `json:"name,omitempty"`
	Result workflow.Result `json:"result"`
}

// NodeType is one entry of the node type listing.
type NodeType struct {
	Type string `json:"type"`
	schema.NodeTypeSchema
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleValidate always answers 200 for a document it could read: an
// invalid workflow is a normal result, not a request error.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.service.Load().Validate(r.Context(), workflow.Request{
		Data:   data,
		Format: requestFormat(r),
		Source: "http",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{RunID: run.ID, Name: run.Name, Result: run.Result})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.platform == nil {
		s.writeError(w, r, errors.New(errors.CodeNotFound, "workflow submission is not enabled", nil))
		return
	}
	data, err := s.readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	creator := agents.NewCreator(s.service.Load(), s.platform)
	sub, err := creator.Create(r.Context(), data, requestFormat(r), agents.Overrides{
		Name:        q.Get("name"),
		Description: q.Get("description"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"run_id":      sub.Run.ID,
		"workflow_id": sub.Response.WorkflowID,
	})
}

func (s *Server) handleNodeTypes(w http.ResponseWriter, r *http.Request) {
	registry := s.service.Load().Validator().Registry()
	out := make([]NodeType, 0, registry.Len())
	for _, name := range registry.Types() {
		def, _ := registry.Lookup(name)
		out = append(out, NodeType{Type: name, NodeTypeSchema: def})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNodeType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "type")
	def, ok := s.service.Load().Validator().Registry().Lookup(name)
	if !ok {
		s.writeError(w, r, errors.New(errors.CodeNotFound, "unknown node type", nil).WithContext("type", name))
		return
	}
	writeJSON(w, http.StatusOK, NodeType{Type: name, NodeTypeSchema: def})
}

func (s *Server) handleValidations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.CodeNotFound, "validation audit is not enabled", nil))
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	records, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, errors.New(errors.CodeInternal, "list validations", err))
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody+1))
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "read request body", err)
	}
	if int64(len(data)) > s.maxBody {
		return nil, errors.New(errors.CodeInvalidInput, "document too large", nil).
			WithContext("max_bytes", s.maxBody).
			WithStatus(http.StatusRequestEntityTooLarge)
	}
	return data, nil
}

// requestFormat picks the document format from ?format= or, failing that,
// a YAML content type.
func requestFormat(r *http.Request) workflow.Format {
	if f := r.URL.Query().Get("format"); f != "" {
		return workflow.ParseFormat(f)
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return workflow.FormatYAML
	}
	return workflow.FormatJSON
}

func parseFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{Name: q.Get("name")}
	if raw := q.Get("valid"); raw != "" {
		valid, err := strconv.ParseBool(raw)
		if err != nil {
			return audit.Filter{}, errors.New(errors.CodeInvalidInput, "invalid valid filter", err).WithContext("valid", raw)
		}
		filter.Valid = &valid
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return audit.Filter{}, errors.New(errors.CodeInvalidInput, "invalid limit", err).WithContext("limit", raw)
		}
		filter.Limit = limit
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := errors.As(err)
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]any{"error": e})
}
