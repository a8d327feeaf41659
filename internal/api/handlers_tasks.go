package api

import (
	"bytes"
	"net/http"

	"github.com/dgallion1/quadboard/internal/board"
	"github.com/dgallion1/quadboard/internal/export"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.board.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var draft board.Draft
	if !s.decodeJSON(w, r, &draft) {
		return
	}
	task, err := s.board.Add(r.Context(), draft)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch board.Patch
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	task, err := s.board.Update(r.Context(), chi.URLParam(r, "taskID"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.board.Toggle(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Delete(r.Context(), chi.URLParam(r, "taskID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	removed, err := s.board.ClearCompleted(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	m, err := s.board.Matrix(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleBoardExport(w http.ResponseWriter, r *http.Request) {
	m, err := s.board.Matrix(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.BoardYAML(&buf, m); err != nil {
		s.fail(w, r, err)
		return
	}
	s.download(w, r, "board", export.FormatYAML, buf.Bytes())
}
