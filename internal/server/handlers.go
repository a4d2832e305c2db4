package server

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/julianstephens/grove/internal/constants"
	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/journal"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	store := s.svc.Store()
	if err := store.Ping(r.Context()); err != nil {
		writeError(w, r, grerrors.Upstream("ping", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": store.Describe()})
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Window(constants.EntryKind(chi.URLParam(r, "kind")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type addUserRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.AddUser(r.Context(), req.ID, req.DisplayName, req.AvatarURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type postEntryRequest struct {
	Kind    constants.EntryKind `json:"kind"`
	Content string              `json:"content"`
	Score   *int                `json:"score"`
	Shared  bool                `json:"shared"`
}

func (s *Server) handlePostEntry(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.PostEntry(r.Context(), journal.PostInput{
		UserID:  actor(r),
		Kind:    req.Kind,
		Content: req.Content,
		Score:   req.Score,
		Shared:  req.Shared,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

type editEntryRequest struct {
	Content    *string `json:"content"`
	Score      *int    `json:"score"`
	ClearScore bool    `json:"clear_score"`
	Shared     *bool   `json:"shared"`
}

func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	var req editEntryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.svc.EditEntry(r.Context(), journal.EditInput{
		EntryID:    chi.URLParam(r, "entryID"),
		UserID:     actor(r),
		Content:    req.Content,
		Score:      req.Score,
		ClearScore: req.ClearScore,
		Shared:     req.Shared,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Health(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Streak(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleWater(w http.ResponseWriter, r *http.Request) {
	watering, err := s.svc.Water(r.Context(), actor(r), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, watering)
}

func (s *Server) handleForest(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Forest(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type cheerRequest struct {
	Kind constants.PostKind `json:"kind"`
}

func (s *Server) handleCheer(w http.ResponseWriter, r *http.Request) {
	var req cheerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cheer, err := s.svc.Cheer(r.Context(), actor(r), chi.URLParam(r, "postID"), req.Kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cheer)
}

func (s *Server) handleListCheers(w http.ResponseWriter, r *http.Request) {
	kind := constants.PostKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = constants.PostMorning
	}
	cheers, err := s.svc.ListCheers(r.Context(), actor(r), chi.URLParam(r, "postID"), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cheers)
}

type annotateRequest struct {
	Correction string `json:"correction"`
	Prompt     string `json:"prompt"`
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req annotateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.svc.Annotate(r.Context(), journal.AnnotateInput{
		CoachID:    actor(r),
		UserID:     chi.URLParam(r, "userID"),
		Day:        chi.URLParam(r, "day"),
		Correction: req.Correction,
		Prompt:     req.Prompt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGetAnnotation(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.GetAnnotation(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type goalRequest struct {
	Text   string `json:"text"`
	Shared bool   `json:"shared"`
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svc.SetGoal(r.Context(), journal.GoalInput{
		UserID: actor(r),
		Period: constants.GoalPeriod(chi.URLParam(r, "period")),
		Text:   req.Text,
		Shared: req.Shared,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GetGoal(r.Context(), actor(r), constants.GoalPeriod(chi.URLParam(r, "period")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
