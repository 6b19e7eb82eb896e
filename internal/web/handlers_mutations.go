package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/liftlog/internal/core"
)

type workoutGroupRequest struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type exerciseRequest struct {
	WorkoutGroupID int64  `json:"workoutGroupId"`
	Name           string `json:"name"`
	Notes          string `json:"notes"`
}

type dayRequest struct {
	DayName string `json:"dayName"`
	Notes   string `json:"notes"`
}

type moveRequest struct {
	Position int `json:"position"`
}

type tagRequest struct {
	WorkoutGroupID int64 `json:"workoutGroupId"`
}

type addSetRequest struct {
	ExerciseID int64 `json:"exerciseId"`
	core.SetMetrics
}

// ----------------------------------------------------------------------------
// Workout groups
// ----------------------------------------------------------------------------

func (s *Server) handleListWorkoutGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.service.ListWorkoutGroups(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetWorkoutGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := s.service.GetWorkoutGroup(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleCreateWorkoutGroup(w http.ResponseWriter, r *http.Request) {
	var req workoutGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := s.service.CreateWorkoutGroup(r.Context(), req.Name, req.Notes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleUpdateWorkoutGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req workoutGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := s.service.UpdateWorkoutGroup(r.Context(), id, req.Name, req.Notes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteWorkoutGroup(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.service.DeleteWorkoutGroup)
}

// ----------------------------------------------------------------------------
// Exercises
// ----------------------------------------------------------------------------

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.service.ListExercises(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	e, err := s.service.GetExercise(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	e, err := s.service.CreateExercise(r.Context(), req.WorkoutGroupID, req.Name, req.Notes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req exerciseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	e, err := s.service.UpdateExercise(r.Context(), id, req.WorkoutGroupID, req.Name, req.Notes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.service.DeleteExercise)
}

// ----------------------------------------------------------------------------
// Days
// ----------------------------------------------------------------------------

func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.service.ListDays(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.service.GetDay(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCreateDay appends a day at the end of the program.
func (s *Server) handleCreateDay(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.service.CreateDay(r.Context(), req.DayName, req.Notes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleUpdateDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req dayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.service.UpdateDay(r.Context(), id, req.DayName, req.Notes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.service.DeleteDay)
}

// handleMoveDay moves a day to a new 1-based position and returns the days
// in their new order.
func (s *Server) handleMoveDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	days, err := s.service.MoveDay(r.Context(), id, req.Position)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleDayWorkoutGroups(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	tags, err := s.service.DayWorkoutGroups(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleTagDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req tagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	tag, err := s.service.TagDay(r.Context(), id, req.WorkoutGroupID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleUntagDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	groupID, err := pathID(r, "groupID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.UntagDay(r.Context(), id, groupID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------------------------------------------------------
// Sets
// ----------------------------------------------------------------------------

func (s *Server) handleSetsByDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sets, err := s.service.SetsByDay(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	dayID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req addSetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	set, err := s.service.AddSet(r.Context(), dayID, req.ExerciseID, req.SetMetrics)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	set, err := s.service.GetSet(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req core.SetMetrics
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	set, err := s.service.UpdateSet(r.Context(), id, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.service.DeleteSet)
}

// handleMoveExercise moves an exercise to a new 1-based position in a day.
func (s *Server) handleMoveExercise(w http.ResponseWriter, r *http.Request) {
	dayID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	exerciseID, err := pathID(r, "exerciseID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.MoveExercise(r.Context(), dayID, exerciseID, req.Position); err != nil {
		s.respondError(w, r, err)
		return
	}
	sets, err := s.service.SetsByDay(r.Context(), dayID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

// ----------------------------------------------------------------------------
// Reset
// ----------------------------------------------------------------------------

// handleResetProgram deletes every day, tag and set, keeping the catalog.
func (s *Server) handleResetProgram(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearProgram(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// deleteByID runs a delete keyed by the {id} URL parameter.
func (s *Server) deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id int64) error) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
