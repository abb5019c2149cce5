package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Sirneij/cryptoflow/internal/http/middleware"
	"github.com/Sirneij/cryptoflow/internal/http/response"
	"github.com/Sirneij/cryptoflow/internal/service"
)

// QAHandler serves questions, answers and the tag catalogue. Reads are
// public; every mutation requires the authenticated user from the
// request context.
type QAHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

func NewQAHandler(content *service.ContentService, logger *slog.Logger) *QAHandler {
	return &QAHandler{content: content, logger: logger}
}

type questionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

func (h *QAHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	question, err := h.content.AskQuestion(r.Context(), user.ID, service.AskQuestionInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, question)
}

func (h *QAHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.content.ListQuestions(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, questions)
}

func (h *QAHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.content.GetQuestion(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, question)
}

func (h *QAHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	questionID, err := uuid.Parse(chi.URLParam(r, "question_id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid question id")
		return
	}
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	question, err := h.content.UpdateQuestion(r.Context(), questionID, user.ID, service.UpdateQuestionInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, question)
}

func (h *QAHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	questionID, err := uuid.Parse(chi.URLParam(r, "question_id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid question id")
		return
	}
	if err := h.content.DeleteQuestion(r.Context(), questionID, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "question deleted"})
}

type answerRequest struct {
	Content string `json:"content"`
}

func (h *QAHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	questionID, err := uuid.Parse(chi.URLParam(r, "question_id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid question id")
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	answer, err := h.content.AnswerQuestion(r.Context(), questionID, user.ID, req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, answer)
}

func (h *QAHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	questionID, err := uuid.Parse(chi.URLParam(r, "question_id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid question id")
		return
	}
	answers, err := h.content.ListAnswers(r.Context(), questionID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, answers)
}

func (h *QAHandler) UpdateAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	answerID, err := uuid.Parse(chi.URLParam(r, "answer_id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid answer id")
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.content.UpdateAnswer(r.Context(), answerID, user.ID, req.Content); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "answer updated"})
}

func (h *QAHandler) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	answerID, err := uuid.Parse(chi.URLParam(r, "answer_id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid answer id")
		return
	}
	if err := h.content.DeleteAnswer(r.Context(), answerID, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "answer deleted"})
}

func (h *QAHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.content.ListTags(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, tags)
}
