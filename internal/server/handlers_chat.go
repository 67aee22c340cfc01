package server

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/claude/coachdesk/internal/models"
)

type postRequest struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

func (p *postRequest) validate() error {
	p.Body = strings.TrimSpace(p.Body)
	if p.Body == "" {
		return errors.New("body is required")
	}
	if p.Sender != models.SenderTrainer && p.Sender != models.SenderCustomer {
		return errors.New(`sender must be "trainer" or "customer"`)
	}
	return nil
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	msgs, err := s.db.ListMessages(r.Context(), customerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if _, err := s.db.GetCustomer(r.Context(), customerID); err != nil {
		s.writeError(w, err)
		return
	}
	m, err := s.db.CreateMessage(r.Context(), customerID, req.Sender, req.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleSendReply(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	reply, err := s.db.CreateReply(r.Context(), messageID, req.Sender, req.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.TargetLang = strings.TrimSpace(req.TargetLang)
	if strings.TrimSpace(req.Text) == "" || req.TargetLang == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text and targetLang are required"})
		return
	}
	if len(s.languages) > 0 && !slices.Contains(s.languages, req.TargetLang) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported targetLang " + req.TargetLang})
		return
	}
	if s.translator == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "translation is not configured"})
		return
	}

	out, err := s.translator.Translate(r.Context(), req.Text, req.TargetLang)
	if err != nil {
		s.log.Warn("translate failed", "lang", req.TargetLang, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, translateResponse{TranslatedText: out})
}
