package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/bookshouse/bookshouse-server/internal/http/response"
	"github.com/bookshouse/bookshouse-server/internal/service"
)

// handleContact delivers a contact form submission to the operator inbox.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req service.ContactRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	delivery, err := s.contactService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, delivery, s.logger)
}
