package api

import (
	"net/http"

	"github.com/swastiapp/swasti-server/internal/domain"
	"github.com/swastiapp/swasti-server/internal/http/response"
)

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthResponse{Status: "ok"}, s.logger)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	response.Success(w, domain.Categories, s.logger)
}
