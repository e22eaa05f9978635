package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/storefront-debt-ledger/internal/domain/person"
	"github.com/storefront-debt-ledger/internal/platform/persistence"
)

// PersonHandler handles HTTP requests for person mapping operations
type PersonHandler struct {
	repo   person.Repository
	logger *slog.Logger
}

// NewPersonHandler creates a new person mapping handler
func NewPersonHandler(logger *slog.Logger, repo person.Repository) *PersonHandler {
	return &PersonHandler{
		repo:   repo,
		logger: logger,
	}
}

// List retrieves all person mappings
func (h *PersonHandler) List(c *gin.Context) {
	mappings, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list person mappings", "error", err)
		h.respondStorageError(c, err)
		return
	}

	out := make([]MappingResponse, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, mapMappingToResponse(m))
	}
	RespondOK(c, MappingListResponse{Mappings: out})
}

// Upsert creates or replaces the mapping of a responsible party
func (h *PersonHandler) Upsert(c *gin.Context) {
	partyID := c.Param("partyId")

	var req UpsertMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	mapping, err := person.NewMapping(partyID, req.PersonID)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.repo.Upsert(c.Request.Context(), mapping); err != nil {
		h.logger.Error("Failed to upsert person mapping", "responsible_party_id", partyID, "error", err)
		h.respondStorageError(c, err)
		return
	}

	RespondOK(c, mapMappingToResponse(mapping))
}

// Delete removes the mapping of a responsible party, returns 404 if absent
func (h *PersonHandler) Delete(c *gin.Context) {
	partyID := c.Param("partyId")

	if err := h.repo.Delete(c.Request.Context(), partyID); err != nil {
		if errors.Is(err, person.ErrUnmappedParty{}) {
			RespondNotFound(c, err.Error())
			return
		}
		h.logger.Error("Failed to delete person mapping", "responsible_party_id", partyID, "error", err)
		h.respondStorageError(c, err)
		return
	}

	RespondNoContent(c)
}

func (h *PersonHandler) respondStorageError(c *gin.Context, err error) {
	mapped := persistence.MapError(err)
	if errors.Is(mapped, persistence.ErrStorageTimeout) || errors.Is(mapped, persistence.ErrStorageUnavailable) {
		RespondServiceUnavailable(c, "")
		return
	}
	RespondInternalError(c)
}
