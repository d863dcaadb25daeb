package handler

import (
	"errors"

	"trivia-token-service/controller/respond"
	"trivia-token-service/database"
	"trivia-token-service/ledger"
	"trivia-token-service/registry"
	"trivia-token-service/service/catalog_service"
	"trivia-token-service/service/eligibility_service"
	"trivia-token-service/service/forge_service"
	"trivia-token-service/service/mint_service"

	"github.com/gin-gonic/gin"
)

// writeError map a service error onto the response codes
func writeError(c *gin.Context, err error) {
	var validationErr *forge_service.ValidationError
	var registryErr *registry.RegistryError

	switch {
	case errors.As(err, &validationErr):
		respond.Validation(c, validationErr.Error(), respond.ValidationResponse{
			Rule:   string(validationErr.Rule),
			Detail: validationErr.Detail,
		})
	case errors.As(err, &registryErr),
		errors.Is(err, eligibility_service.ErrInvalidPlayer),
		errors.Is(err, mint_service.ErrInvalidOwner),
		errors.Is(err, forge_service.ErrInvalidOwner),
		errors.Is(err, forge_service.ErrInvalidType):
		respond.InvalidParam(c, err.Error())
	case errors.Is(err, eligibility_service.ErrNotFound),
		errors.Is(err, mint_service.ErrNotFound),
		errors.Is(err, forge_service.ErrNotFound),
		errors.Is(err, database.ErrNotFound):
		respond.NotFound(c, err.Error())
	case errors.Is(err, eligibility_service.ErrExpired),
		errors.Is(err, eligibility_service.ErrAlreadyUsed),
		errors.Is(err, catalog_service.ErrCategoryExhausted),
		errors.Is(err, database.ErrInvalidState),
		errors.Is(err, forge_service.ErrNotCancellable),
		errors.Is(err, forge_service.ErrNothingToReconcile),
		errors.Is(err, forge_service.ErrMintOutcomeUnknown),
		errors.Is(err, ledger.ErrBackpressure):
		respond.Conflict(c, err.Error())
	default:
		respond.ServerError(c, err.Error())
	}
}
