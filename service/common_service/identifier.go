package common_service

import (
	"errors"
	"fmt"

	"trivia-token-service/assetid"
	"trivia-token-service/database"
	"trivia-token-service/models/dao"
)

// IdentifierAttempts unique ids drawn before giving up on a collision streak
const IdentifierAttempts = 3

var newIdentifier = assetid.New

// ClaimIdentifier build an identifier with a fresh unique id and claim it for the operation,
// drawing a new unique id when the store reports a collision
func ClaimIdentifier(ownershipDAO *dao.OwnershipDAO, params assetid.BuildParams, operationID string) (string, error) {
	for i := 0; i < IdentifierAttempts; i++ {
		identifier, err := newIdentifier(params)
		if err != nil {
			return "", err
		}
		err = ownershipDAO.ClaimIdentifier(identifier, operationID)
		if err == nil {
			return identifier, nil
		}
		if !errors.Is(err, database.ErrDuplicateIdentifier) {
			return "", fmt.Errorf("claim identifier: %w", err)
		}
	}
	return "", fmt.Errorf("claim identifier after %d attempts: %w", IdentifierAttempts, database.ErrDuplicateIdentifier)
}
