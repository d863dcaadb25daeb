package database

import model "trivia-token-service/models"

// ownershipTransition moves a set of ownership records for one forge. check runs on every record before
// any is changed; skip marks records already in the target state.
type ownershipTransition struct {
	check func(r *model.OwnershipRecord, forgeID string) (skip bool, err error)
	apply func(r *model.OwnershipRecord, forgeID string)
}

var lockTransition = ownershipTransition{
	check: func(r *model.OwnershipRecord, forgeID string) (bool, error) {
		if r.Status == model.OwnershipLocked && r.ForgeID == forgeID {
			return true, nil
		}
		if r.Status != model.OwnershipHeld {
			return false, ErrRecordUnavailable
		}
		return false, nil
	},
	apply: func(r *model.OwnershipRecord, forgeID string) {
		r.Status = model.OwnershipLocked
		r.ForgeID = forgeID
	},
}

var unlockTransition = ownershipTransition{
	check: func(r *model.OwnershipRecord, forgeID string) (bool, error) {
		if r.Status == model.OwnershipHeld {
			return true, nil
		}
		if r.Status != model.OwnershipLocked || r.ForgeID != forgeID {
			return false, ErrInvalidState
		}
		return false, nil
	},
	apply: func(r *model.OwnershipRecord, _ string) {
		r.Status = model.OwnershipHeld
		r.ForgeID = ""
	},
}

var burnTransition = ownershipTransition{
	check: func(r *model.OwnershipRecord, forgeID string) (bool, error) {
		if r.ForgeID != forgeID {
			return false, ErrInvalidState
		}
		switch r.Status {
		case model.OwnershipBurned:
			return true, nil
		case model.OwnershipLocked:
			return false, nil
		}
		return false, ErrInvalidState
	},
	apply: func(r *model.OwnershipRecord, _ string) {
		r.Status = model.OwnershipBurned
	},
}
