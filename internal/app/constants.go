package app

import "euchre/internal/domain"

// ForcedTrumpFallback is called by a stuck AI dealer whose policy names no suit.
const ForcedTrumpFallback = domain.Hearts

const (
	// MajorityTricks wins the hand for a team.
	MajorityTricks = 3
	// SinglePoints is scored for taking three or four tricks.
	SinglePoints = 1
	// MarchPoints is scored for taking all five tricks.
	MarchPoints = 2
)
