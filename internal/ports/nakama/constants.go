package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to get a table and a seat ticket.
	RpcQuickMatch = "quick_match"

	// MatchNameEuchre is the authoritative match handler name registered with Nakama.
	MatchNameEuchre = "euchre_match"

	// GameName is advertised in the match label.
	GameName = "euchre"

	// MetadataTicket is the join metadata key carrying the seat ticket.
	MetadataTicket = "ticket"

	// emptyMatchTimeoutSeconds closes a match nobody joined.
	emptyMatchTimeoutSeconds = 60
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpDeal     int64 = 1
	OpBid      int64 = 2 // {"bid": "pass" | suit}
	OpPlayCard int64 = 3 // {"card_id": "J_of_spades"}
	OpNewGame  int64 = 4

	// Server -> Client events
	OpSnapshot     int64 = 100
	OpHandDealt    int64 = 101 // send privately
	OpBidPassed    int64 = 102
	OpBiddingRound int64 = 103
	OpTrumpCalled  int64 = 104
	OpCardPlayed   int64 = 105
	OpTrickWon     int64 = 106
	OpHandScored   int64 = 107
	OpGameOver     int64 = 108
	OpNewHand      int64 = 109
	OpError        int64 = 110
)
