package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// ErrInvalidTicket is returned for tickets that fail signature, expiry or binding checks.
var ErrInvalidTicket = errors.New("invalid seat ticket")

// SeatTicketClaims binds a user to the human seat of one match.
type SeatTicketClaims struct {
	MatchID string `json:"mid"`
	jwt.StandardClaims
}

// TicketService signs and verifies seat tickets with HS256.
type TicketService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTicketService(secret string, ttl time.Duration) *TicketService {
	return &TicketService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed ticket for userID to sit at matchID.
func (s *TicketService) Issue(userID, matchID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("ticket service is nil")
	}
	if userID == "" || matchID == "" {
		return "", fmt.Errorf("user and match are required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("ticket secret is not configured")
	}

	now := s.now()
	claims := SeatTicketClaims{
		MatchID: matchID,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the ticket's signature and expiry and that it was issued to userID for matchID.
func (s *TicketService) Verify(ticket, userID, matchID string) error {
	claims := &SeatTicketClaims{}
	token, err := jwt.ParseWithClaims(ticket, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if !token.Valid {
		return ErrInvalidTicket
	}
	if claims.Subject != userID || claims.MatchID != matchID {
		return fmt.Errorf("%w: issued to another seat", ErrInvalidTicket)
	}
	return nil
}
