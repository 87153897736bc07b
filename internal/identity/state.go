package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/paulexconde/surveyflow/pkg/fault"
)

// StateCodec signs the context that must survive the provider round trip.
// The provider echoes the state verbatim, so a signature is the only thing
// binding the callback to a start we actually issued.
type StateCodec struct {
	secret []byte
	ttl    time.Duration
}

type stateClaims struct {
	SurveyID int `json:"sid"`
	jwt.RegisteredClaims
}

func NewStateCodec(secret string, ttl time.Duration) *StateCodec {
	return &StateCodec{secret: []byte(secret), ttl: ttl}
}

// Encode signs a state token carrying the survey the hand-off belongs to.
func (c *StateCodec) Encode(surveyID int) (string, error) {
	now := time.Now()

	claims := stateClaims{
		SurveyID: surveyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fault.NewInternalError("signing identity state", err)
	}

	return signed, nil
}

// Decode verifies a callback state token and returns the survey id.
func (c *StateCodec) Decode(state string) (int, error) {
	claims := &stateClaims{}

	token, err := jwt.ParseWithClaims(state, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fault.NewClientError("invalid identity state", err)
	}

	return claims.SurveyID, nil
}
