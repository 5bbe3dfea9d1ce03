// Resolves the delivery identity embedded in the bearer credential
package identity

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity attached to every delivered record, constant for the process lifetime
type Identity struct {
	UserID  string
	AgentID *string
}

// Extracts the delivery identity from the bearer token claims.
// The token signature is not verified here - the remote store authenticates
// every request itself and rejects bad credentials there. The relay only needs
// the embedded subject to stamp outgoing records.
func FromToken(token string) (id Identity, err error) {
	token = strings.TrimSpace(token)
	if token == "" {
		err = fmt.Errorf("no token provided")
		return
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	_, _, err = parser.ParseUnverified(token, claims)
	if err != nil {
		err = fmt.Errorf("failed to parse token: %v", err)
		return
	}

	id.UserID, err = claims.GetSubject()
	if err != nil || id.UserID == "" {
		// Some issuers carry the user under a dedicated claim instead of sub
		if userID, ok := claims["user_id"].(string); ok && userID != "" {
			id.UserID = userID
			err = nil
		} else {
			err = fmt.Errorf("token does not contain a user identity")
			return
		}
	}

	if agentID, ok := claims["agent_id"].(string); ok && agentID != "" {
		id.AgentID = &agentID
	}
	return
}
