package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Chat-scope tokens are truncated so deep-link payloads stay under the
// platform's length limit. They identify a chat, they are not secrets.
const chatSignatureLength = 20

// Domain-separation label for launch-context verification.
const launchContextLabel = "WebAppData"

var (
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Signer derives and checks the HMAC capability tokens embedded in
// mini-app links, and validates platform-signed launch payloads. All
// verification is recomputation plus constant-time comparison; nothing
// is ever decoded out of a token.
type Signer struct {
	key    []byte
	secret []byte
}

// New builds a Signer from the shared platform secret.
func New(secret string) *Signer {
	key := sha256.Sum256([]byte(secret))
	return &Signer{key: key[:], secret: []byte(secret)}
}

// ChatSignature returns the truncated chat-scope token proving a link
// was issued for the chat.
func (s *Signer) ChatSignature(chatID int64) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(strconv.FormatInt(chatID, 10)))
	return hex.EncodeToString(mac.Sum(nil))[:chatSignatureLength]
}

// UserSignature returns the full-length token scoped to a user acting
// within a chat. Used to authorize destructive actions, so it is never
// truncated.
func (s *Signer) UserSignature(chatID, userID int64) string {
	mac := hmac.New(sha256.New, s.key)
	fmt.Fprintf(mac, "%d:%d", chatID, userID)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyChat reports whether token is the chat-scope signature for chatID.
func (s *Signer) VerifyChat(token string, chatID int64) bool {
	return token != "" && hmac.Equal([]byte(token), []byte(s.ChatSignature(chatID)))
}

// VerifyUser reports whether token is the user-scope signature for the
// (chat, user) pair.
func (s *Signer) VerifyUser(token string, chatID, userID int64) bool {
	return token != "" && hmac.Equal([]byte(token), []byte(s.UserSignature(chatID, userID)))
}

// VerifyLaunchContext validates a platform-signed launch payload and
// returns the embedded user id. The payload is query-string encoded; the
// check recomputes an HMAC keyed by HMAC(label, secret) over the sorted,
// "&"-joined key=value pairs excluding the signature field itself.
func (s *Signer) VerifyLaunchContext(raw string) (int64, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return 0, fmt.Errorf("parse launch context: %w", err)
	}

	provided := values.Get("hash")
	if provided == "" {
		return 0, ErrMissingSignature
	}

	pairs := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "&")

	keyMAC := hmac.New(sha256.New, []byte(launchContextLabel))
	keyMAC.Write(s.secret)
	mac := hmac.New(sha256.New, keyMAC.Sum(nil))
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(provided), []byte(expected)) {
		return 0, ErrInvalidSignature
	}

	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return 0, fmt.Errorf("parse launch context user: %w", err)
	}
	if user.ID == 0 {
		return 0, errors.New("launch context has no user id")
	}
	return user.ID, nil
}
