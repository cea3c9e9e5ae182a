package auth

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/rtspkit/rtspd/pkg/headers"
)

// DefaultRealm is used when a caller constructs an AuthDB with an empty
// realm string.
const DefaultRealm = "RTSPD Streaming Media"

func md5Hex(in string) string {
	sum := md5.Sum([]byte(in))
	return hex.EncodeToString(sum[:])
}

// AuthDB is the username/password table the Auth Engine authenticates
// against. It is populated by the host application and never persisted by
// the core.
type AuthDB struct {
	Realm string

	// PasswordsAreMD5, when true, means the stored credential is already
	// MD5(username:realm:password) rather than a plaintext password; it
	// is used directly as HA1 instead of being hashed again.
	PasswordsAreMD5 bool

	credentials map[string]string
}

// NewAuthDB builds an AuthDB. An empty realm is replaced with DefaultRealm.
func NewAuthDB(realm string, passwordsAreMD5 bool) *AuthDB {
	if realm == "" {
		realm = DefaultRealm
	}
	return &AuthDB{
		Realm:           realm,
		PasswordsAreMD5: passwordsAreMD5,
		credentials:     make(map[string]string),
	}
}

// AddUser registers or replaces a user's credential.
func (db *AuthDB) AddUser(username, credential string) {
	db.credentials[username] = credential
}

// RemoveUser drops a user's credential, if present.
func (db *AuthDB) RemoveUser(username string) {
	delete(db.credentials, username)
}

// ha1 returns the HA1 value for username, or false if the user is unknown.
func (db *AuthDB) ha1(username string) (string, bool) {
	cred, ok := db.credentials[username]
	if !ok {
		return "", false
	}
	if db.PasswordsAreMD5 {
		return cred, true
	}
	return md5Hex(username + ":" + db.Realm + ":" + cred), true
}

// Verify checks a parsed Authorization header against the database for the
// given method and nonce, per RFC 2617 section 3.2.2: HA1 from the stored
// credential, HA2 = MD5(method:uri), response = MD5(HA1:nonce:HA2).
func (db *AuthDB) Verify(a headers.Authorization, method string, nonce string) error {
	if a.Nonce == "" || a.Nonce != nonce {
		return fmt.Errorf("wrong nonce")
	}
	if a.Realm != db.Realm {
		return fmt.Errorf("wrong realm")
	}

	ha1, ok := db.ha1(a.Username)
	if !ok {
		return fmt.Errorf("unknown user %q", a.Username)
	}

	ha2 := md5Hex(method + ":" + a.URI)
	expected := md5Hex(ha1 + ":" + nonce + ":" + ha2)
	if a.Response != expected {
		return fmt.Errorf("authentication failed")
	}
	return nil
}
