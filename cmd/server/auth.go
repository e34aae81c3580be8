package main

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	sessionCookieName = "fleetprice_session"
	passwordHeader    = "X-App-Password"
	sessionTTL        = 7 * 24 * time.Hour
)

// authService guards the API with one shared password. An empty password
// leaves every route open.
type authService struct {
	password      string
	sessionSecret []byte
	now           func() time.Time
}

// newAuthService signs sessions with sessionSecret. An empty secret is replaced
// by a random per-process key, so sessions do not survive a restart.
func newAuthService(password, sessionSecret string) *authService {
	key := []byte(sessionSecret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("generate session key: %v", err))
		}
	}
	return &authService{password: password, sessionSecret: key, now: time.Now}
}

func (a *authService) enabled() bool {
	return a.password != ""
}

func (a *authService) validPassword(password string) bool {
	providedHash := hashPassword(password)
	expectedHash := hashPassword(a.password)
	return subtle.ConstantTimeCompare(providedHash, expectedHash) == 1
}

// hashPassword maps a password to a fixed-length digest for constant-time
// comparison.
func hashPassword(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return sum[:]
}

// createSessionValue signs the expiry time. The payload carries no identity
// since there is a single shared password.
func (a *authService) createSessionValue() string {
	expires := a.now().Add(sessionTTL).Unix()
	payload := base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(expires, 10)))
	return payload + "." + a.sign(payload)
}

func (a *authService) sign(payload string) string {
	mac := hmac.New(sha256.New, a.sessionSecret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *authService) verifySessionValue(value string) bool {
	payload, signature, ok := strings.Cut(value, ".")
	if !ok {
		return false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	expected, _ := hex.DecodeString(a.sign(payload))
	if !hmac.Equal(provided, expected) {
		return false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return false
	}
	expires, err := strconv.ParseInt(string(decoded), 10, 64)
	if err != nil {
		return false
	}
	return a.now().Unix() < expires
}

func (a *authService) authenticated(r *http.Request) bool {
	if !a.enabled() {
		return true
	}
	if header := r.Header.Get(passwordHeader); header != "" && a.validPassword(header) {
		return true
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	return a.verifySessionValue(cookie.Value)
}

func (a *authService) setSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    a.createSessionValue(),
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
