// Package admin provides the owner dashboard and privacy-conscious visitor
// tracking.
package admin

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	cookieName   = "admin_token"
	cookieMaxAge = 3600 * 24
)

// Auth holds the admin credentials and the per-process session token.
type Auth struct {
	username string
	password string
	token    string
	salt     string
}

// NewAuth creates an Auth with a fresh random token and IP hashing salt.
func NewAuth(username, password string) (*Auth, error) {
	token, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin token: %w", err)
	}
	salt, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate hashing salt: %w", err)
	}
	return &Auth{username: username, password: password, token: token, salt: salt}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashIP returns a salted, truncated hash of ip. The same ip hashes the
// same way for the life of the process.
func (a *Auth) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// CheckCredentials reports whether username and password match.
func (a *Auth) CheckCredentials(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.password))
	return u&p == 1
}

func (a *Auth) authenticated(c *gin.Context) bool {
	token, err := c.Cookie(cookieName)
	return err == nil && subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) == 1
}

// RequireAdmin redirects unauthenticated requests to the login page.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticated(c) {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdminAPI rejects unauthenticated requests with a JSON 401.
func (a *Auth) RequireAdminAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticated(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func (a *Auth) setCookie(c *gin.Context) {
	c.SetCookie(cookieName, a.token, cookieMaxAge, "/", "", false, true)
}

func clearCookie(c *gin.Context) {
	c.SetCookie(cookieName, "", -1, "/", "", false, true)
}
