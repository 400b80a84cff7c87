// Package sessioncookie encodes session tokens into signed cookie values.
package sessioncookie

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// Options configures the session cookie.
type Options struct {
	Name     string
	HashKey  []byte
	BlockKey []byte
	Secure   bool
	MaxAge   time.Duration
}

// Codec writes and reads the session cookie. The cookie value is the session
// token, HMAC signed and optionally encrypted.
type Codec struct {
	name   string
	secure bool
	maxAge time.Duration
	sc     *securecookie.SecureCookie
}

// New builds a codec. The hash key must be at least 32 bytes.
func New(opts Options) (*Codec, error) {
	if opts.Name == "" {
		return nil, errors.New("cookie name is required")
	}
	if len(opts.HashKey) < 32 {
		return nil, errors.New("cookie hash key must be at least 32 bytes")
	}
	var block []byte
	if len(opts.BlockKey) > 0 {
		block = opts.BlockKey
	}
	sc := securecookie.New(opts.HashKey, block)
	if opts.MaxAge > 0 {
		sc.MaxAge(int(opts.MaxAge.Seconds()))
	}
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Codec{name: opts.Name, secure: opts.Secure, maxAge: opts.MaxAge, sc: sc}, nil
}

// Name returns the cookie name.
func (c *Codec) Name() string {
	return c.name
}

// Write sets the session cookie carrying token.
func (c *Codec) Write(w http.ResponseWriter, token string) error {
	encoded, err := c.sc.Encode(c.name, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(encoded, int(c.maxAge.Seconds())))
	return nil
}

// Clear expires the session cookie on the client.
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

// Read returns the token carried by the request cookie, or "" when the
// cookie is missing or fails verification.
func (c *Codec) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	var token string
	if err := c.sc.Decode(c.name, cookie.Value, &token); err != nil {
		return ""
	}
	return token
}

func (c *Codec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
