// Package storage выдаёт временные ссылки на объекты (квитанции об оплате).
package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyKey - ключ объекта не задан.
var ErrEmptyKey = errors.New("empty object key")

// URLResolver превращает ключ объекта в ссылку, действующую ttl.
type URLResolver interface {
	ResolveURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Signer подписывает ссылки HMAC-SHA256 общим с хранилищем ключом.
type Signer struct {
	baseURL string
	key     []byte
	now     func() time.Time
}

// NewSigner создаёт новый экземпляр Signer.
func NewSigner(baseURL, signingKey string) *Signer {
	return &Signer{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     []byte(signingKey),
		now:     time.Now,
	}
}

// ResolveURL реализует URLResolver.
func (s *Signer) ResolveURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	expires := strconv.FormatInt(s.now().Add(ttl).Unix(), 10)

	q := url.Values{}
	q.Set("expires", expires)
	q.Set("signature", s.sign(key, expires))
	return fmt.Sprintf("%s/%s?%s", s.baseURL, url.PathEscape(key), q.Encode()), nil
}

// Verify проверяет подпись и срок действия ссылки.
func (s *Signer) Verify(key, expires, signature string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || s.now().Unix() > exp {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(s.sign(key, expires)))
}

func (s *Signer) sign(key, expires string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(key))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(expires))
	return hex.EncodeToString(mac.Sum(nil))
}
