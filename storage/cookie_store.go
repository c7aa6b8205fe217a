package storage

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jrsteele09/go-admin-console/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// CookieStore keeps values as cookies with path, SameSite, Secure and an
// expiry, persisted to a JSON file so a restarted console can restore its
// session. Expired cookies read as absent.
type CookieStore struct {
	mu       sync.Mutex
	filePath string
	maxAge   time.Duration
	secure   bool
	sameSite http.SameSite
	path     string
	nowTime  func() time.Time
	cookies  map[string]*http.Cookie
}

var _ Repo = (*CookieStore)(nil)

// CookieStoreOption configures a CookieStore.
type CookieStoreOption func(*CookieStore)

// WithCookieAttributes sets the attributes stamped on every written cookie.
func WithCookieAttributes(maxAge time.Duration, secure bool, sameSite http.SameSite, path string) CookieStoreOption {
	return func(s *CookieStore) {
		s.maxAge = maxAge
		s.secure = secure
		s.sameSite = sameSite
		s.path = path
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CookieStoreOption {
	return func(s *CookieStore) {
		s.nowTime = nowFunc
	}
}

type cookieRecord struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path"`
	Expires  time.Time     `json:"expires"`
	Secure   bool          `json:"secure"`
	SameSite http.SameSite `json:"same_site"`
}

// NewCookieStore loads the cookie file at filePath when it exists. An empty
// filePath keeps cookies in memory only. A corrupt file is logged and
// ignored rather than failing startup.
func NewCookieStore(filePath string, options ...CookieStoreOption) (*CookieStore, error) {
	s := &CookieStore{
		filePath: filePath,
		maxAge:   7 * 24 * time.Hour,
		sameSite: http.SameSiteLaxMode,
		path:     "/",
		nowTime:  time.Now,
		cookies:  make(map[string]*http.Cookie),
	}
	for _, opt := range options {
		opt(s)
	}

	if filePath == "" {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return nil, pkgerrors.Wrap(err, "[NewCookieStore] create data folder")
	}
	if err := s.load(); err != nil {
		log.Warn().Err(err).Str("file", filePath).Msg("Ignoring unreadable cookie file")
		s.cookies = make(map[string]*http.Cookie)
	}
	return s, nil
}

func (s *CookieStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cookies[key]
	if !ok {
		return "", errors.ErrKeyNotFound
	}
	if !c.Expires.IsZero() && !c.Expires.After(s.nowTime()) {
		delete(s.cookies, key)
		return "", errors.ErrKeyNotFound
	}
	return c.Value, nil
}

func (s *CookieStore) Set(key, value string) error {
	if key == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "[CookieStore Set] key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.cookies[key]
	s.cookies[key] = &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     s.path,
		Expires:  s.nowTime().Add(s.maxAge),
		Secure:   s.secure,
		SameSite: s.sameSite,
	}
	if err := s.saveLocked(); err != nil {
		if existed {
			s.cookies[key] = previous
		} else {
			delete(s.cookies, key)
		}
		return pkgerrors.Wrapf(err, "[CookieStore Set] %s", key)
	}
	return nil
}

func (s *CookieStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cookies[key]; !ok {
		return nil
	}
	delete(s.cookies, key)
	if err := s.saveLocked(); err != nil {
		return pkgerrors.Wrapf(err, "[CookieStore Remove] %s", key)
	}
	return nil
}

// Cookie returns a copy of the stored cookie for key, including attributes.
func (s *CookieStore) Cookie(key string) (http.Cookie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cookies[key]
	if !ok {
		return http.Cookie{}, false
	}
	return *c, true
}

func (s *CookieStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(err, "read cookie file")
	}

	var records []cookieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return pkgerrors.Wrap(err, "decode cookie file")
	}
	for _, r := range records {
		s.cookies[r.Name] = &http.Cookie{
			Name:     r.Name,
			Value:    r.Value,
			Path:     r.Path,
			Expires:  r.Expires,
			Secure:   r.Secure,
			SameSite: r.SameSite,
		}
	}
	return nil
}

func (s *CookieStore) saveLocked() error {
	if s.filePath == "" {
		return nil
	}

	records := make([]cookieRecord, 0, len(s.cookies))
	for _, k := range Keys() {
		if c, ok := s.cookies[k]; ok {
			records = append(records, toRecord(c))
		}
	}
	for name, c := range s.cookies {
		if !isKnownKey(name) {
			records = append(records, toRecord(c))
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

func toRecord(c *http.Cookie) cookieRecord {
	return cookieRecord{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Expires:  c.Expires,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

func isKnownKey(name string) bool {
	for _, k := range Keys() {
		if k == name {
			return true
		}
	}
	return false
}
