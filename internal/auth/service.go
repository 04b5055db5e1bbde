package auth

import (
	"errors"
	"time"

	"comicgallery/internal/platform/crypto"
	"comicgallery/internal/platform/metrics"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

// Subject is the only principal a session can carry.
const Subject = "admin"

// Config is the injected credential configuration. PasswordHash, when set, wins over Password.
type Config struct {
	Password     string
	PasswordHash string
	Secret       string
	TTL          time.Duration
}

// Session is a signed token and its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Service{cfg: cfg}
}

// Authenticate checks password against the configured secret and issues a session.
func (s *Service) Authenticate(password string) (Session, error) {
	if !s.checkPassword(password) {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return Session{}, ErrUnauthorized
	}

	token, expiresAt, err := crypto.GenerateToken(s.cfg.Secret, Subject, s.cfg.TTL)
	if err != nil {
		return Session{}, err
	}
	metrics.LoginAttempts.WithLabelValues("accepted").Inc()
	return Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) checkPassword(password string) bool {
	if password == "" {
		return false
	}
	if s.cfg.PasswordHash != "" {
		return crypto.VerifyPassword(s.cfg.PasswordHash, password)
	}
	if s.cfg.Password == "" {
		return false
	}
	return crypto.EqualConstantTime(s.cfg.Password, password)
}

// Verify validates signature, method, expiry and subject and returns the subject.
func (s *Service) Verify(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExpiresAt returns the expiry of a valid token.
func (s *Service) ExpiresAt(token string) (time.Time, error) {
	claims, err := s.parse(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrUnauthorized
	}
	return claims.ExpiresAt.Time, nil
}

func (s *Service) parse(token string) (*crypto.Claims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := crypto.ParseToken(s.cfg.Secret, token)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}
	if claims.Subject != Subject {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
