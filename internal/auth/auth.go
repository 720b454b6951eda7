package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrChallengeNotFound = errors.New("challenge not found")
)

// Challenge is a sign-in message a wallet must sign to obtain a session.
type Challenge struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is an authenticated wallet.
type Session struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service handles wallet sign-in. Challenges and sessions live in memory.
type Service struct {
	challengeTTL time.Duration
	tokenTTL     time.Duration
	now          func() time.Time

	mu         sync.Mutex
	challenges map[string]*Challenge // by checksummed address
	sessions   map[string]*Session   // by token
}

// NewService creates a new auth service
func NewService(challengeTTL, tokenTTL time.Duration) *Service {
	return &Service{
		challengeTTL: challengeTTL,
		tokenTTL:     tokenTTL,
		now:          time.Now,
		challenges:   make(map[string]*Challenge),
		sessions:     make(map[string]*Session),
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func signInMessage(address, nonce string) string {
	return fmt.Sprintf("Sign in to Scan2Share\n\nAddress: %s\nNonce: %s", address, nonce)
}

func checksum(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}
	return common.HexToAddress(address).Hex(), nil
}

// CreateChallenge issues a fresh challenge for address, replacing any
// outstanding one.
func (s *Service) CreateChallenge(address string) (*Challenge, error) {
	addr, err := checksum(address)
	if err != nil {
		return nil, err
	}

	nonce := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &Challenge{
		Address:   addr,
		Nonce:     nonce,
		Message:   signInMessage(addr, nonce),
		ExpiresAt: s.now().UTC().Add(s.challengeTTL),
	}
	s.challenges[addr] = c

	copied := *c
	return &copied, nil
}

// VerifyChallenge checks that signature is the address's personal_sign of
// its outstanding challenge and opens a session. A challenge is consumed by
// its first successful verification.
func (s *Service) VerifyChallenge(address, signature string) (*Session, error) {
	addr, err := checksum(address)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[addr]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if s.now().After(c.ExpiresAt) {
		delete(s.challenges, addr)
		return nil, ErrChallengeExpired
	}

	signer, err := recoverSigner(c.Message, signature)
	if err != nil {
		return nil, err
	}
	if signer != common.HexToAddress(addr) {
		return nil, ErrInvalidSignature
	}

	delete(s.challenges, addr)

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	sess := &Session{
		Token:     token,
		Address:   addr,
		ExpiresAt: s.now().UTC().Add(s.tokenTTL),
	}
	s.sessions[token] = sess

	copied := *sess
	return &copied, nil
}

// ValidateToken returns the session for token, or nil if it is unknown or
// expired.
func (s *Service) ValidateToken(token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	if s.now().After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil, nil
	}

	copied := *sess
	return &copied, nil
}

// Cleanup drops expired challenges and sessions and returns how many were
// removed.
func (s *Service) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, c := range s.challenges {
		if now.After(c.ExpiresAt) {
			delete(s.challenges, k)
			removed++
		}
	}
	for k, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, k)
			removed++
		}
	}
	return removed
}

// recoverSigner returns the address whose key produced an EIP-191
// personal_sign signature over message.
func recoverSigner(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}

	// Wallets emit V as 27/28.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate session token")
	}
	return hex.EncodeToString(b), nil
}

// HashIP creates a hash of an IP address for rate limit keys
func HashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:16])
}
