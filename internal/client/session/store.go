// Package session owns the authentication state of the client and keeps it in
// step with the backend's identity endpoints.
//
// A single Store is created at start-up and shared by the router guard and
// every view. Views read it through Snapshot and the flag accessors; only the
// Store's own operations mutate it.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/libraryclient/internal/client/api"
	"github.com/dmitrijs2005/libraryclient/internal/client/models"
	"github.com/dmitrijs2005/libraryclient/internal/logging"
	"golang.org/x/sync/singleflight"
)

// PendingUsernameKey is the local-state key of a login that passed the
// password step but not the OTP step yet.
const PendingUsernameKey = "pending_username"

// IdentityClient is the part of the backend API the Store needs.
type IdentityClient interface {
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	VerifyOTP(ctx context.Context, key string) (*api.OTPLoginResponse, error)
	TOTPURL(ctx context.Context) (string, error)
	Info(ctx context.Context) (*api.InfoResponse, error)
	OTPStatus(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
}

// KeyValueStore persists the pending username. Get returns (nil, nil) for a
// missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// State is a point-in-time copy of the session.
type State struct {
	CurrentUser            *models.User
	IsAuthenticated        bool
	IsSecondFactorVerified bool
	IsSuperuser            bool
	IsLoading              bool
	PendingUsername        string
}

type Store struct {
	client  IdentityClient
	storage KeyValueStore
	log     logging.Logger

	mu    sync.RWMutex
	state State

	resync singleflight.Group
}

func NewStore(client IdentityClient, storage KeyValueStore, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{client: client, storage: storage, log: log.With("component", "session")}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.CurrentUser != nil {
		u := *st.CurrentUser
		st.CurrentUser = &u
	}
	return st
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

func (s *Store) IsSecondFactorVerified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsSecondFactorVerified
}

func (s *Store) IsSuperuser() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsSuperuser
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.state.IsLoading = v
	s.mu.Unlock()
}

// InitializePending loads the persisted pending username, if any. It does no
// network I/O and may be called repeatedly.
func (s *Store) InitializePending(ctx context.Context) error {
	v, err := s.storage.Get(ctx, PendingUsernameKey)
	if err != nil {
		return fmt.Errorf("load pending username: %w", err)
	}
	if len(v) == 0 {
		return nil
	}

	s.mu.Lock()
	s.state.PendingUsername = string(v)
	s.mu.Unlock()
	return nil
}

// Login checks the password with the backend. On success the user is
// authenticated, the second factor is reset to unverified and the username
// is remembered as pending until VerifyOTP succeeds. A rejection reported in
// the response body yields api.ErrInvalidCredentials; transport and HTTP
// errors are returned as they are. Failures leave the state untouched.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error != "" {
			return fmt.Errorf("%w: %s", api.ErrInvalidCredentials, resp.Error)
		}
		return api.ErrInvalidCredentials
	}

	name := resp.Username
	if name == "" {
		name = username
	}
	if err := s.storage.Set(ctx, PendingUsernameKey, []byte(name)); err != nil {
		return fmt.Errorf("save pending username: %w", err)
	}

	s.mu.Lock()
	s.state.CurrentUser = &models.User{Username: name, Email: resp.Email, IsSuperuser: resp.IsSuperuser}
	s.state.IsAuthenticated = true
	s.state.IsSuperuser = resp.IsSuperuser
	s.state.IsSecondFactorVerified = false
	s.state.PendingUsername = name
	s.mu.Unlock()

	s.log.Info(ctx, "logged in", "username", name, "superuser", resp.IsSuperuser)
	return nil
}

// VerifyOTP submits a one-time password. It returns true and marks the
// second factor verified when the backend accepts the key; the pending
// username is cleared then. Otherwise it returns false and changes nothing.
func (s *Store) VerifyOTP(ctx context.Context, key string) (bool, error) {
	resp, err := s.client.VerifyOTP(ctx, key)
	if err != nil {
		return false, err
	}
	if !resp.Success {
		return false, nil
	}

	s.mu.Lock()
	s.state.IsSecondFactorVerified = true
	s.mu.Unlock()

	if err := s.ClearPending(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear pending username", "error", err)
	}
	return true, nil
}

// GetTOTP returns the provisioning URL for an authenticator app, or "".
func (s *Store) GetTOTP(ctx context.Context) (string, error) {
	return s.client.TOTPURL(ctx)
}

// FetchUserInfo overwrites the identity flags with the backend's view of
// the session. It is the authoritative resync point after a restart.
func (s *Store) FetchUserInfo(ctx context.Context) error {
	info, err := s.client.Info(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if info.IsAuthenticated {
		s.state.CurrentUser = &models.User{Username: info.Username, Email: info.Email, IsSuperuser: info.IsSuperuser}
	} else {
		s.state.CurrentUser = nil
	}
	s.state.IsAuthenticated = info.IsAuthenticated
	s.state.IsSuperuser = info.IsSuperuser
	s.state.IsSecondFactorVerified = info.SecondFactor
	return nil
}

// Resync runs FetchUserInfo, sharing one in-flight request between
// concurrent callers. A caller whose ctx ends stops waiting; the shared
// request keeps running for the others.
func (s *Store) Resync(ctx context.Context) error {
	ch := s.resync.DoChan("info", func() (any, error) {
		return nil, s.FetchUserInfo(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckOTPStatus asks the backend whether the second factor is satisfied,
// stores and returns the answer.
func (s *Store) CheckOTPStatus(ctx context.Context) (bool, error) {
	good, err := s.client.OTPStatus(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.state.IsSecondFactorVerified = good
	s.mu.Unlock()
	return good, nil
}

// Logout ends the backend session, resets the local state and forgets the
// pending username. If the backend call fails nothing local changes.
func (s *Store) Logout(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.client.Logout(ctx); err != nil {
		return err
	}

	s.ResetAuthState()
	if err := s.ClearPending(ctx); err != nil {
		return err
	}

	s.log.Info(ctx, "logged out")
	return nil
}

// ResetAuthState returns the in-memory identity flags to the unauthenticated
// shape. It does no I/O, so it leaves the pending username alone: that value
// mirrors storage and only ClearPending may drop it.
func (s *Store) ResetAuthState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CurrentUser = nil
	s.state.IsAuthenticated = false
	s.state.IsSecondFactorVerified = false
	s.state.IsSuperuser = false
}

// ClearPending abandons a half-finished two-step login, in memory and in
// storage.
func (s *Store) ClearPending(ctx context.Context) error {
	if err := s.storage.Delete(ctx, PendingUsernameKey); err != nil {
		return fmt.Errorf("delete pending username: %w", err)
	}

	s.mu.Lock()
	s.state.PendingUsername = ""
	s.mu.Unlock()
	return nil
}
