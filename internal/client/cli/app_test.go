package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/libraryclient/internal/client/api"
	"github.com/dmitrijs2005/libraryclient/internal/client/config"
	"github.com/dmitrijs2005/libraryclient/internal/client/models"
	"github.com/dmitrijs2005/libraryclient/internal/client/notify"
	"github.com/dmitrijs2005/libraryclient/internal/client/router"
	"github.com/dmitrijs2005/libraryclient/internal/client/services"
	"github.com/dmitrijs2005/libraryclient/internal/client/session"
	"github.com/dmitrijs2005/libraryclient/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ fakes ------------

// fakeBackend plays the identity endpoints with one known account.
type fakeBackend struct {
	mu        sync.Mutex
	loggedIn  string
	superuser bool
	otpOK     bool
	infoErr   error
	logoutErr error
}

func (f *fakeBackend) Login(_ context.Context, username, password string) (*api.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != "secret" {
		return &api.LoginResponse{Success: false, Error: "bad credentials"}, nil
	}
	f.loggedIn = username
	return &api.LoginResponse{Success: true, Username: username, Email: username + "@example.org", IsSuperuser: f.superuser}, nil
}

func (f *fakeBackend) VerifyOTP(_ context.Context, key string) (*api.OTPLoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otpOK = key == "123456"
	return &api.OTPLoginResponse{Success: f.otpOK}, nil
}

func (f *fakeBackend) TOTPURL(context.Context) (string, error) {
	return "otpauth://totp/MyLibraryApp:alice?secret=ABC", nil
}

func (f *fakeBackend) Info(context.Context) (*api.InfoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	if f.loggedIn == "" {
		return &api.InfoResponse{}, nil
	}
	return &api.InfoResponse{Username: f.loggedIn, IsAuthenticated: true, IsSuperuser: f.superuser, SecondFactor: f.otpOK}, nil
}

func (f *fakeBackend) OTPStatus(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otpOK, nil
}

func (f *fakeBackend) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.loggedIn, f.otpOK = "", false
	return nil
}

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeCatalog struct {
	calls []string

	listOut []models.Tabular
	listErr error
	getOut  models.Tabular
	getErr  error
	saveOut models.Tabular
	saveErr error
	fields  map[string]any
	delErr  error
	stats   models.Stats
	path    string
	format  services.ExportFormat
	retErr  error
}

func (f *fakeCatalog) List(_ context.Context, res models.Resource) ([]models.Tabular, error) {
	f.calls = append(f.calls, "list "+string(res))
	return f.listOut, f.listErr
}

func (f *fakeCatalog) Get(_ context.Context, res models.Resource, _ int64) (models.Tabular, error) {
	f.calls = append(f.calls, "get "+string(res))
	return f.getOut, f.getErr
}

func (f *fakeCatalog) Create(_ context.Context, res models.Resource, fields map[string]any) (models.Tabular, error) {
	f.calls = append(f.calls, "create "+string(res))
	f.fields = fields
	return f.saveOut, f.saveErr
}

func (f *fakeCatalog) Update(_ context.Context, res models.Resource, _ int64, fields map[string]any) (models.Tabular, error) {
	f.calls = append(f.calls, "update "+string(res))
	f.fields = fields
	return f.saveOut, f.saveErr
}

func (f *fakeCatalog) Delete(_ context.Context, res models.Resource, _ int64) error {
	f.calls = append(f.calls, "delete "+string(res))
	return f.delErr
}

func (f *fakeCatalog) Stats(_ context.Context, res models.Resource) (models.Stats, error) {
	f.calls = append(f.calls, "stats "+string(res))
	return f.stats, nil
}

func (f *fakeCatalog) Export(_ context.Context, res models.Resource, format services.ExportFormat) (string, error) {
	f.calls = append(f.calls, "export "+string(res))
	f.format = format
	return f.path, nil
}

func (f *fakeCatalog) ReturnLoan(_ context.Context, _ int64) (*models.Loan, error) {
	f.calls = append(f.calls, "return")
	if f.retErr != nil {
		return nil, f.retErr
	}
	d := "2024-05-20"
	return &models.Loan{ID: 1, ReturnDate: &d}, nil
}

type fakeCookies struct {
	cleared  int
	clearErr error
}

func (f *fakeCookies) Clear(context.Context) error {
	f.cleared++
	return f.clearErr
}

// ------------ helpers ------------

type testApp struct {
	*App
	backend *fakeBackend
	catalog *fakeCatalog
	cookies *fakeCookies
	kv      *memKV
	out     *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()

	backend := &fakeBackend{}
	kv := &memKV{}
	cat := &fakeCatalog{}
	cookies := &fakeCookies{}
	out := &bytes.Buffer{}

	store := session.NewStore(backend, kv, nil)
	cfg := &config.Config{NotificationDuration: time.Minute, StartRoute: "/"}

	app := &App{
		config:  cfg,
		session: store,
		router:  router.New(router.NewGuard(store, nil), nil),
		catalog: cat,
		cookies: cookies,
		note:    &notify.Notification{},
		log:     logging.Nop(),
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     out,
	}
	return &testApp{App: app, backend: backend, catalog: cat, cookies: cookies, kv: kv, out: out}
}

func stubPrompts(t *testing.T, password string) {
	t.Helper()
	origText, origPw, origPrint := getSimpleText, getPassword, printlnFn
	t.Cleanup(func() { getSimpleText, getPassword, printlnFn = origText, origPw, origPrint })

	getSimpleText = func(r *bufio.Reader, _ string, _ io.Writer) (string, error) {
		return GetSimpleText(r, "", &bytes.Buffer{})
	}
	getPassword = func(io.Writer) ([]byte, error) { return []byte(password), nil }
	printlnFn = func(...any) (int, error) { return 0, nil }
}

func (ta *testApp) login(t *testing.T, superuser, otp bool) {
	t.Helper()
	ta.backend.superuser = superuser
	ta.reader = bufio.NewReader(strings.NewReader("alice\n"))
	require.NoError(t, ta.Login(context.Background()))
	if otp {
		require.NoError(t, ta.OTP(context.Background(), []string{"123456"}))
	}
	ta.out.Reset()
	ta.catalog.calls = nil
}

// ------------ tests ------------

func TestGo_UnauthenticatedLandsOnLogin(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, ta.Go(ctx, []string{"/books"}))
	assert.Equal(t, router.ViewLogin, ta.current.Route.View)
	assert.Contains(t, ta.out.String(), "Please log in")
	assert.Empty(t, ta.catalog.calls)
}

func TestGo_ResyncRestoresSession(t *testing.T) {
	ta := newTestApp(t, "")
	ta.backend.loggedIn = "bob"

	require.NoError(t, ta.Go(context.Background(), []string{"/loans"}))
	assert.Equal(t, router.ViewLoans, ta.current.Route.View)
	assert.Equal(t, []string{"list loans"}, ta.catalog.calls)
	assert.Equal(t, "/loans (bob)", ta.status())
}

func TestGo_UnknownPath(t *testing.T) {
	ta := newTestApp(t, "")
	ta.backend.loggedIn = "bob"

	require.NoError(t, ta.Go(context.Background(), []string{"/authors"}))
	assert.Equal(t, router.ViewNotFound, ta.current.Route.View)
	assert.Contains(t, ta.out.String(), "Page not found: /authors")
}

func TestLogin_WrongPassword(t *testing.T) {
	stubPrompts(t, "nope")
	ta := newTestApp(t, "alice\n")

	err := ta.Login(context.Background())
	require.ErrorIs(t, err, api.ErrInvalidCredentials)
	assert.False(t, ta.session.IsAuthenticated())
	assert.Equal(t, notify.KindError, ta.note.Current().Kind)
	assert.Contains(t, ta.out.String(), "Invalid username or password")
	assert.Empty(t, ta.kv.data[session.PendingUsernameKey])
}

func TestLogin_OTPFlow(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "alice\n")
	ctx := context.Background()

	require.NoError(t, ta.Login(ctx))
	assert.True(t, ta.session.IsAuthenticated())
	assert.Equal(t, router.ViewBooks, ta.current.Route.View)
	assert.Equal(t, "alice", string(ta.kv.data[session.PendingUsernameKey]))
	assert.Contains(t, ta.out.String(), "otp <code>")

	require.NoError(t, ta.OTP(ctx, []string{"000000"}))
	assert.False(t, ta.session.IsSecondFactorVerified())
	assert.Equal(t, "Invalid code", ta.note.Current().Text)

	require.NoError(t, ta.OTP(ctx, []string{"123456"}))
	assert.True(t, ta.session.IsSecondFactorVerified())
	assert.Empty(t, ta.session.Snapshot().PendingUsername)
	_, stillThere := ta.kv.data[session.PendingUsernameKey]
	assert.False(t, stillThere)
	assert.Equal(t, "/books (alice 2fa)", ta.status())
}

func TestLogin_AlreadyAuthenticated(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, false, false)

	require.NoError(t, ta.Login(context.Background()))
	assert.Equal(t, notify.KindInfo, ta.note.Current().Kind)
}

func TestLogout(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, false, false)
	ctx := context.Background()

	ta.backend.logoutErr = api.ErrUnavailable
	require.Error(t, ta.Logout(ctx))
	assert.True(t, ta.session.IsAuthenticated())
	assert.Contains(t, ta.out.String(), "Server unavailable")
	assert.Zero(t, ta.cookies.cleared)

	ta.backend.logoutErr = nil
	require.NoError(t, ta.Logout(ctx))
	assert.False(t, ta.session.IsAuthenticated())
	assert.Equal(t, router.ViewLogin, ta.current.Route.View)
	assert.Empty(t, ta.kv.data)
	assert.Equal(t, 1, ta.cookies.cleared)
}

func TestLogout_CookieClearErrorIsNotFatal(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, false, false)
	ta.cookies.clearErr = errors.New("readonly")

	require.NoError(t, ta.Logout(context.Background()))
	assert.False(t, ta.session.IsAuthenticated())
	assert.Equal(t, "Logged out", ta.note.Current().Text)
}

func TestClearPending(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()
	require.NoError(t, ta.kv.Set(ctx, session.PendingUsernameKey, []byte("carol")))
	require.NoError(t, ta.session.InitializePending(ctx))
	assert.Equal(t, "/ (carol, otp pending)", ta.status())

	require.NoError(t, ta.Go(ctx, []string{"/login"}))
	assert.Contains(t, ta.out.String(), "waiting for its one-time code")

	require.NoError(t, ta.ClearPending(ctx))
	assert.Empty(t, ta.session.Snapshot().PendingUsername)
	assert.Empty(t, ta.kv.data)
}

func TestProfileAndTOTP(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, true, true)
	ctx := context.Background()

	require.NoError(t, ta.WhoAmI(ctx))
	out := ta.out.String()
	assert.Equal(t, router.ViewProfile, ta.current.Route.View)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "Administrator")
	assert.Contains(t, out, "verified")

	ta.out.Reset()
	require.NoError(t, ta.TOTP(ctx))
	assert.Contains(t, ta.out.String(), "otpauth://totp/")

	require.NoError(t, ta.OTPStatus(ctx))
	assert.Equal(t, "Second factor verified", ta.note.Current().Text)
}

func TestCommandsNeedACollection(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, true, true)
	ta.current = router.Resolve("/profile")

	require.ErrorIs(t, ta.List(context.Background()), errNoCollection)
	require.ErrorIs(t, ta.Add(context.Background(), []string{"name=x"}), errNoCollection)
	assert.Empty(t, ta.catalog.calls)
}

func TestAdd_ReaderIsSentToNoAccess(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, false, true)
	ctx := context.Background()
	require.NoError(t, ta.Go(ctx, []string{"/genres"}))
	ta.catalog.calls = nil

	require.NoError(t, ta.Add(ctx, []string{"name=Poetry"}))
	assert.Equal(t, router.ViewNoAccess, ta.current.Route.View)
	assert.Empty(t, ta.catalog.calls)

	require.NoError(t, ta.Go(ctx, []string{"/books"}))
	require.NoError(t, ta.Export(ctx, nil))
	assert.Equal(t, router.ViewNoAccess, ta.current.Route.View)
}

func TestAdd_ReaderMayWriteLoans(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, false, true)
	ctx := context.Background()
	require.NoError(t, ta.Go(ctx, []string{"/loans"}))

	ta.catalog.saveOut = models.Loan{ID: 5, LoanDate: "2024-05-01"}
	require.NoError(t, ta.Add(ctx, []string{"book=7", "member=1"}))
	assert.Equal(t, map[string]any{"book": int64(7), "member": int64(1)}, ta.catalog.fields)
	assert.Contains(t, ta.out.String(), "Not returned")
}

func TestEditAndShow(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, true, false)
	ctx := context.Background()
	require.NoError(t, ta.Go(ctx, []string{"/books"}))

	ta.catalog.saveOut = models.Book{ID: 7, Title: "Dune", IsAvailable: true}
	require.NoError(t, ta.Edit(ctx, []string{"7", `title="Dune"`}))
	assert.Equal(t, map[string]any{"title": "Dune"}, ta.catalog.fields)
	assert.Contains(t, ta.out.String(), "Available")

	require.ErrorIs(t, ta.Edit(ctx, []string{"7"}), errUsage)
	require.ErrorIs(t, ta.Show(ctx, []string{"x"}), errUsage)

	ta.catalog.getErr = api.ErrNotFound
	require.ErrorIs(t, ta.Show(ctx, []string{"9"}), api.ErrNotFound)
	assert.Equal(t, notify.KindWarning, ta.note.Current().Kind)
}

func TestDelete_RequiresSecondFactor(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, true, false)
	ctx := context.Background()
	require.NoError(t, ta.Go(ctx, []string{"/genres"}))
	ta.catalog.calls = nil

	require.NoError(t, ta.Delete(ctx, []string{"3"}))
	assert.Empty(t, ta.catalog.calls)
	assert.Equal(t, notify.KindError, ta.note.Current().Kind)

	require.NoError(t, ta.OTP(ctx, []string{"123456"}))
	require.NoError(t, ta.Delete(ctx, []string{"3"}))
	assert.Equal(t, []string{"delete genres", "list genres"}, ta.catalog.calls)
}

func TestExportAndStats(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, true, false)
	ctx := context.Background()
	require.NoError(t, ta.Go(ctx, []string{"/members"}))

	ta.catalog.path = "/tmp/exports/Members.docx"
	require.NoError(t, ta.Export(ctx, []string{"word"}))
	assert.Equal(t, services.ExportWord, ta.catalog.format)
	assert.Equal(t, "Exported to /tmp/exports/Members.docx", ta.note.Current().Text)

	require.ErrorIs(t, ta.Export(ctx, []string{"pdf"}), services.ErrUnknownFormat)

	ta.catalog.stats = models.Stats{"count": float64(12), "average_age": 31.5, "top": nil}
	ta.out.Reset()
	require.NoError(t, ta.Stats(ctx))
	out := ta.out.String()
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "31.5")
}

func TestReturn(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, false, false)
	ctx := context.Background()
	require.NoError(t, ta.Go(ctx, []string{"/loans"}))
	ta.catalog.calls = nil

	require.NoError(t, ta.Return(ctx, []string{"1"}))
	assert.Equal(t, []string{"return", "list loans"}, ta.catalog.calls)

	ta.catalog.retErr = &api.StatusError{StatusCode: 400, Message: "already returned"}
	err := ta.Return(ctx, []string{"1"})
	require.ErrorIs(t, err, api.ErrBadRequest)
	assert.Equal(t, "Could not return the book: already returned", ta.note.Current().Text)
}

func TestExpiredSessionGoesToLogin(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, false, false)
	ctx := context.Background()

	// the backend forgot the session
	ta.backend.loggedIn = ""
	ta.catalog.listErr = &api.StatusError{StatusCode: 401}

	err := ta.Go(ctx, []string{"/books"})
	require.True(t, errors.Is(err, api.ErrUnauthorized))
	assert.False(t, ta.session.IsAuthenticated())
	assert.Equal(t, router.ViewLogin, ta.current.Route.View)
	assert.Contains(t, ta.out.String(), "Session expired")

	// the half-finished login is gone from memory and from storage
	assert.Empty(t, ta.session.Snapshot().PendingUsername)
	_, ok := ta.kv.data[session.PendingUsernameKey]
	assert.False(t, ok)
	assert.Equal(t, 1, ta.cookies.cleared)
}

func TestAnonymousForbiddenGoesToLogin(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, false, false)
	ctx := context.Background()

	ta.backend.loggedIn = ""
	ta.catalog.listErr = &api.StatusError{StatusCode: 403, Message: "Authentication credentials were not provided."}

	err := ta.Go(ctx, []string{"/books"})
	require.ErrorIs(t, err, api.ErrForbidden)
	assert.False(t, ta.session.IsAuthenticated())
	assert.Equal(t, router.ViewLogin, ta.current.Route.View)
	assert.Contains(t, ta.out.String(), "Session expired")
	assert.Empty(t, ta.session.Snapshot().PendingUsername)
}

func TestForbiddenWithLiveSessionIsReported(t *testing.T) {
	stubPrompts(t, "secret")
	ta := newTestApp(t, "")
	ta.login(t, false, false)
	ctx := context.Background()

	ta.catalog.listErr = &api.StatusError{StatusCode: 403, Message: "You do not have permission to perform this action."}

	err := ta.Go(ctx, []string{"/books"})
	require.ErrorIs(t, err, api.ErrForbidden)
	assert.True(t, ta.session.IsAuthenticated())
	assert.Equal(t, "Could not load books: You do not have permission to perform this action.", ta.note.Current().Text)
	assert.Zero(t, ta.cookies.cleared)
}
