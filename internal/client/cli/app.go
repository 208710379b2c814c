package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/libraryclient/internal/client/api"
	"github.com/dmitrijs2005/libraryclient/internal/client/config"
	"github.com/dmitrijs2005/libraryclient/internal/client/notify"
	"github.com/dmitrijs2005/libraryclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/libraryclient/internal/client/router"
	"github.com/dmitrijs2005/libraryclient/internal/client/services"
	"github.com/dmitrijs2005/libraryclient/internal/client/session"
	"github.com/dmitrijs2005/libraryclient/internal/client/storage"
	"github.com/dmitrijs2005/libraryclient/internal/logging"
)

// cookieStore is the persisted cookie set the App drops when a session ends.
type cookieStore interface {
	Clear(ctx context.Context) error
}

type App struct {
	config  *config.Config
	db      *sql.DB
	session *session.Store
	router  *router.Router
	catalog services.CatalogService
	cookies cookieStore
	note    *notify.Notification
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	// current is the view the user is on.
	current router.Match
}

// NewApp opens the local state file and builds every client component from
// c. The persisted session cookie and pending username are restored, so a
// restarted client resumes where it stopped.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, c.StatePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	cookies := storage.NewCookieStore(db)
	apiClient, err := api.NewClient(c.ServerURL,
		api.WithTimeout(c.RequestTimeout),
		api.WithLogger(log),
		api.WithCookieStore(cookies),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := apiClient.RestoreCookies(ctx); err != nil {
		log.Warn(ctx, "could not restore session cookies", "error", err)
	}

	store := session.NewStore(apiClient, metadata.NewSQLiteRepository(db), log)
	if err := store.InitializePending(ctx); err != nil {
		log.Warn(ctx, "could not load pending login", "error", err)
	}

	note := &notify.Notification{}
	note.OnHide(func(m notify.Message) {
		log.Debug(context.Background(), "notification hidden", "text", m.Text)
	})

	return &App{
		config:  c,
		db:      db,
		session: store,
		router:  router.New(router.NewGuard(store, log), log),
		catalog: services.NewCatalogService(apiClient, c.ExportDir, log),
		cookies: cookies,
		note:    note,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run opens the start route and serves commands until the user quits or
// input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, titleStyle.Render("Library client")+" (type 'help' for commands)")
	_ = a.Go(ctx, []string{a.config.StartRoute})

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close releases the local state file.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "closing state file", "error", err)
		}
		a.db = nil
	}
}

func (a *App) isAuthenticated() bool {
	return a.session.IsAuthenticated()
}

// status is shown in the prompt: current path and who is logged in.
func (a *App) status() string {
	st := a.session.Snapshot()
	s := a.current.Path
	if s == "" {
		s = "/"
	}
	if st.CurrentUser != nil {
		who := st.CurrentUser.Username
		if st.IsSuperuser {
			who += " admin"
		}
		if st.IsSecondFactorVerified {
			who += " 2fa"
		}
		s = fmt.Sprintf("%s (%s)", s, who)
	} else if st.PendingUsername != "" {
		s = fmt.Sprintf("%s (%s, otp pending)", s, st.PendingUsername)
	}
	return s
}
