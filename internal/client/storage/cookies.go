package storage

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrijs2005/libraryclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/libraryclient/internal/dbx"
)

// CookieStore persists the backend session cookies as cookie:<name> rows.
type CookieStore struct {
	db *sql.DB
}

func NewCookieStore(db *sql.DB) *CookieStore {
	return &CookieStore{db: db}
}

// Load returns the saved cookies ordered by name.
func (s *CookieStore) Load(ctx context.Context) ([]*http.Cookie, error) {
	all, err := metadata.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	cookies := make([]*http.Cookie, 0, len(all))
	for key, value := range all {
		name, ok := strings.CutPrefix(key, cookiePrefix)
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: string(value), Path: "/"})
	}
	sort.Slice(cookies, func(i, j int) bool { return cookies[i].Name < cookies[j].Name })
	return cookies, nil
}

// Save replaces the saved cookie set with cookies in a single transaction, so
// a cookie the server expired does not linger in the state file.
func (s *CookieStore) Save(ctx context.Context, cookies []*http.Cookie) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.DeletePrefix(ctx, cookiePrefix); err != nil {
			return err
		}
		for _, c := range cookies {
			if c == nil || c.Name == "" {
				continue
			}
			if err := repo.Set(ctx, cookiePrefix+c.Name, []byte(c.Value)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear forgets every saved cookie.
func (s *CookieStore) Clear(ctx context.Context) error {
	return s.Save(ctx, nil)
}
