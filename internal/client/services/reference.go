package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pinboard/internal/dbx"
)

// DefaultSessionTTL is how long a persisted identity reference stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// ReferenceStore persists the id of the last authenticated identity. It is
// a reference only: the profile is re-fetched from the backend on restore.
type ReferenceStore interface {
	// Load returns the stored id. ok is false when nothing usable is stored;
	// an expired reference is removed and reported as absent.
	Load(ctx context.Context) (id int64, ok bool, err error)
	Save(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}

type sqliteReferenceStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewReferenceStore keeps the reference in the metadata table of db.
func NewReferenceStore(db *sql.DB, ttl time.Duration) ReferenceStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sqliteReferenceStore{db: db, ttl: ttl, now: time.Now}
}

func (s *sqliteReferenceStore) Load(ctx context.Context) (int64, bool, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	rawID, err := repo.Get(ctx, metadata.KeyUserID)
	if err != nil {
		return 0, false, err
	}
	if rawID == nil {
		return 0, false, nil
	}

	id, err := strconv.ParseInt(string(rawID), 10, 64)
	if err != nil || id <= 0 {
		return 0, false, fmt.Errorf("corrupt session reference %q", rawID)
	}

	rawExp, err := repo.Get(ctx, metadata.KeyUserIDExpiresAt)
	if err != nil {
		return 0, false, err
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, string(rawExp))
	if err != nil || !s.now().Before(expiresAt) {
		if err := s.Clear(ctx); err != nil {
			return 0, false, err
		}
		return 0, false, nil
	}

	return id, true, nil
}

// Save writes the id and its expiry in one transaction.
func (s *sqliteReferenceStore) Save(ctx context.Context, id int64) error {
	expiresAt := s.now().Add(s.ttl).UTC().Format(time.RFC3339Nano)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyUserID, []byte(strconv.FormatInt(id, 10))); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyUserIDExpiresAt, []byte(expiresAt))
	})
	if err != nil {
		return fmt.Errorf("save session reference: %w", err)
	}
	return nil
}

func (s *sqliteReferenceStore) Clear(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(s.db)
	if err := repo.Delete(ctx, metadata.KeyUserID, metadata.KeyUserIDExpiresAt); err != nil {
		return fmt.Errorf("clear session reference: %w", err)
	}
	return nil
}
