package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/cryptox"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/auth"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/revocation"
	"golang.org/x/crypto/bcrypt"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// --- credential store ---

type fakeAccount struct {
	id          string
	username    string
	hash        string
	permissions []string
	active      bool
	refresh     *string
}

type fakeAccounts struct {
	mu   sync.Mutex
	rows map[string]*fakeAccount

	findErr error
	casErr  error

	// afterCAS runs after every successful compare-and-swap, outside the lock.
	afterCAS func(id, expected, next string)
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{rows: map[string]*fakeAccount{}}
}

func (f *fakeAccounts) add(t *testing.T, id, username, password string, permissions ...string) {
	t.Helper()
	hash, err := cryptox.HashPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id] = &fakeAccount{id: id, username: username, hash: hash, permissions: permissions, active: true}
}

func (f *fakeAccounts) setPermissions(id string, permissions ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].permissions = permissions
}

func (f *fakeAccounts) deactivate(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].active = false
}

func (f *fakeAccounts) stored(id string) *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := f.rows[id].refresh; r != nil {
		v := *r
		return &v
	}
	return nil
}

func (f *fakeAccounts) view(r *fakeAccount) *models.Account {
	acc := &models.Account{
		ID:           r.id,
		UserName:     r.username,
		PasswordHash: r.hash,
		Permissions:  append([]string(nil), r.permissions...),
	}
	if r.refresh != nil {
		v := *r.refresh
		acc.RefreshToken = &v
	}
	return acc
}

func (f *fakeAccounts) FindActiveByUsername(ctx context.Context, username string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.username == username && r.active {
			return f.view(r), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) FindActiveByID(ctx context.Context, id string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.active {
		return nil, common.ErrorNotFound
	}
	return f.view(r), nil
}

func (f *fakeAccounts) CompareAndSwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if f.casErr != nil {
		return false, f.casErr
	}

	f.mu.Lock()
	r, ok := f.rows[id]
	if !ok || !r.active || r.refresh == nil || *r.refresh != expected {
		f.mu.Unlock()
		return false, nil
	}
	r.refresh = &next
	f.mu.Unlock()

	if f.afterCAS != nil {
		f.afterCAS(id, expected, next)
	}
	return true, nil
}

func (f *fakeAccounts) ReplaceRefreshToken(ctx context.Context, id, next string) (*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.active {
		return nil, common.ErrorNotFound
	}
	prev := r.refresh
	r.refresh = &next
	return prev, nil
}

func (f *fakeAccounts) ClearRefreshToken(ctx context.Context, id string) (*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	prev := r.refresh
	r.refresh = nil
	return prev, nil
}

// --- revocation ledger ---

type fakeLedger struct {
	mu      sync.Mutex
	now     func() time.Time
	pairs   map[string]revocation.Pairing
	revoked map[string]time.Time

	recordErr error
	dropErr   error
	checkErr  error
	// hang makes IsBlacklisted wait for its context to end.
	hang bool

	checks atomic.Int64
}

func newFakeLedger(now func() time.Time) *fakeLedger {
	return &fakeLedger{now: now, pairs: map[string]revocation.Pairing{}, revoked: map[string]time.Time{}}
}

func (l *fakeLedger) Record(ctx context.Context, p revocation.Pairing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.recordErr != nil {
		return l.recordErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pairs[p.RefreshID] = p
	return nil
}

func (l *fakeLedger) Blacklist(ctx context.Context, accessID string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !expiresAt.After(l.now()) {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[accessID] = expiresAt
	return nil
}

func (l *fakeLedger) IsBlacklisted(ctx context.Context, accessID string) (bool, error) {
	l.checks.Add(1)
	if l.hang {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if l.checkErr != nil {
		return false, l.checkErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.revoked[accessID]
	return ok && exp.After(l.now()), nil
}

func (l *fakeLedger) DropPair(ctx context.Context, refreshID string) (*revocation.Pairing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.dropErr != nil {
		return nil, l.dropErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.pairs[refreshID]
	if !ok || !p.ExpiresAt.After(l.now()) {
		return nil, nil
	}
	delete(l.pairs, refreshID)
	return &p, nil
}

func (l *fakeLedger) pairCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pairs)
}

func (l *fakeLedger) revokedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.revoked)
}

// --- repository manager ---

type fakeRepoManager struct {
	accounts *fakeAccounts
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return m.accounts }
func (m *fakeRepoManager) Ledger(*sql.DB) *revocation.PostgresLedger    { return nil }

// --- fixture ---

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc      *AccountService
	accounts *fakeAccounts
	ledger   *fakeLedger
	clock    *testClock
	codec    *auth.Codec
}

const (
	accessTTL  = 30 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &testClock{t: time.Unix(1_700_000_000, 0)}
	accs := newFakeAccounts()
	ledger := newFakeLedger(clock.Now)
	codec := auth.NewCodec([]byte("test-secret"), accessTTL, refreshTTL, auth.WithClock(clock.Now))
	cfg := &config.Config{StoreTimeout: 2 * time.Second, RequestTimeout: 5 * time.Second}

	svc := NewAccountService(nil, &fakeRepoManager{accounts: accs}, ledger, codec, cfg, nopLogger{})

	return &fixture{svc: svc, accounts: accs, ledger: ledger, clock: clock, codec: codec}
}

func isPlaceholder(v string) bool {
	return strings.HasPrefix(v, rotatingPrefix)
}
