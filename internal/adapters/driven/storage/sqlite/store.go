package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/boxincode/sitekit/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to all
// metadata store interfaces through wrapper types.
type Store struct {
	db     *sql.DB
	path   string
	cipher driven.Cipher
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sitekit/data/sitekit.db. The
// cipher encrypts token material at rest; a nil cipher stores tokens in
// plaintext.
func NewStore(dataDir string, cipher driven.Cipher) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sitekit", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "sitekit.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:     db,
		path:   dbPath,
		cipher: cipher,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// AccountStore returns an AccountStore interface backed by this store.
func (s *Store) AccountStore() driven.AccountStore {
	return &accountStore{store: s}
}

// MembershipStore returns a MembershipStore interface backed by this store.
func (s *Store) MembershipStore() driven.MembershipStore {
	return &membershipStore{store: s}
}

// TokenStore returns a TokenStore interface backed by this store.
func (s *Store) TokenStore() driven.TokenStore {
	return &tokenStore{store: s}
}

// SettingStore returns a SettingStore interface backed by this store.
func (s *Store) SettingStore() driven.SettingStore {
	return &settingStore{store: s}
}

// SnapshotStore returns a SnapshotStore interface backed by this store.
func (s *Store) SnapshotStore() driven.SnapshotStore {
	return &snapshotStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Account Store ====================

// accountStore implements driven.AccountStore.
type accountStore struct {
	store *Store
}

var _ driven.AccountStore = (*accountStore)(nil)

// accountColumns is the scan order shared by all account queries.
const accountColumns = "id, user_id, workspace_id, provider, email, display_name, name, created_at, updated_at"

// accountLabelOrder sorts accounts by their display label.
const accountLabelOrder = `
	CASE
		WHEN name != '' THEN name
		WHEN display_name != '' THEN display_name
		ELSE email
	END COLLATE NOCASE`

// Upsert creates the account identified by (user, workspace, provider,
// email), or refreshes its names. The stored row is returned, along
// with whether a new row was created.
func (s *accountStore) Upsert(ctx context.Context, account domain.Account) (*domain.Account, bool, error) {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	// Look up the existing row first so callers learn whether the
	// upsert created or updated; the unique index still guards races.
	var existingID int64
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id FROM accounts
		WHERE user_id = ? AND workspace_id = ? AND provider = ? AND email = ?
	`, account.UserID, workspaceValue(account.WorkspaceID), account.Provider, account.Email).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("upserting account: %w", err)
	}
	created := errors.Is(err, sql.ErrNoRows)

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, workspace_id, provider, email, display_name, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, workspace_id, provider, email) DO UPDATE SET
			display_name = excluded.display_name,
			updated_at = excluded.updated_at
	`, account.UserID, workspaceValue(account.WorkspaceID), account.Provider, account.Email,
		account.DisplayName, account.Name, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("upserting account: %w", err)
	}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = ? AND workspace_id = ? AND provider = ? AND email = ?
	`, account.UserID, workspaceValue(account.WorkspaceID), account.Provider, account.Email)

	stored, err := scanAccount(row)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// Get retrieves an account by ID.
func (s *accountStore) Get(ctx context.Context, id int64) (*domain.Account, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE id = ?
	`, id)

	return scanAccount(row)
}

// List returns all accounts for a provider, ordered by label.
func (s *accountStore) List(ctx context.Context, provider string) ([]domain.Account, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE provider = ?
		ORDER BY `+accountLabelOrder, provider)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// ListAccessible returns the accounts a user owns or is a member of.
// Accounts of other users sharing a workspace never appear.
func (s *accountStore) ListAccessible(ctx context.Context, userID int64, provider string) ([]domain.Account, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT a.id, a.user_id, a.workspace_id, a.provider, a.email, a.display_name, a.name, a.created_at, a.updated_at
		FROM accounts a
		LEFT JOIN memberships m ON m.account_id = a.id AND m.user_id = ?
		WHERE a.provider = ? AND (a.user_id = ? OR m.user_id IS NOT NULL)
		ORDER BY `+accountLabelOrder, userID, provider, userID)
	if err != nil {
		return nil, fmt.Errorf("querying accessible accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// Delete removes an account. Memberships, tokens and snapshots cascade
// through foreign keys; settings are removed explicitly because their
// account id 0 sentinel rules out a foreign key.
func (s *accountStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM settings WHERE account_id = ?", id); err != nil {
		return fmt.Errorf("deleting account settings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Membership Store ====================

// membershipStore implements driven.MembershipStore.
type membershipStore struct {
	store *Store
}

var _ driven.MembershipStore = (*membershipStore)(nil)

// Save stores or updates a membership.
func (s *membershipStore) Save(ctx context.Context, m domain.Membership) error {
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO memberships (account_id, user_id, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account_id, user_id) DO UPDATE SET
			role = excluded.role,
			updated_at = excluded.updated_at
	`, m.AccountID, m.UserID, string(m.Role), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving membership: %w", err)
	}
	return nil
}

// Get retrieves the membership for (account, user).
func (s *membershipStore) Get(ctx context.Context, accountID, userID int64) (*domain.Membership, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT account_id, user_id, role, created_at, updated_at
		FROM memberships WHERE account_id = ? AND user_id = ?
	`, accountID, userID)

	var m domain.Membership
	var role string
	if err := row.Scan(&m.AccountID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning membership: %w", err)
	}
	m.Role = domain.Role(role)
	return &m, nil
}

// ListByAccount returns all memberships for an account, owner first.
func (s *membershipStore) ListByAccount(ctx context.Context, accountID int64) ([]domain.Membership, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT account_id, user_id, role, created_at, updated_at
		FROM memberships WHERE account_id = ?
		ORDER BY CASE role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, user_id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying memberships: %w", err)
	}
	defer rows.Close()

	var memberships []domain.Membership //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.Membership
		var role string
		if err := rows.Scan(&m.AccountID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning membership: %w", err)
		}
		m.Role = domain.Role(role)
		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memberships: %w", err)
	}

	return memberships, nil
}

// Delete removes the membership for (account, user).
func (s *membershipStore) Delete(ctx context.Context, accountID, userID int64) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM memberships WHERE account_id = ? AND user_id = ?", accountID, userID)
	if err != nil {
		return fmt.Errorf("deleting membership: %w", err)
	}
	return nil
}

// ==================== Token Store ====================

// tokenStore implements driven.TokenStore. Token columns are encrypted
// through the store's cipher on write and decrypted on read; nothing
// outside this type ever touches ciphertext.
type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Get retrieves the token record for an account, decrypted.
func (s *tokenStore) Get(ctx context.Context, accountID int64) (*domain.TokenRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT account_id, access_token, refresh_token, expires_at, scopes, updated_at
		FROM tokens WHERE account_id = ?
	`, accountID)

	var record domain.TokenRecord
	var scopesJSON string
	var expiresAt sql.NullTime
	err := row.Scan(&record.AccountID, &record.AccessToken, &record.RefreshToken,
		&expiresAt, &scopesJSON, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning token: %w", err)
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		record.ExpiresAt = &t
	}
	if err := json.Unmarshal([]byte(scopesJSON), &record.Scopes); err != nil {
		return nil, fmt.Errorf("unmarshaling scopes: %w", err)
	}

	if record.AccessToken, err = s.decrypt(record.AccessToken); err != nil {
		return nil, fmt.Errorf("decrypting access token: %w", err)
	}
	if record.RefreshToken, err = s.decrypt(record.RefreshToken); err != nil {
		return nil, fmt.Errorf("decrypting refresh token: %w", err)
	}

	return &record, nil
}

// Save stores the record for its account, overwriting in place.
func (s *tokenStore) Save(ctx context.Context, record domain.TokenRecord) error {
	scopesJSON, err := json.Marshal(scopesOrEmpty(record.Scopes))
	if err != nil {
		return fmt.Errorf("marshalling scopes: %w", err)
	}

	accessToken, err := s.encrypt(record.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypting access token: %w", err)
	}
	refreshToken, err := s.encrypt(record.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypting refresh token: %w", err)
	}

	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO tokens (account_id, access_token, refresh_token, expires_at, scopes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			scopes = excluded.scopes,
			updated_at = excluded.updated_at
	`, record.AccountID, accessToken, refreshToken,
		nullableTime(record.ExpiresAt), string(scopesJSON), record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Delete removes the stored token for an account.
func (s *tokenStore) Delete(ctx context.Context, accountID int64) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM tokens WHERE account_id = ?", accountID)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

func (s *tokenStore) encrypt(plaintext string) (string, error) {
	if s.store.cipher == nil || plaintext == "" {
		return plaintext, nil
	}
	return s.store.cipher.Encrypt(plaintext)
}

func (s *tokenStore) decrypt(ciphertext string) (string, error) {
	if s.store.cipher == nil || ciphertext == "" {
		return ciphertext, nil
	}
	return s.store.cipher.Decrypt(ciphertext)
}

// ==================== Setting Store ====================

// settingStore implements driven.SettingStore. Module-level settings
// (nil account id) are stored under account id 0.
type settingStore struct {
	store *Store
}

var _ driven.SettingStore = (*settingStore)(nil)

// Get retrieves a setting.
func (s *settingStore) Get(ctx context.Context, accountID *int64, key string) (*domain.Setting, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT account_id, key, value, updated_at
		FROM settings WHERE account_id = ? AND key = ?
	`, settingAccount(accountID), key)

	var setting domain.Setting
	var storedAccount int64
	var value string
	if err := row.Scan(&storedAccount, &setting.Key, &value, &setting.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning setting: %w", err)
	}

	if storedAccount != 0 {
		setting.AccountID = &storedAccount
	}
	setting.Value = json.RawMessage(value)
	return &setting, nil
}

// Set creates or updates a setting.
func (s *settingStore) Set(ctx context.Context, setting domain.Setting) error {
	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO settings (account_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, settingAccount(setting.AccountID), setting.Key, string(setting.Value), setting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}
	return nil
}

// Delete removes a setting.
func (s *settingStore) Delete(ctx context.Context, accountID *int64, key string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM settings WHERE account_id = ? AND key = ?", settingAccount(accountID), key)
	if err != nil {
		return fmt.Errorf("deleting setting: %w", err)
	}
	return nil
}

// DeleteByAccount removes all settings for an account.
func (s *settingStore) DeleteByAccount(ctx context.Context, accountID int64) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM settings WHERE account_id = ?", accountID)
	if err != nil {
		return fmt.Errorf("deleting account settings: %w", err)
	}
	return nil
}

// ==================== Snapshot Store ====================

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// Save upserts the snapshot keyed by (account, connector, period, day).
func (s *snapshotStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO snapshots (account_id, connector, period, data, fetched_at, fetched_on)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, connector, period, fetched_on) DO UPDATE SET
			data = excluded.data,
			fetched_at = excluded.fetched_at
	`, snapshot.AccountID, snapshot.Connector, snapshot.Period,
		string(snapshot.Data), snapshot.FetchedAt, snapshot.FetchedOn)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for (account, connector, period).
func (s *snapshotStore) Latest(ctx context.Context, accountID int64, connector, period string) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT account_id, connector, period, data, fetched_at, fetched_on
		FROM snapshots
		WHERE account_id = ? AND connector = ? AND period = ?
		ORDER BY fetched_on DESC, fetched_at DESC
		LIMIT 1
	`, accountID, connector, period)

	var snapshot domain.Snapshot
	var data string
	if err := row.Scan(&snapshot.AccountID, &snapshot.Connector, &snapshot.Period,
		&data, &snapshot.FetchedAt, &snapshot.FetchedOn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	snapshot.Data = json.RawMessage(data)
	return &snapshot, nil
}

// CountForDay returns how many snapshot rows exist for the key and day.
func (s *snapshotStore) CountForDay(ctx context.Context, accountID int64, connector, period, fetchedOn string) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM snapshots
		WHERE account_id = ? AND connector = ? AND period = ? AND fetched_on = ?
	`, accountID, connector, period, fetchedOn).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting snapshots: %w", err)
	}
	return count, nil
}

// DeleteByAccount removes all snapshots for an account.
func (s *snapshotStore) DeleteByAccount(ctx context.Context, accountID int64) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM snapshots WHERE account_id = ?", accountID)
	if err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// workspaceValue maps a nil workspace to the 0 sentinel so the unique
// index treats all workspace-less accounts as one group.
func workspaceValue(workspaceID *int64) int64 {
	if workspaceID == nil {
		return 0
	}
	return *workspaceID
}

// settingAccount maps a nil (module-level) account to the 0 sentinel.
func settingAccount(accountID *int64) int64 {
	if accountID == nil {
		return 0
	}
	return *accountID
}

// nullableTime converts an optional time for storage.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// scopesOrEmpty avoids storing JSON null for absent scopes.
func scopesOrEmpty(scopes []string) []string {
	if scopes == nil {
		return []string{}
	}
	return scopes
}

// scanAccount scans a single account row.
func scanAccount(row *sql.Row) (*domain.Account, error) {
	var account domain.Account
	var workspaceID int64
	if err := row.Scan(&account.ID, &account.UserID, &workspaceID, &account.Provider,
		&account.Email, &account.DisplayName, &account.Name,
		&account.CreatedAt, &account.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	if workspaceID != 0 {
		account.WorkspaceID = &workspaceID
	}
	return &account, nil
}

// scanAccounts scans multiple account rows.
func scanAccounts(rows *sql.Rows) ([]domain.Account, error) {
	var accounts []domain.Account //nolint:prealloc // size unknown from query
	for rows.Next() {
		var account domain.Account
		var workspaceID int64
		if err := rows.Scan(&account.ID, &account.UserID, &workspaceID, &account.Provider,
			&account.Email, &account.DisplayName, &account.Name,
			&account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		if workspaceID != 0 {
			wid := workspaceID
			account.WorkspaceID = &wid
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return accounts, nil
}
