package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/server/migrations"
	"github.com/avolkov/fileshare/internal/server/models"
)

// PostgresManager implements Manager on a pgx-backed *sql.DB.
type PostgresManager struct {
	db *sql.DB
}

// NewPostgresManager opens the database and applies pending migrations.
func NewPostgresManager(ctx context.Context, dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresManager{db: db}
	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return m, nil
}

func (m *PostgresManager) Close() error { return m.db.Close() }

func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, m.db, ".")
}

func (m *PostgresManager) Users() Users   { return &postgresUsers{db: m.db} }
func (m *PostgresManager) Files() Files   { return &postgresFiles{db: m.db} }
func (m *PostgresManager) Shares() Shares { return &postgresShares{db: m.db} }
func (m *PostgresManager) Links() Links   { return &postgresLinks{db: m.db} }
func (m *PostgresManager) Audit() Audit   { return &postgresAudit{db: m.db} }

func mapDBError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return common.ErrorAlreadyExists
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

type postgresUsers struct {
	db *sql.DB
}

func (r *postgresUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash, otp_secret, otp_enabled, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	saved := *user
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.OTPSecret, user.OTPEnabled, user.Role).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	return &saved, nil
}

func (r *postgresUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, otp_secret, otp_enabled, role, created_at
		 FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.OTPSecret, &user.OTPEnabled, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	return user, nil
}

func (r *postgresUsers) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, otp_secret, otp_enabled, role, created_at
		 FROM users
		 WHERE lower(username) = lower($1) OR lower(email) = lower($1)
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, login).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.OTPSecret, &user.OTPEnabled, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	return user, nil
}

func (r *postgresUsers) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users
		 SET username = $2, email = $3, password_hash = $4, otp_secret = $5, otp_enabled = $6, role = $7
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.OTPSecret, user.OTPEnabled, user.Role)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type postgresFiles struct {
	db *sql.DB
}

func (r *postgresFiles) Create(ctx context.Context, file *models.File) error {
	query :=
		`INSERT INTO files (id, owner_id, name, size, content_type, object_key, wrapped_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 `

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.OwnerID, file.Name, file.Size, file.ContentType, file.ObjectKey, file.WrappedKey)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *postgresFiles) GetByID(ctx context.Context, id string) (*models.File, error) {
	query :=
		`SELECT id, owner_id, name, size, content_type, object_key, wrapped_key, created_at
		 FROM files
		 WHERE id = $1
		 `

	file := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.OwnerID, &file.Name, &file.Size,
		&file.ContentType, &file.ObjectKey, &file.WrappedKey, &file.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	return file, nil
}

func (r *postgresFiles) ListVisible(ctx context.Context, userID int64) ([]*models.File, error) {
	query :=
		`SELECT DISTINCT f.id, f.owner_id, f.name, f.size, f.content_type, f.object_key, f.wrapped_key, f.created_at
		 FROM files f
		 LEFT JOIN shares s ON s.file_id = f.id
		 WHERE f.owner_id = $1 OR s.recipient_id = $1
		 ORDER BY f.created_at DESC, f.id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []*models.File
	for rows.Next() {
		file := &models.File{}
		if err := rows.Scan(
			&file.ID, &file.OwnerID, &file.Name, &file.Size,
			&file.ContentType, &file.ObjectKey, &file.WrappedKey, &file.CreatedAt); err != nil {
			return nil, mapDBError(err)
		}
		out = append(out, file)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err)
	}
	return out, nil
}

func (r *postgresFiles) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type postgresShares struct {
	db *sql.DB
}

func (r *postgresShares) Create(ctx context.Context, share *models.Share) error {
	query :=
		`INSERT INTO shares (id, file_id, owner_id, recipient_id, permission, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 `

	_, err := r.db.ExecContext(ctx, query,
		share.ID, share.FileID, share.OwnerID, share.RecipientID, share.Permission)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *postgresShares) GetByID(ctx context.Context, id string) (*models.Share, error) {
	query :=
		`SELECT id, file_id, owner_id, recipient_id, permission, created_at
		 FROM shares
		 WHERE id = $1
		 `

	share := &models.Share{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&share.ID, &share.FileID, &share.OwnerID, &share.RecipientID, &share.Permission, &share.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	return share, nil
}

func (r *postgresShares) GetByFileAndRecipient(ctx context.Context, fileID string, recipientID int64) (*models.Share, error) {
	query :=
		`SELECT id, file_id, owner_id, recipient_id, permission, created_at
		 FROM shares
		 WHERE file_id = $1 AND recipient_id = $2
		 `

	share := &models.Share{}
	err := r.db.QueryRowContext(ctx, query, fileID, recipientID).Scan(
		&share.ID, &share.FileID, &share.OwnerID, &share.RecipientID, &share.Permission, &share.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	return share, nil
}

func (r *postgresShares) ListByRecipient(ctx context.Context, recipientID int64) ([]*models.Share, error) {
	query :=
		`SELECT id, file_id, owner_id, recipient_id, permission, created_at
		 FROM shares
		 WHERE recipient_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []*models.Share
	for rows.Next() {
		share := &models.Share{}
		if err := rows.Scan(
			&share.ID, &share.FileID, &share.OwnerID, &share.RecipientID,
			&share.Permission, &share.CreatedAt); err != nil {
			return nil, mapDBError(err)
		}
		out = append(out, share)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err)
	}
	return out, nil
}

func (r *postgresShares) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *postgresShares) DeleteByFile(ctx context.Context, fileID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE file_id = $1`, fileID)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

type postgresLinks struct {
	db *sql.DB
}

func (r *postgresLinks) Create(ctx context.Context, link *models.Link) error {
	query :=
		`INSERT INTO links (id, file_id, owner_id, permission, expires_at, max_access, access_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 `

	_, err := r.db.ExecContext(ctx, query,
		link.ID, link.FileID, link.OwnerID, link.Permission, link.ExpiresAt, link.MaxAccess, link.AccessCount)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *postgresLinks) GetByID(ctx context.Context, id string) (*models.Link, error) {
	query :=
		`SELECT id, file_id, owner_id, permission, expires_at, max_access, access_count, created_at
		 FROM links
		 WHERE id = $1
		 `

	link := &models.Link{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&link.ID, &link.FileID, &link.OwnerID, &link.Permission,
		&link.ExpiresAt, &link.MaxAccess, &link.AccessCount, &link.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}

	return link, nil
}

func (r *postgresLinks) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Link, error) {
	query :=
		`SELECT id, file_id, owner_id, permission, expires_at, max_access, access_count, created_at
		 FROM links
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []*models.Link
	for rows.Next() {
		link := &models.Link{}
		if err := rows.Scan(
			&link.ID, &link.FileID, &link.OwnerID, &link.Permission,
			&link.ExpiresAt, &link.MaxAccess, &link.AccessCount, &link.CreatedAt); err != nil {
			return nil, mapDBError(err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err)
	}
	return out, nil
}

func (r *postgresLinks) IncrementAccess(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE links SET access_count = access_count + 1 WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *postgresLinks) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *postgresLinks) DeleteByFile(ctx context.Context, fileID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE file_id = $1`, fileID)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

type postgresAudit struct {
	db *sql.DB
}

func (r *postgresAudit) Record(ctx context.Context, entry *models.AuditEntry) error {
	query :=
		`INSERT INTO audit_log (user_id, file_id, action, created_at)
		 VALUES ($1, $2, $3, now())
		 `

	_, err := r.db.ExecContext(ctx, query, entry.UserID, entry.FileID, entry.Action)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *postgresAudit) ListByFile(ctx context.Context, fileID string) ([]*models.AuditEntry, error) {
	query :=
		`SELECT id, user_id, file_id, action, created_at
		 FROM audit_log
		 WHERE file_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.FileID, &entry.Action, &entry.CreatedAt); err != nil {
			return nil, mapDBError(err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err)
	}
	return out, nil
}
