// Package data provides PostgreSQL repositories for the storefront.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SquizAI/JMEFIT-V3/internal/data/pgxutil"
	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
)

// ProfileRepo provides database operations for user profile records.
// It implements ports.ProfileStore.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a ProfileRepo with a custom time provider (useful for tests).
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

// Get returns the profile for uid. A missing record maps to a not_found
// AppError.
func (r *ProfileRepo) Get(ctx context.Context, uid string) (domainauth.UserProfile, error) {
	var out domainauth.UserProfile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		row := conn.QueryRow(ctx, `
			SELECT uid, email, display_name, role, created_at, last_login
			FROM user_profiles
			WHERE uid = $1
		`, uid)
		return row.Scan(&out.UID, &out.Email, &out.DisplayName, &out.Role, &out.CreatedAt, &out.LastLogin)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.UserProfile{}, apperrors.NotFoundf("profile %s not found", uid)
		}
		return domainauth.UserProfile{}, apperrors.MapDBError(fmt.Errorf("get profile: %w", err))
	}
	return out, nil
}

// Create inserts a new profile record. CreatedAt and LastLogin default to
// now when unset.
func (r *ProfileRepo) Create(ctx context.Context, profile domainauth.UserProfile) error {
	if profile.UID == "" {
		return apperrors.Validation("profile uid is required")
	}
	now := r.timeProvider.Now().UTC()
	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	lastLogin := now
	if profile.LastLogin != nil {
		lastLogin = profile.LastLogin.UTC()
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO user_profiles (uid, email, display_name, role, created_at, last_login)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			profile.UID,
			strings.ToLower(strings.TrimSpace(profile.Email)),
			profile.DisplayName,
			profile.Role,
			createdAt,
			lastLogin,
		)
		return execErr
	})
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("create profile: %w", err))
	}
	return nil
}

// UpdateLastLogin merges a new last-login timestamp into the record.
// Updating a missing record is not an error; callers treat this whole
// path as best-effort.
func (r *ProfileRepo) UpdateLastLogin(ctx context.Context, uid string, at time.Time) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			UPDATE user_profiles SET last_login = $2 WHERE uid = $1
		`, uid, at.UTC())
		return execErr
	})
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("update last login: %w", err))
	}
	return nil
}

// List returns all profiles, newest first.
func (r *ProfileRepo) List(ctx context.Context) ([]domainauth.UserProfile, error) {
	var out []domainauth.UserProfile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, `
			SELECT uid, email, display_name, role, created_at, last_login
			FROM user_profiles
			ORDER BY created_at DESC
		`)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		for rows.Next() {
			var p domainauth.UserProfile
			if scanErr := rows.Scan(&p.UID, &p.Email, &p.DisplayName, &p.Role, &p.CreatedAt, &p.LastLogin); scanErr != nil {
				return scanErr
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list profiles: %w", err))
	}
	return out, nil
}
