package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/accounts-backend/internal/models"
	"github.com/baharkarakas/accounts-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

func NewUsers(pool *pgxpool.Pool) repository.Users {
	return &usersRepo{pool: pool}
}

const userCols = `id, name, email, password_hash, role, phone, bio, picture, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Phone, &u.Bio, &u.Picture, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, repository.ErrNotFound
	}
	return u, err
}

// Create inserts a new account. The unique index on lower(email) is the
// authority on duplicates; a violation surfaces as ErrEmailTaken so the
// service treats the write-time race the same as its pre-check.
func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users(id, name, email, password_hash, role, phone, bio, picture)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING `+userCols,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Phone, u.Bio, u.Picture,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.User{}, repository.ErrEmailTaken
		}
		return models.User{}, err
	}
	return created, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE lower(email)=lower($1)`, email))
}

func (r *usersRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userCols+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&u.Phone, &u.Bio, &u.Picture, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (r *usersRepo) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role=$1`, role).Scan(&n)
	return n, err
}

func (r *usersRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}

// UpdateProfile applies only the supplied fields in a single statement;
// nil patch members keep their stored value.
func (r *usersRepo) UpdateProfile(ctx context.Context, id string, patch repository.ProfilePatch) (models.User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET
		   phone      = COALESCE($2, phone),
		   bio        = COALESCE($3, bio),
		   picture    = COALESCE($4, picture),
		   updated_at = now()
		 WHERE id=$1
		 RETURNING `+userCols,
		id, patch.Phone, patch.Bio, patch.Picture,
	)
	return scanUser(row)
}

func (r *usersRepo) UpdateRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET role=$2, updated_at=now() WHERE id=$1 RETURNING `+userCols,
		id, role,
	)
	return scanUser(row)
}

func (r *usersRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
