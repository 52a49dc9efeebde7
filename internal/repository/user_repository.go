package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/autonew/carwash-booking/internal/model"
)

// UserRepo persists customer accounts in `lavado_auto_usuario`.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *UserRepo) DB() *sql.DB { return r.db }

const userColumns = `id_usuario, nombre_completo, nombre_usuario, correo, password,
       COALESCE(telefono,''), COALESCE(direccion,''), rol, is_active,
       failed_login_attempts, lockout_time, first_warning_sent, last_failed_login,
       profile_picture, fecha_registro`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.Password,
		&u.Phone, &u.Address, &u.Role, &u.IsActive,
		&u.FailedLoginAttempts, &u.LockoutTime, &u.FirstWarningSent, &u.LastFailedLogin,
		&u.ProfilePicture, &u.RegisteredAt)
	return u, err
}

// Create inserts a new customer and returns its ID. The correo and
// nombre de usuario are checked first so the caller gets a precise
// sentinel; the duplicate-key fallback still catches races.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))

	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lavado_auto_usuario WHERE correo=?", email).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, ErrEmailExists
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lavado_auto_usuario WHERE nombre_usuario=?", u.Username).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, ErrUsernameExists
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lavado_auto_usuario
		  (nombre_completo, nombre_usuario, correo, password, telefono, direccion,
		   rol, is_active, failed_login_attempts, first_warning_sent, fecha_registro)
		VALUES (?,?,?,?,?,?,?,TRUE,0,FALSE,NOW())`,
		u.FullName, u.Username, email, u.Password, u.Phone, u.Address, u.Role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a customer by normalized correo.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM lavado_auto_usuario WHERE correo=? LIMIT 1", email))
}

// GetByID fetches a customer by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM lavado_auto_usuario WHERE id_usuario=? LIMIT 1", id))
}

// RecordFailedAttempt bumps the failure counter atomically and returns
// the new count plus the warning flag so the caller can decide the
// next lockout step.
func (r *UserRepo) RecordFailedAttempt(ctx context.Context, id uint64) (attempts int, warned bool, err error) {
	_, err = r.db.ExecContext(ctx, `
		UPDATE lavado_auto_usuario
		   SET failed_login_attempts = failed_login_attempts + 1,
		       last_failed_login = NOW()
		 WHERE id_usuario = ?`, id)
	if err != nil {
		return 0, false, err
	}
	err = r.db.QueryRowContext(ctx,
		"SELECT failed_login_attempts, first_warning_sent FROM lavado_auto_usuario WHERE id_usuario=?",
		id).Scan(&attempts, &warned)
	return attempts, warned, err
}

// LockAccount starts the 15-minute temporary lock and raises the
// warning flag.
func (r *UserRepo) LockAccount(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_usuario
		   SET lockout_time = NOW(), first_warning_sent = TRUE
		 WHERE id_usuario = ?`, id)
	return err
}

// DeactivateAccount disables the account after repeated failures past
// the warning. Reactivation is manual.
func (r *UserRepo) DeactivateAccount(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_usuario
		   SET is_active = FALSE, lockout_time = NULL
		 WHERE id_usuario = ?`, id)
	return err
}

// ClearLockout removes an expired temporary lock without touching the
// failure counter.
func (r *UserRepo) ClearLockout(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE lavado_auto_usuario SET lockout_time = NULL WHERE id_usuario = ?", id)
	return err
}

// ResetLoginState clears all lockout bookkeeping after a successful
// login.
func (r *UserRepo) ResetLoginState(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_usuario
		   SET failed_login_attempts = 0,
		       lockout_time = NULL,
		       first_warning_sent = FALSE,
		       last_failed_login = NULL
		 WHERE id_usuario = ?`, id)
	return err
}

// UserProfileUpdate carries the optional fields of a partial profile
// update. Nil means leave the column untouched.
type UserProfileUpdate struct {
	FullName *string
	Phone    *string
	Address  *string
}

// UpdateProfile applies a partial update through fixed parameterized
// SQL. COALESCE keeps the stored value whenever the field is nil.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p UserProfileUpdate) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_usuario
		   SET nombre_completo = COALESCE(?, nombre_completo),
		       telefono        = COALESCE(?, telefono),
		       direccion       = COALESCE(?, direccion)
		 WHERE id_usuario = ?`,
		p.FullName, p.Phone, p.Address, id)
	return err
}

// UpdatePassword stores a freshly hashed password.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE lavado_auto_usuario SET password=? WHERE id_usuario=?", hash, id)
	return err
}

// UpdatePhoto stores the hosted image URL, or NULL to remove it.
func (r *UserRepo) UpdatePhoto(ctx context.Context, id uint64, url *string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE lavado_auto_usuario SET profile_picture=? WHERE id_usuario=?", url, id)
	return err
}
