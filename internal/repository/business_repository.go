package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/autonew/carwash-booking/internal/model"
)

// BusinessRepo persists car-wash companies in `lavado_auto_empresa`.
type BusinessRepo struct{ db *sql.DB }

func NewBusinessRepo(db *sql.DB) *BusinessRepo { return &BusinessRepo{db: db} }

func (r *BusinessRepo) DB() *sql.DB { return r.db }

const businessColumns = `id_empresa, nombre_empresa, email, contrasena,
       COALESCE(direccion,''), COALESCE(telefono,''), latitud, longitud,
       verificada, is_active, profile_image,
       failed_login_attempts, lockout_time, first_warning_sent, fecha_registro`

func scanBusiness(row *sql.Row) (model.Business, error) {
	var b model.Business
	err := row.Scan(&b.ID, &b.Name, &b.Email, &b.Password,
		&b.Address, &b.Phone, &b.Latitude, &b.Longitude,
		&b.Verified, &b.IsActive, &b.ProfileImage,
		&b.FailedLoginAttempts, &b.LockoutTime, &b.FirstWarningSent, &b.RegisteredAt)
	return b, err
}

// GetByEmail fetches a business by normalized email.
func (r *BusinessRepo) GetByEmail(ctx context.Context, email string) (model.Business, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanBusiness(r.db.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM lavado_auto_empresa WHERE email=? LIMIT 1", email))
}

// GetByID fetches a business by id.
func (r *BusinessRepo) GetByID(ctx context.Context, id uint64) (model.Business, error) {
	return scanBusiness(r.db.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM lavado_auto_empresa WHERE id_empresa=? LIMIT 1", id))
}

// RecordFailedAttempt bumps the failure counter atomically and returns
// the new count plus the warning flag.
func (r *BusinessRepo) RecordFailedAttempt(ctx context.Context, id uint64) (attempts int, warned bool, err error) {
	_, err = r.db.ExecContext(ctx, `
		UPDATE lavado_auto_empresa
		   SET failed_login_attempts = failed_login_attempts + 1
		 WHERE id_empresa = ?`, id)
	if err != nil {
		return 0, false, err
	}
	err = r.db.QueryRowContext(ctx,
		"SELECT failed_login_attempts, first_warning_sent FROM lavado_auto_empresa WHERE id_empresa=?",
		id).Scan(&attempts, &warned)
	return attempts, warned, err
}

// LockAccount starts the 15-minute temporary lock and raises the
// warning flag.
func (r *BusinessRepo) LockAccount(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_empresa
		   SET lockout_time = NOW(), first_warning_sent = TRUE
		 WHERE id_empresa = ?`, id)
	return err
}

// DeactivateAccount disables the account after repeated failures past
// the warning.
func (r *BusinessRepo) DeactivateAccount(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_empresa
		   SET is_active = FALSE, lockout_time = NULL
		 WHERE id_empresa = ?`, id)
	return err
}

// ClearLockout removes an expired temporary lock.
func (r *BusinessRepo) ClearLockout(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE lavado_auto_empresa SET lockout_time = NULL WHERE id_empresa = ?", id)
	return err
}

// ResetLoginState clears all lockout bookkeeping after a successful
// login.
func (r *BusinessRepo) ResetLoginState(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_empresa
		   SET failed_login_attempts = 0,
		       lockout_time = NULL,
		       first_warning_sent = FALSE
		 WHERE id_empresa = ?`, id)
	return err
}

// BusinessProfileUpdate carries the optional fields of a partial
// basic-profile update. Nil leaves the column untouched.
type BusinessProfileUpdate struct {
	Name      *string
	Address   *string
	Phone     *string
	Latitude  *float64
	Longitude *float64
}

// UpdateProfile applies a partial basic-profile update through fixed
// parameterized SQL.
func (r *BusinessRepo) UpdateProfile(ctx context.Context, id uint64, p BusinessProfileUpdate) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_empresa
		   SET nombre_empresa = COALESCE(?, nombre_empresa),
		       direccion      = COALESCE(?, direccion),
		       telefono       = COALESCE(?, telefono),
		       latitud        = COALESCE(?, latitud),
		       longitud       = COALESCE(?, longitud)
		 WHERE id_empresa = ?`,
		p.Name, p.Address, p.Phone, p.Latitude, p.Longitude, id)
	return err
}

// GetBanking returns the payout columns plus the verification state.
func (r *BusinessRepo) GetBanking(ctx context.Context, id uint64) (model.BankingInfo, bool, *time.Time, error) {
	var b model.BankingInfo
	var verified bool
	var verifiedAt *time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT titular_cuenta, tipo_documento_titular, numero_documento_titular,
		       banco, tipo_cuenta, numero_cuenta, swift_code, iban,
		       nit_empresa, razon_social, regimen_tributario,
		       email_facturacion, telefono_facturacion, responsable_pagos, notas_bancarias,
		       datos_bancarios_verificados, fecha_verificacion_bancaria
		  FROM lavado_auto_empresa WHERE id_empresa=?`, id).Scan(
		&b.AccountHolder, &b.HolderDocType, &b.HolderDocNumber,
		&b.Bank, &b.AccountType, &b.AccountNumber, &b.SwiftCode, &b.IBAN,
		&b.TaxID, &b.LegalName, &b.TaxRegime,
		&b.BillingEmail, &b.BillingPhone, &b.PaymentsContact, &b.Notes,
		&verified, &verifiedAt)
	return b, verified, verifiedAt, err
}

// UpdateBanking rewrites the payout columns as a unit and resets the
// administrator verification, since changed banking data must be
// re-checked before the next settlement run.
func (r *BusinessRepo) UpdateBanking(ctx context.Context, id uint64, b model.BankingInfo) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_empresa
		   SET titular_cuenta              = COALESCE(?, titular_cuenta),
		       tipo_documento_titular      = COALESCE(?, tipo_documento_titular),
		       numero_documento_titular    = COALESCE(?, numero_documento_titular),
		       banco                       = COALESCE(?, banco),
		       tipo_cuenta                 = COALESCE(?, tipo_cuenta),
		       numero_cuenta               = COALESCE(?, numero_cuenta),
		       swift_code                  = COALESCE(?, swift_code),
		       iban                        = COALESCE(?, iban),
		       nit_empresa                 = COALESCE(?, nit_empresa),
		       razon_social                = COALESCE(?, razon_social),
		       regimen_tributario          = COALESCE(?, regimen_tributario),
		       email_facturacion           = COALESCE(?, email_facturacion),
		       telefono_facturacion        = COALESCE(?, telefono_facturacion),
		       responsable_pagos           = COALESCE(?, responsable_pagos),
		       notas_bancarias             = COALESCE(?, notas_bancarias),
		       datos_bancarios_verificados = FALSE,
		       fecha_verificacion_bancaria = NULL
		 WHERE id_empresa = ?`,
		b.AccountHolder, b.HolderDocType, b.HolderDocNumber,
		b.Bank, b.AccountType, b.AccountNumber, b.SwiftCode, b.IBAN,
		b.TaxID, b.LegalName, b.TaxRegime,
		b.BillingEmail, b.BillingPhone, b.PaymentsContact, b.Notes, id)
	return err
}

// UpdatePassword stores a freshly hashed password.
func (r *BusinessRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE lavado_auto_empresa SET contrasena=? WHERE id_empresa=?", hash, id)
	return err
}

// UpdatePhoto stores the hosted image URL, or NULL to remove it.
func (r *BusinessRepo) UpdatePhoto(ctx context.Context, id uint64, url *string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE lavado_auto_empresa SET profile_image=? WHERE id_empresa=?", url, id)
	return err
}
