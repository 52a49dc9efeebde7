package model

import "time"

// User represents a customer account stored in the legacy
// `lavado_auto_usuario` table. The schema was originally created by a
// Django application, which is why the table keeps Django-style columns
// (is_staff, is_superuser, failed_login_attempts). The json tags are
// omitted here because these structs are primarily used internally by
// the repository layer; handlers define separate response types with
// the JSON field names the mobile clients expect.
//
// Fields:
//  ID                  – primary key (id_usuario).
//  FullName            – display name of the customer.
//  Username            – unique login alias.
//  Email               – unique email address (correo).
//  Password            – password hash, pbkdf2_sha256 or bcrypt.
//  Phone               – contact phone, may be empty.
//  Address             – street address, may be empty.
//  Role                – role name, always "cliente" for this table.
//  IsActive            – false once the account is deactivated for security.
//  FailedLoginAttempts – consecutive failed login counter.
//  LockoutTime         – start of the temporary 15 minute lock (nullable).
//  FirstWarningSent    – true after the first temporary lock was applied.
//  LastFailedLogin     – timestamp of the most recent failure (nullable).
//  ProfilePicture      – image host path or URL (nullable).
//  RegisteredAt        – account creation timestamp (fecha_registro).
type User struct {
	ID                  uint64     // lavado_auto_usuario.id_usuario
	FullName            string     // lavado_auto_usuario.nombre_completo
	Username            string     // lavado_auto_usuario.nombre_usuario
	Email               string     // lavado_auto_usuario.correo
	Password            string     // lavado_auto_usuario.password
	Phone               string     // lavado_auto_usuario.telefono
	Address             string     // lavado_auto_usuario.direccion
	Role                string     // lavado_auto_usuario.rol
	IsActive            bool       // lavado_auto_usuario.is_active
	FailedLoginAttempts int        // lavado_auto_usuario.failed_login_attempts
	LockoutTime         *time.Time // lavado_auto_usuario.lockout_time (nullable)
	FirstWarningSent    bool       // lavado_auto_usuario.first_warning_sent
	LastFailedLogin     *time.Time // lavado_auto_usuario.last_failed_login (nullable)
	ProfilePicture      *string    // lavado_auto_usuario.profile_picture (nullable)
	RegisteredAt        time.Time  // lavado_auto_usuario.fecha_registro
}

// Role names form a closed set. Tokens carrying anything else are
// rejected by the role middleware.
const (
	RoleCliente = "cliente"
	RoleEmpresa = "empresa"
	RoleAdmin   = "admin"
)
