package model

import "time"

// Business represents a car-wash company stored in the
// `lavado_auto_empresa` table. Businesses authenticate separately from
// customers and must be verified by an administrator before they can
// log in.
//
// Fields:
//  ID                  – primary key (id_empresa).
//  Name                – trade name (nombre_empresa).
//  Email               – unique login email.
//  Password            – password hash (contrasena column).
//  Address             – street address of the wash location.
//  Phone               – contact phone.
//  Latitude/Longitude  – optional map coordinates.
//  Verified            – set by an administrator; required for login.
//  IsActive            – false once deactivated for security.
//  ProfileImage        – image host path or URL (nullable).
//  FailedLoginAttempts – consecutive failed login counter.
//  LockoutTime         – start of the temporary lock (nullable).
//  FirstWarningSent    – true after the first temporary lock.
//  RegisteredAt        – registration timestamp.
type Business struct {
	ID                  uint64     // lavado_auto_empresa.id_empresa
	Name                string     // lavado_auto_empresa.nombre_empresa
	Email               string     // lavado_auto_empresa.email
	Password            string     // lavado_auto_empresa.contrasena
	Address             string     // lavado_auto_empresa.direccion
	Phone               string     // lavado_auto_empresa.telefono
	Latitude            *float64   // lavado_auto_empresa.latitud (nullable)
	Longitude           *float64   // lavado_auto_empresa.longitud (nullable)
	Verified            bool       // lavado_auto_empresa.verificada
	IsActive            bool       // lavado_auto_empresa.is_active
	ProfileImage        *string    // lavado_auto_empresa.profile_image (nullable)
	FailedLoginAttempts int        // lavado_auto_empresa.failed_login_attempts
	LockoutTime         *time.Time // lavado_auto_empresa.lockout_time (nullable)
	FirstWarningSent    bool       // lavado_auto_empresa.first_warning_sent
	RegisteredAt        time.Time  // lavado_auto_empresa.fecha_registro
}

// BankingInfo groups the payout columns of `lavado_auto_empresa`.
// Changing any of these resets the administrator verification flag, so
// the repository always writes them together.
type BankingInfo struct {
	AccountHolder   *string `json:"titular_cuenta"`
	HolderDocType   *string `json:"tipo_documento_titular"`
	HolderDocNumber *string `json:"numero_documento_titular"`
	Bank            *string `json:"banco"`
	AccountType     *string `json:"tipo_cuenta"`
	AccountNumber   *string `json:"numero_cuenta"`
	SwiftCode       *string `json:"swift_code"`
	IBAN            *string `json:"iban"`
	TaxID           *string `json:"nit_empresa"`
	LegalName       *string `json:"razon_social"`
	TaxRegime       *string `json:"regimen_tributario"`
	BillingEmail    *string `json:"email_facturacion"`
	BillingPhone    *string `json:"telefono_facturacion"`
	PaymentsContact *string `json:"responsable_pagos"`
	Notes           *string `json:"notas_bancarias"`
}
