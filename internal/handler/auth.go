package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/autonew/carwash-booking/internal/booking"
	"github.com/autonew/carwash-booking/internal/config"
	"github.com/autonew/carwash-booking/internal/imagestore"
	"github.com/autonew/carwash-booking/internal/model"
	"github.com/autonew/carwash-booking/internal/repository"
	"github.com/autonew/carwash-booking/internal/utils"
)

// AuthHandler serves customer registration, login and profile
// endpoints under /api/auth.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Images imagestore.Client
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, images imagestore.Client) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Images: images}
}

// ----- DTOs -----

type registerReq struct {
	FullName string `json:"nombre_completo" validate:"required,min=3"`
	Username string `json:"nombre_usuario" validate:"required,min=3"`
	Email    string `json:"correo" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"telefono"`
	Address  string `json:"direccion"`
}

type loginReq struct {
	Email    string `json:"correo" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userProfile struct {
	ID             uint64  `json:"id_usuario"`
	FullName       string  `json:"nombre_completo"`
	Username       string  `json:"nombre_usuario"`
	Email          string  `json:"correo"`
	Phone          string  `json:"telefono"`
	Address        string  `json:"direccion"`
	Role           string  `json:"rol"`
	ProfilePicture *string `json:"profile_picture"`
	RegisteredAt   string  `json:"fecha_registro"`
}

func toUserProfile(u model.User) userProfile {
	return userProfile{
		ID:             u.ID,
		FullName:       u.FullName,
		Username:       u.Username,
		Email:          u.Email,
		Phone:          u.Phone,
		Address:        u.Address,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		RegisteredAt:   u.RegisteredAt.UTC().Format(time.RFC3339),
	}
}

// Register creates a customer account and returns a token right away.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "datos incompletos o inválidos")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.PBKDF2Iterations)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "no se pudo crear el usuario")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, model.User{
		FullName: req.FullName,
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		Password: hash,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     model.RoleCliente,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return fail(c, http.StatusConflict, "el correo ya está registrado")
		case errors.Is(err, repository.ErrUsernameExists):
			return fail(c, http.StatusConflict, "el nombre de usuario ya está registrado")
		}
		return failServer(c, h.Cfg.Dev(), "no se pudo crear el usuario", err)
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Claims{
		ID: uid, Email: strings.ToLower(strings.TrimSpace(req.Email)), Role: model.RoleCliente,
	}, h.Cfg.TokenTTLHours)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "no se pudo emitir el token")
	}

	return respond(c, http.StatusCreated, "usuario registrado", echo.Map{
		"token": token.Token,
		"user": echo.Map{
			"id_usuario": uid, "correo": req.Email,
			"nombre_completo": req.FullName, "rol": model.RoleCliente,
		},
	})
}

// Login verifies credentials with progressive lockout: three straight
// failures earn a 15 minute lock, three more after the warning
// deactivate the account.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "correo y password requeridos")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, "credenciales inválidas")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando el usuario", err)
	}

	if !u.IsActive {
		return fail(c, http.StatusForbidden,
			"cuenta desactivada por seguridad, contacte al soporte")
	}

	if u.LockoutTime != nil {
		elapsed := time.Since(*u.LockoutTime)
		if elapsed < lockoutWindow {
			remaining := int(math.Ceil((lockoutWindow - elapsed).Minutes()))
			return fail(c, http.StatusLocked, "cuenta bloqueada temporalmente",
				echo.Map{"remainingMinutes": remaining})
		}
		if err := h.Users.ClearLockout(ctx, u.ID); err != nil {
			return failServer(c, h.Cfg.Dev(), "error actualizando el bloqueo", err)
		}
	}

	if !utils.VerifyPassword(u.Password, req.Password) {
		attempts, warned, err := h.Users.RecordFailedAttempt(ctx, u.ID)
		if err != nil {
			return failServer(c, h.Cfg.Dev(), "error registrando el intento", err)
		}
		switch booking.NextLockoutStep(attempts, warned) {
		case booking.LockoutTemporary:
			if err := h.Users.LockAccount(ctx, u.ID); err != nil {
				return failServer(c, h.Cfg.Dev(), "error bloqueando la cuenta", err)
			}
			return fail(c, http.StatusLocked, "cuenta bloqueada temporalmente por intentos fallidos",
				echo.Map{"remainingMinutes": int(lockoutWindow.Minutes())})
		case booking.LockoutDeactivate:
			if err := h.Users.DeactivateAccount(ctx, u.ID); err != nil {
				return failServer(c, h.Cfg.Dev(), "error desactivando la cuenta", err)
			}
			return fail(c, http.StatusForbidden,
				"cuenta desactivada por seguridad, contacte al soporte")
		}
		return fail(c, http.StatusUnauthorized,
			fmt.Sprintf("credenciales inválidas, le quedan %d intentos",
				booking.AttemptsLeft(attempts, warned)))
	}

	if u.FailedLoginAttempts > 0 || u.LockoutTime != nil || u.FirstWarningSent {
		if err := h.Users.ResetLoginState(ctx, u.ID); err != nil {
			return failServer(c, h.Cfg.Dev(), "error reiniciando el estado de login", err)
		}
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Claims{
		ID: u.ID, Email: u.Email, Role: u.Role,
	}, h.Cfg.TokenTTLHours)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "no se pudo emitir el token")
	}

	return respond(c, http.StatusOK, "login exitoso", echo.Map{
		"token": token.Token,
		"user":  toUserProfile(u),
	})
}

// Profile returns the authenticated customer's profile.
func (h *AuthHandler) Profile(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, principalID(c))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "usuario no encontrado")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando el perfil", err)
	}
	return respond(c, http.StatusOK, "", toUserProfile(u))
}

type updateProfileReq struct {
	FullName *string `json:"nombre_completo"`
	Phone    *string `json:"telefono"`
	Address  *string `json:"direccion"`
}

// UpdateProfile applies a partial profile update; absent fields keep
// their stored value.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if req.FullName == nil && req.Phone == nil && req.Address == nil {
		return fail(c, http.StatusBadRequest, "nada que actualizar")
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return fail(c, http.StatusBadRequest, "nombre_completo no puede quedar vacío")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := principalID(c)
	if err := h.Users.UpdateProfile(ctx, uid, repository.UserProfileUpdate{
		FullName: req.FullName, Phone: req.Phone, Address: req.Address,
	}); err != nil {
		return failServer(c, h.Cfg.Dev(), "error actualizando el perfil", err)
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando el perfil", err)
	}
	return respond(c, http.StatusOK, "perfil actualizado", toUserProfile(u))
}

type changePasswordReq struct {
	Current string `json:"password_actual" validate:"required"`
	New     string `json:"password_nueva" validate:"required,min=6"`
}

// ChangePassword verifies the current password before writing a fresh
// hash in the legacy-compatible format.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "password actual y nueva requeridas")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, principalID(c))
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando el usuario", err)
	}
	if !utils.VerifyPassword(u.Password, req.Current) {
		return fail(c, http.StatusUnauthorized, "password actual incorrecta")
	}

	hash, err := utils.HashPassword(req.New, h.Cfg.PBKDF2Iterations)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "no se pudo actualizar la password")
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return failServer(c, h.Cfg.Dev(), "error guardando la password", err)
	}
	return respond(c, http.StatusOK, "password actualizada", nil)
}

// UploadPhoto replaces the profile picture, destroying the previous
// hosted image when there was one.
func (h *AuthHandler) UploadPhoto(c echo.Context) error {
	file, err := c.FormFile("foto")
	if err != nil {
		return fail(c, http.StatusBadRequest, "archivo 'foto' requerido")
	}
	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "no se pudo leer el archivo")
	}
	defer src.Close()

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := principalID(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando el usuario", err)
	}

	url, err := h.Images.Upload(c.Request().Context(), "perfiles/usuarios", file.Filename, src)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "no se pudo subir la imagen")
	}
	if err := h.Users.UpdatePhoto(ctx, uid, &url); err != nil {
		return failServer(c, h.Cfg.Dev(), "error guardando la foto", err)
	}

	if u.ProfilePicture != nil {
		if pid := imagestore.PublicIDFromURL(*u.ProfilePicture); pid != "" {
			_ = h.Images.Destroy(c.Request().Context(), pid)
		}
	}
	return respond(c, http.StatusOK, "foto actualizada", echo.Map{"profile_picture": url})
}

// DeletePhoto removes the profile picture from the host and clears the
// column.
func (h *AuthHandler) DeletePhoto(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := principalID(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando el usuario", err)
	}
	if u.ProfilePicture == nil {
		return fail(c, http.StatusNotFound, "no hay foto de perfil")
	}
	if pid := imagestore.PublicIDFromURL(*u.ProfilePicture); pid != "" {
		_ = h.Images.Destroy(c.Request().Context(), pid)
	}
	if err := h.Users.UpdatePhoto(ctx, uid, nil); err != nil {
		return failServer(c, h.Cfg.Dev(), "error eliminando la foto", err)
	}
	return respond(c, http.StatusOK, "foto eliminada", nil)
}
