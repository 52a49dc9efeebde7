package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/autonew/carwash-booking/internal/booking"
	"github.com/autonew/carwash-booking/internal/config"
	"github.com/autonew/carwash-booking/internal/imagestore"
	"github.com/autonew/carwash-booking/internal/model"
	"github.com/autonew/carwash-booking/internal/repository"
	"github.com/autonew/carwash-booking/internal/utils"
)

// BusinessHandler serves the /api/empresa surface: login, profile and
// banking management, the service list and the dashboard.
type BusinessHandler struct {
	Cfg        config.Config
	Businesses *repository.BusinessRepo
	Services   *repository.ServiceRepo
	Images     imagestore.Client
}

func NewBusinessHandler(cfg config.Config, b *repository.BusinessRepo, s *repository.ServiceRepo, img imagestore.Client) *BusinessHandler {
	return &BusinessHandler{Cfg: cfg, Businesses: b, Services: s, Images: img}
}

type businessProfile struct {
	ID           uint64   `json:"id_empresa"`
	Name         string   `json:"nombre_empresa"`
	Email        string   `json:"email"`
	Address      string   `json:"direccion"`
	Phone        string   `json:"telefono"`
	Latitude     *float64 `json:"latitud"`
	Longitude    *float64 `json:"longitud"`
	Verified     bool     `json:"verificada"`
	ProfileImage *string  `json:"profile_image"`
	RegisteredAt string   `json:"fecha_registro"`
}

func toBusinessProfile(b model.Business) businessProfile {
	return businessProfile{
		ID:           b.ID,
		Name:         b.Name,
		Email:        b.Email,
		Address:      b.Address,
		Phone:        b.Phone,
		Latitude:     b.Latitude,
		Longitude:    b.Longitude,
		Verified:     b.Verified,
		ProfileImage: b.ProfileImage,
		RegisteredAt: b.RegisteredAt.UTC().Format(time.RFC3339),
	}
}

// Login authenticates a business. Besides the lockout rules shared
// with customer login, a business must be verificada before it can
// enter at all.
func (h *BusinessHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "correo y password requeridos")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Businesses.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, "credenciales inválidas")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la empresa", err)
	}

	if !b.IsActive {
		return fail(c, http.StatusForbidden,
			"cuenta desactivada por seguridad, contacte al soporte")
	}
	if !b.Verified {
		return fail(c, http.StatusForbidden,
			"empresa pendiente de verificación por el administrador")
	}

	if b.LockoutTime != nil {
		elapsed := time.Since(*b.LockoutTime)
		if elapsed < lockoutWindow {
			remaining := int(math.Ceil((lockoutWindow - elapsed).Minutes()))
			return fail(c, http.StatusLocked, "cuenta bloqueada temporalmente",
				echo.Map{"remainingMinutes": remaining})
		}
		if err := h.Businesses.ClearLockout(ctx, b.ID); err != nil {
			return failServer(c, h.Cfg.Dev(), "error actualizando el bloqueo", err)
		}
	}

	if !utils.VerifyPassword(b.Password, req.Password) {
		attempts, warned, err := h.Businesses.RecordFailedAttempt(ctx, b.ID)
		if err != nil {
			return failServer(c, h.Cfg.Dev(), "error registrando el intento", err)
		}
		switch booking.NextLockoutStep(attempts, warned) {
		case booking.LockoutTemporary:
			if err := h.Businesses.LockAccount(ctx, b.ID); err != nil {
				return failServer(c, h.Cfg.Dev(), "error bloqueando la cuenta", err)
			}
			return fail(c, http.StatusLocked, "cuenta bloqueada temporalmente por intentos fallidos",
				echo.Map{"remainingMinutes": int(lockoutWindow.Minutes())})
		case booking.LockoutDeactivate:
			if err := h.Businesses.DeactivateAccount(ctx, b.ID); err != nil {
				return failServer(c, h.Cfg.Dev(), "error desactivando la cuenta", err)
			}
			return fail(c, http.StatusForbidden,
				"cuenta desactivada por seguridad, contacte al soporte")
		}
		return fail(c, http.StatusUnauthorized,
			fmt.Sprintf("credenciales inválidas, le quedan %d intentos",
				booking.AttemptsLeft(attempts, warned)))
	}

	if b.FailedLoginAttempts > 0 || b.LockoutTime != nil || b.FirstWarningSent {
		if err := h.Businesses.ResetLoginState(ctx, b.ID); err != nil {
			return failServer(c, h.Cfg.Dev(), "error reiniciando el estado de login", err)
		}
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Claims{
		ID: b.ID, Email: b.Email, Role: model.RoleEmpresa,
	}, h.Cfg.TokenTTLHours)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "no se pudo emitir el token")
	}

	return respond(c, http.StatusOK, "login exitoso", echo.Map{
		"token":   token.Token,
		"empresa": toBusinessProfile(b),
	})
}

// Profile returns the business profile plus its banking data.
func (h *BusinessHandler) Profile(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id := principalID(c)
	b, err := h.Businesses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "empresa no encontrada")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando el perfil", err)
	}
	banking, verified, verifiedAt, err := h.Businesses.GetBanking(ctx, id)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los datos bancarios", err)
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"empresa": toBusinessProfile(b),
		"datos_bancarios": echo.Map{
			"info":               banking,
			"verificados":        verified,
			"fecha_verificacion": verifiedAt,
		},
	})
}

type updateBusinessReq struct {
	Name      *string  `json:"nombre_empresa"`
	Address   *string  `json:"direccion"`
	Phone     *string  `json:"telefono"`
	Latitude  *float64 `json:"latitud"`
	Longitude *float64 `json:"longitud"`
}

// UpdateProfile applies a partial basic-profile update.
func (h *BusinessHandler) UpdateProfile(c echo.Context) error {
	var req updateBusinessReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if req.Name == nil && req.Address == nil && req.Phone == nil &&
		req.Latitude == nil && req.Longitude == nil {
		return fail(c, http.StatusBadRequest, "nada que actualizar")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id := principalID(c)
	if err := h.Businesses.UpdateProfile(ctx, id, repository.BusinessProfileUpdate{
		Name: req.Name, Address: req.Address, Phone: req.Phone,
		Latitude: req.Latitude, Longitude: req.Longitude,
	}); err != nil {
		return failServer(c, h.Cfg.Dev(), "error actualizando el perfil", err)
	}

	b, err := h.Businesses.GetByID(ctx, id)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando el perfil", err)
	}
	return respond(c, http.StatusOK, "perfil actualizado", toBusinessProfile(b))
}

// UpdateBanking rewrites the payout data. Any change resets the
// administrator verification, so the response warns about it.
func (h *BusinessHandler) UpdateBanking(c echo.Context) error {
	var req model.BankingInfo
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id := principalID(c)
	if err := h.Businesses.UpdateBanking(ctx, id, req); err != nil {
		return failServer(c, h.Cfg.Dev(), "error actualizando los datos bancarios", err)
	}
	return respond(c, http.StatusOK,
		"datos bancarios actualizados, pendientes de verificación", nil)
}

// ChangePassword verifies the current password before replacing it.
func (h *BusinessHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "password actual y nueva requeridas")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Businesses.GetByID(ctx, principalID(c))
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando la empresa", err)
	}
	if !utils.VerifyPassword(b.Password, req.Current) {
		return fail(c, http.StatusUnauthorized, "password actual incorrecta")
	}

	hash, err := utils.HashPassword(req.New, h.Cfg.PBKDF2Iterations)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "no se pudo actualizar la password")
	}
	if err := h.Businesses.UpdatePassword(ctx, b.ID, hash); err != nil {
		return failServer(c, h.Cfg.Dev(), "error guardando la password", err)
	}
	return respond(c, http.StatusOK, "password actualizada", nil)
}

// UploadPhoto replaces the business profile image.
func (h *BusinessHandler) UploadPhoto(c echo.Context) error {
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

	id := principalID(c)
	b, err := h.Businesses.GetByID(ctx, id)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando la empresa", err)
	}

	url, err := h.Images.Upload(c.Request().Context(), "perfiles/empresas", file.Filename, src)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "no se pudo subir la imagen")
	}
	if err := h.Businesses.UpdatePhoto(ctx, id, &url); err != nil {
		return failServer(c, h.Cfg.Dev(), "error guardando la foto", err)
	}
	if b.ProfileImage != nil {
		if pid := imagestore.PublicIDFromURL(*b.ProfileImage); pid != "" {
			_ = h.Images.Destroy(c.Request().Context(), pid)
		}
	}
	return respond(c, http.StatusOK, "foto actualizada", echo.Map{"profile_image": url})
}

// DeletePhoto removes the business profile image from the host and
// clears the column.
func (h *BusinessHandler) DeletePhoto(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id := principalID(c)
	b, err := h.Businesses.GetByID(ctx, id)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando la empresa", err)
	}
	if b.ProfileImage == nil {
		return fail(c, http.StatusNotFound, "no hay foto de perfil")
	}
	if pid := imagestore.PublicIDFromURL(*b.ProfileImage); pid != "" {
		_ = h.Images.Destroy(c.Request().Context(), pid)
	}
	if err := h.Businesses.UpdatePhoto(ctx, id, nil); err != nil {
		return failServer(c, h.Cfg.Dev(), "error eliminando la foto", err)
	}
	return respond(c, http.StatusOK, "foto eliminada", nil)
}

// ListServices returns the services this business offers with the
// effective prices it charges.
func (h *BusinessHandler) ListServices(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	offered, err := h.Services.ListForBusiness(ctx, principalID(c))
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los servicios", err)
	}

	out := make([]echo.Map, 0, len(offered))
	for _, o := range offered {
		out = append(out, echo.Map{
			"id_servicio": o.Service.ID,
			"nombre":      o.Service.Name,
			"descripcion": o.Service.Description,
			"precio_base": o.Service.Price,
			"precio":      o.Price,
		})
	}
	return respond(c, http.StatusOK, "", out)
}

// FullServices returns the complete service picture of the business:
// what it offers with performance stats, what it could request, and
// its open or answered requests.
func (h *BusinessHandler) FullServices(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id := principalID(c)
	assigned, err := h.Services.AssignedWithStats(ctx, id)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los servicios asignados", err)
	}
	available, err := h.Services.Unassigned(ctx, id)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los servicios disponibles", err)
	}
	requests, err := h.Services.RequestsForBusiness(ctx, id)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando las solicitudes", err)
	}

	assignedOut := make([]echo.Map, 0, len(assigned))
	for _, a := range assigned {
		assignedOut = append(assignedOut, echo.Map{
			"id_servicio":        a.Service.ID,
			"nombre":             a.Service.Name,
			"descripcion":        a.Service.Description,
			"precio":             a.Service.Price,
			"total_reservas":     a.Reservations,
			"ingresos_generados": a.Revenue,
		})
	}
	availableOut := make([]echo.Map, 0, len(available))
	for _, s := range available {
		availableOut = append(availableOut, echo.Map{
			"id_servicio": s.ID,
			"nombre":      s.Name,
			"descripcion": s.Description,
			"precio":      s.Price,
		})
	}
	requestsOut := make([]echo.Map, 0, len(requests))
	for _, r := range requests {
		m := echo.Map{
			"id_solicitud":    r.ID,
			"estado":          r.Status,
			"motivo":          r.Reason,
			"fecha_solicitud": r.RequestedAt.UTC().Format(time.RFC3339),
			"respuesta_admin": r.AdminReply,
			"id_servicio":     r.Service.ID,
			"nombre_servicio": r.Service.Name,
			"precio":          r.Service.Price,
		}
		if r.RepliedAt != nil {
			m["fecha_respuesta"] = r.RepliedAt.UTC().Format(time.RFC3339)
		} else {
			m["fecha_respuesta"] = nil
		}
		requestsOut = append(requestsOut, m)
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"servicios_asignados":    assignedOut,
		"servicios_disponibles":  availableOut,
		"solicitudes_pendientes": requestsOut,
	})
}

type serviceRequestReq struct {
	ServiceID   uint64 `json:"servicioId" validate:"required"`
	Reason      string `json:"motivo" validate:"required"`
	Responsible string `json:"usuarioResponsable" validate:"required"`
	Phone       string `json:"telefonoContacto" validate:"required"`
}

// RequestService opens a petition to offer a catalog service. The
// administrator reviews it; the business cannot assign itself.
func (h *BusinessHandler) RequestService(c echo.Context) error {
	var req serviceRequestReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest,
			"servicioId, motivo, usuarioResponsable y telefonoContacto son requeridos")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id := principalID(c)
	svc, err := h.Services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "servicio no encontrado")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando el servicio", err)
	}

	offered, err := h.Services.Offered(ctx, id, req.ServiceID)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error verificando el servicio", err)
	}
	if offered {
		return fail(c, http.StatusBadRequest, "este servicio ya está asignado a su empresa")
	}
	pending, err := h.Services.HasPendingRequest(ctx, id, req.ServiceID)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error verificando las solicitudes", err)
	}
	if pending {
		return fail(c, http.StatusBadRequest, "ya tiene una solicitud pendiente para este servicio")
	}

	reqID, err := h.Services.CreateRequest(ctx, id, req.ServiceID,
		req.Reason, req.Responsible, req.Phone)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error creando la solicitud", err)
	}
	return respond(c, http.StatusCreated,
		"solicitud enviada, será revisada por el administrador", echo.Map{
			"id_solicitud": reqID,
			"servicio":     svc.Name,
			"estado":       "pendiente",
		})
}

// CancelServiceRequest withdraws a pendiente service request.
func (h *BusinessHandler) CancelServiceRequest(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "id inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Services.DeleteRequestForBusiness(ctx, id, principalID(c)); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fail(c, http.StatusNotFound, "solicitud no encontrada")
		case errors.Is(err, repository.ErrConflict):
			return fail(c, http.StatusBadRequest, "solo se pueden cancelar solicitudes pendientes")
		}
		return failServer(c, h.Cfg.Dev(), "error cancelando la solicitud", err)
	}
	return respond(c, http.StatusOK, "solicitud cancelada", nil)
}
