package handler

import (
	"errors"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"kos-manager/internal/middleware"
	"kos-manager/internal/models"
	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidation makes binding errors report json field names.
func RegisterValidation() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// currentUser writes a 401 when the request has no user.
func currentUser(c *gin.Context) (*models.User, bool) {
	u := middleware.CurrentUser(c)
	if u == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Please log in to access this page.")
		return nil, false
	}
	return u, true
}

// idParam parses :id. Anything that is not a positive integer cannot name a
// record, so it is a 404.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Not found")
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// queryCents parses an optional dollar amount query parameter.
func queryCents(c *gin.Context, key string) (*int64, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil, errors.New("must be a non-negative number")
	}
	cents := int64(math.Round(f * 100))
	return &cents, nil
}

// bindError answers a failed ShouldBind with the first offending field.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fe.Field() + " is invalid"
		switch fe.Tag() {
		case "required":
			msg = fe.Field() + " is required"
		case "max":
			msg = fe.Field() + " is too long (max " + fe.Param() + ")"
		case "min":
			msg = fe.Field() + " is too short (min " + fe.Param() + ")"
		case "email":
			msg = "invalid email address"
		case "eqfield":
			msg = "passwords do not match"
		}
		util.FieldError(c, fe.Field(), msg)
		return
	}
	util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request parameters")
}

// respondError maps service errors to the response envelope. Unknown errors
// are attached to the context for the request logger and answered with 500.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		util.FieldError(c, verr.Field, verr.Message)
	case errors.Is(err, service.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Not found")
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		util.Error(c, http.StatusConflict, util.CodeConflict, capitalize(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionInvalid):
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, capitalize(err.Error()))
	case errors.Is(err, service.ErrRoomUnavailable),
		errors.Is(err, service.ErrTenantInactive),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPaymentSettled),
		errors.Is(err, service.ErrForeignBackup):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, capitalize(err.Error()))
	default:
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal server error")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pageResponse[T any, R any](p service.Page[T], conv func(*T) R) util.Response {
	items := make([]R, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, conv(&p.Items[i]))
	}
	return util.Response{
		"items":    items,
		"total":    p.Total,
		"page":     p.Page,
		"per_page": p.PerPage,
		"pages":    p.Pages(),
	}
}
