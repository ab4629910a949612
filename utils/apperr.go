package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Error kinds. Every workflow error falls into one of these buckets so
// handlers can map them to HTTP statuses in one place.
type ErrorKind int

const (
	KindAuthorization ErrorKind = iota + 1
	KindPrecondition
	KindNotFound
	KindExternal
	KindValidation
)

// AppError is a typed workflow error with a stable machine code.
type AppError struct {
	Kind    ErrorKind `json:"-"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap attaches an underlying cause while keeping the code and kind.
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

// Is lets errors.Is match wrapped copies against the package sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

var (
	ErrNotAuthenticated = &AppError{Kind: KindAuthorization, Code: "NOT_AUTHENTICATED", Message: "authentication required"}
	ErrNotLeader        = &AppError{Kind: KindAuthorization, Code: "NOT_LEADER", Message: "only the team leader can do this"}
	ErrNotAdmin         = &AppError{Kind: KindAuthorization, Code: "NOT_ADMIN", Message: "admin access required"}
	ErrNotTeamMember    = &AppError{Kind: KindAuthorization, Code: "NOT_TEAM_MEMBER", Message: "you are not a member of this team"}

	ErrTeamInactive    = &AppError{Kind: KindPrecondition, Code: "TEAM_INACTIVE", Message: "team is not active"}
	ErrModuleLimit     = &AppError{Kind: KindPrecondition, Code: "MODULE_LIMIT_REACHED", Message: "team already has an active module"}
	ErrAlreadyAssigned = &AppError{Kind: KindPrecondition, Code: "MODULE_ALREADY_ASSIGNED", Message: "module is already assigned to this team"}
	ErrTeamFull        = &AppError{Kind: KindPrecondition, Code: "TEAM_FULL", Message: "team has reached its member limit"}
	ErrTeamPrivate     = &AppError{Kind: KindPrecondition, Code: "TEAM_PRIVATE", Message: "team is private"}
	ErrAlreadyInTeam   = &AppError{Kind: KindPrecondition, Code: "ALREADY_IN_TEAM", Message: "user already belongs to a team"}
	ErrLeaderLeaving   = &AppError{Kind: KindPrecondition, Code: "LEADER_CANNOT_LEAVE", Message: "transfer leadership before leaving the team"}
	ErrPhaseRecorded   = &AppError{Kind: KindPrecondition, Code: "PHASE_ALREADY_RECORDED", Message: "phase has already been recorded"}
	ErrModuleNotOpen   = &AppError{Kind: KindPrecondition, Code: "MODULE_NOT_AVAILABLE", Message: "module is not available for assignment"}

	ErrTeamNotFound       = &AppError{Kind: KindNotFound, Code: "TEAM_NOT_FOUND", Message: "team not found"}
	ErrModuleNotFound     = &AppError{Kind: KindNotFound, Code: "MODULE_NOT_FOUND", Message: "module not found"}
	ErrTeamModuleNotFound = &AppError{Kind: KindNotFound, Code: "TEAM_MODULE_NOT_FOUND", Message: "no module assigned to this team"}
	ErrPaymentNotFound    = &AppError{Kind: KindNotFound, Code: "PAYMENT_NOT_FOUND", Message: "payment not found"}
	ErrResourceNotFound   = &AppError{Kind: KindNotFound, Code: "RESOURCE_NOT_FOUND", Message: "resource not found"}

	ErrGatewayFailed = &AppError{Kind: KindExternal, Code: "PAYMENT_INIT_FAILED", Message: "payment initialization failed"}
	ErrGatewayVerify = &AppError{Kind: KindExternal, Code: "PAYMENT_VERIFY_FAILED", Message: "payment verification failed"}

	ErrUnknownPhase  = &AppError{Kind: KindValidation, Code: "UNKNOWN_PHASE", Message: "unknown phase name"}
	ErrInvalidStatus = &AppError{Kind: KindValidation, Code: "INVALID_STATUS", Message: "invalid status value"}
)

// StatusFor maps an error to the HTTP status a handler should respond with.
func StatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindAuthorization:
			return fiber.StatusForbidden
		case KindPrecondition:
			return fiber.StatusConflict
		case KindNotFound:
			return fiber.StatusNotFound
		case KindExternal:
			return fiber.StatusBadGateway
		case KindValidation:
			return fiber.StatusBadRequest
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// HandleError writes the standard error payload for err. Untyped errors are
// reported as a generic internal error so internals never leak to clients.
func HandleError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)

	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(status).JSON(fiber.Map{
			"error": fiber.Map{"code": appErr.Code, "message": appErr.Message},
		})
	}
	if status == fiber.StatusNotFound {
		return c.Status(status).JSON(fiber.Map{
			"error": fiber.Map{"code": "NOT_FOUND", "message": "resource not found"},
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"code": "INTERNAL_ERROR", "message": "something went wrong"},
	})
}
