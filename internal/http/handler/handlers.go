package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"finobs/internal/model"
	"finobs/internal/service"
)

// HealthCheck reports whether the database is reachable.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe with no dependency checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Register creates a new account from a JSON body.
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		p, err := svc.Register(c.UserContext(), in)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrValidation):
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			case errors.Is(err, service.ErrEmailTaken):
				return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", "email already registered")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string         `json:"token"`
	Profile *model.Profile `json:"profile"`
}

// Login verifies credentials and issues an access token.
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		token, p, err := svc.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
			case errors.Is(err, service.ErrEmailNotVerified):
				return writeError(c, fiber.StatusUnauthorized, "EMAIL_NOT_VERIFIED", "email not verified")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(loginResponse{Token: token, Profile: p})
	}
}

// GetProfile returns the caller's profile.
func GetProfile(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.GetProfile(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// profilePatch is the client-settable subset of a profile update. The
// document counter is maintained by the backend and cannot be patched.
type profilePatch struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	CompanyName        *string `json:"company_name"`
	CompanyDescription *string `json:"company_description"`
	CompanyWebsite     *string `json:"company_website"`
}

// UpdateProfile applies a partial update to the caller's profile and returns
// the updated record.
func UpdateProfile(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in profilePatch
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		upd := model.ProfileUpdate{
			FirstName:          in.FirstName,
			LastName:           in.LastName,
			CompanyName:        in.CompanyName,
			CompanyDescription: in.CompanyDescription,
			CompanyWebsite:     in.CompanyWebsite,
		}
		if err := svc.UpdateProfile(c.UserContext(), upd); err != nil {
			return writeServiceError(c, err)
		}

		p, err := svc.GetProfile(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// ListDocuments returns the caller's documents, newest first.
func ListDocuments(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListDocuments(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		if docs == nil {
			docs = []model.Document{}
		}
		return c.JSON(docs)
	}
}

// UploadDocument accepts a multipart upload (field name: file) and stores it
// for the caller.
func UploadDocument(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.UploadDocument(c.UserContext(), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// DeleteDocument removes one of the caller's documents.
func DeleteDocument(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteDocument(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DocumentURL returns a time-limited download URL for one of the caller's
// documents.
func DocumentURL(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := svc.DocumentURL(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url, "expires_in": int(service.PresignExpiry.Seconds())})
	}
}
