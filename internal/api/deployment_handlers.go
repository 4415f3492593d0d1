package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/factory-launchpad/internal/config"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"go.uber.org/zap"
)

// BuildRequest is the body of POST /api/deployments.
type BuildRequest struct {
	config.EntityConfig
	Verify bool `json:"verify"`
}

// VerifyRequest is the body of POST /api/verifications.
type VerifyRequest struct {
	Address    string `json:"address" validate:"required,eth_addr"`
	EntityType string `json:"entity_type" validate:"omitempty,oneof=CMTAT GlobalList CMTATFactory"`
	// Request supplies the build arguments of a CMTAT entity.
	Request *config.EntityConfig `json:"request,omitempty" validate:"-"`
}

func (s *APIServer) handleBuild(c *fiber.Ctx) error {
	var body BuildRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req, err := body.Resolve()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.logger.Info("build requested", zap.Stringer("deployment_id", req.DeploymentID), zap.Bool("verify", body.Verify))
	result := s.launchpad.Build(c.UserContext(), req, body.Verify)
	return c.Status(statusForResult(result, fiber.StatusCreated)).JSON(result)
}

func (s *APIServer) handleGetAddress(c *fiber.Ctx) error {
	id, err := config.ParseDeploymentID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result := s.launchpad.Resolve(c.UserContext(), id)
	return c.Status(statusForResult(result, fiber.StatusOK)).JSON(result)
}

func (s *APIServer) handleVerify(c *fiber.Ctx) error {
	var body VerifyRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validator.New().Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req *models.DeploymentRequest
	if body.Request != nil {
		resolved, err := body.Request.Resolve()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		req = &resolved
	}

	id, err := s.launchpad.Verify(c.UserContext(), common.HexToAddress(body.Address), models.EntityType(body.EntityType), req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"verification_id": id,
	})
}

func (s *APIServer) handleVerificationStatus(c *fiber.Ctx) error {
	status, err := s.launchpad.VerificationStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(status)
}

// statusForResult maps a run outcome to an HTTP status.
func statusForResult(result models.DeploymentResult, success int) int {
	if result.Err == nil {
		return success
	}
	switch result.Err.Kind {
	case models.ErrorKindConfiguration:
		return fiber.StatusBadRequest
	case models.ErrorKindAddressNotFound:
		if result.Partial {
			return fiber.StatusAccepted
		}
		return fiber.StatusNotFound
	case models.ErrorKindConfirmationTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadGateway
	}
}
