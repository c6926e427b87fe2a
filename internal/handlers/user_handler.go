package handlers

import (
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errInvalidID = fiber.NewError(fiber.StatusBadRequest, "Invalid user id")

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	user, err := h.users.Me(c.UserContext(), p)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	user, err := h.users.UpdateMe(c.UserContext(), p, &req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	if err := h.users.DeactivateMe(c.UserContext(), p); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Admin endpoints. The route group guarantees an admin principal.

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	n := len(out)
	return c.JSON(dto.Envelope{
		Status:  dto.StatusSuccess,
		Results: &n,
		Data:    fiber.Map{"users": out},
	})
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	return ErrRouteNotDefined
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	admin, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	user, err := h.users.AdminUpdate(c.UserContext(), admin, id, &req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	admin, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	id, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.users.Purge(c.UserContext(), admin, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func userID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
