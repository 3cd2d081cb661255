package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/revuo/reviews-api/internal/core/ports"
)

// UserHandler handles account routes: signup, login, current user, profile
// update, and account deletion.
type UserHandler struct {
	auth  ports.AuthService
	users ports.UserService
}

func NewUserHandler(auth ports.AuthService, users ports.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// Signup creates a new account and logs it in.
//
// @Summary      Sign up
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      422   {object}  messageResponse
// @Router       /api/users/signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, token, err := h.auth.Signup(c.Request().Context(), ports.SignupInput{
		Fullname: req.Fullname,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user), Token: token})
}

// Login authenticates a user.
//
// @Summary      Log in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  messageResponse
// @Router       /api/users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, token, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}

// Me returns the authenticated user's own account.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Success      200  {object}  dataResponse
// @Failure      401  {object}  messageResponse
// @Router       /api/users [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dataResponse{Data: toUserResponse(user)})
}

// Update applies an allow-listed profile update to the caller's own account.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "User id"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /api/users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), c.Param("id"), userID, fields)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dataResponse{Data: toUserResponse(user)})
}

// Delete removes the caller's account and cascades deletion of every review
// it authored.
//
// @Summary      Delete account
// @Tags         users
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      401  {object}  messageResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
