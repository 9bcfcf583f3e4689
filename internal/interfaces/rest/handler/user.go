package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/auth"
	"github.com/pot-code/course-gate/internal/infrastructure/driver"
	"github.com/pot-code/course-gate/internal/infrastructure/validate"
	"github.com/pot-code/course-gate/internal/user"
)

// BlacklistKey kv key marking a signed out token
func BlacklistKey(token string) string {
	return "blacklist:" + token
}

// UserHandler user related operations
type UserHandler struct {
	JWTUtil     *auth.JWTUtil
	KVStore     driver.KeyValueDB
	UserUseCase user.UserUseCase
	Validator   validate.Validator
}

// NewUserHandler create an user controller instance
func NewUserHandler(
	JWTUtil *auth.JWTUtil,
	KVStore driver.KeyValueDB,
	UserUseCase user.UserUseCase,
	Validator validate.Validator,
) *UserHandler {
	return &UserHandler{
		JWTUtil:     JWTUtil,
		KVStore:     KVStore,
		UserUseCase: UserUseCase,
		Validator:   Validator,
	}
}

type credential struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string            `json:"token"`
	User  *domain.UserModel `json:"user"`
}

// HandleSignIn issue a session token
func (uh *UserHandler) HandleSignIn(c echo.Context) (err error) {
	post := new(credential)
	if err = c.Bind(post); err != nil {
		return respondUnbindable(c, "credential", err)
	}
	if errs := uh.Validator.Struct(post); errs != nil {
		return respondInvalid(c, "Failed to validate fields", errs)
	}

	signedIn, err := uh.UserUseCase.SignIn(c.Request().Context(), post.Email, post.Password)
	if err != nil {
		return respondError(c, err)
	}
	tokenStr, err := uh.JWTUtil.GenerateTokenStr(signedIn)
	if err != nil {
		return err
	}
	uh.JWTUtil.SetClientToken(c, tokenStr)
	signedIn.Password = ""
	return c.JSON(http.StatusOK, &sessionResponse{Token: tokenStr, User: signedIn})
}

// HandleSignUp register a learner account
func (uh *UserHandler) HandleSignUp(c echo.Context) (err error) {
	post := new(domain.UserModel)
	if err = c.Bind(post); err != nil {
		return respondUnbindable(c, "user entity", err)
	}
	if errs := uh.Validator.Struct(post); errs != nil {
		return respondInvalid(c, "Failed to validate fields", errs)
	}

	created, err := uh.UserUseCase.SignUp(c.Request().Context(), post)
	if err != nil {
		return respondError(c, err)
	}
	created.Password = ""
	return c.JSON(http.StatusCreated, created)
}

// HandleSignOut blacklist the token until it expires
func (uh *UserHandler) HandleSignOut(c echo.Context) (err error) {
	ju := uh.JWTUtil
	kv := uh.KVStore

	if tokenStr, err := ju.ExtractToken(c); err == nil {
		if token, err := ju.Validate(tokenStr); err == nil {
			ju.ClearClientToken(c)
			if err := kv.SetEX(c.Request().Context(), BlacklistKey(tokenStr), "", token.TimeRemaining()); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		}
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleUserExists whether an email is already registered
func (uh *UserHandler) HandleUserExists(c echo.Context) (err error) {
	email := c.QueryParam("email")
	if errs := uh.Validator.Empty("email", email); errs != nil {
		return respondInvalid(c, "Failed to validate params", errs)
	}

	existing, err := uh.UserUseCase.Exists(c.Request().Context(), email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}
