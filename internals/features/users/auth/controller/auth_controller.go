// file: internals/features/users/auth/controller/auth_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"athletiq_backend/internals/configs"
	authdto "athletiq_backend/internals/features/users/auth/dto"
	authmodel "athletiq_backend/internals/features/users/auth/model"
	authsvc "athletiq_backend/internals/features/users/auth/service"
	usermodel "athletiq_backend/internals/features/users/user/model"
	helper "athletiq_backend/internals/helpers"
)

type AuthController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validator: validator.New()}
}

// POST /auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req authdto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := ac.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "hash password failed")
	}

	u := usermodel.UserModel{
		UserName: req.UserName,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashed),
		Role:     usermodel.RoleUser,
	}
	if req.Phone != "" {
		u.Phone = &req.Phone
	}

	if err := ac.DB.WithContext(c.Context()).Create(&u).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return fiber.NewError(fiber.StatusConflict, "email already registered")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "create user failed")
	}

	return ac.respondWithTokens(c, &u, fiber.StatusCreated)
}

// POST /auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req authdto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := ac.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var u usermodel.UserModel
	if err := ac.DB.WithContext(c.Context()).
		First(&u, "email = ? AND is_active = true", strings.ToLower(strings.TrimSpace(req.Email))).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	return ac.respondWithTokens(c, &u, fiber.StatusOK)
}

// POST /auth/login/google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req authdto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := ac.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(req.IDToken, []string{configs.GoogleClientID}); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid google token")
	}
	claims, err := googleAuthIDTokenVerifier.Decode(req.IDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "decode google token failed")
	}

	email := strings.ToLower(claims.Email)
	var u usermodel.UserModel
	err = ac.DB.WithContext(c.Context()).First(&u, "email = ?", email).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = usermodel.UserModel{
			UserName: claims.Name,
			Email:    email,
			GoogleID: &claims.Sub,
			Role:     usermodel.RoleUser,
		}
		if err := ac.DB.WithContext(c.Context()).Create(&u).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "create user failed")
		}
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	default:
		if u.GoogleID == nil {
			u.GoogleID = &claims.Sub
			_ = ac.DB.WithContext(c.Context()).Model(&u).Update("google_id", claims.Sub).Error
		}
	}

	return ac.respondWithTokens(c, &u, fiber.StatusOK)
}

// POST /auth/refresh
func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	var req authdto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := ac.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	userID, err := authsvc.ParseRefreshToken(req.RefreshToken)
	if err != nil || userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid refresh token")
	}

	var stored authmodel.RefreshToken
	if err := ac.DB.WithContext(c.Context()).
		First(&stored, "token = ? AND expired_at > now()", req.RefreshToken).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "refresh token revoked or expired")
	}

	var u usermodel.UserModel
	if err := ac.DB.WithContext(c.Context()).First(&u, "id = ? AND is_active = true", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "user not found")
	}

	// rotate: drop the old refresh token before handing out a new pair
	_ = ac.DB.WithContext(c.Context()).Delete(&stored).Error

	return ac.respondWithTokens(c, &u, fiber.StatusOK)
}

// POST /auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	authz := c.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	if token == "" {
		token = c.Cookies("access_token")
	}
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no token to revoke")
	}

	bl := authmodel.TokenBlacklist{
		Token:     token,
		ExpiredAt: time.Now().Add(authsvc.AccessTokenTTL),
	}
	if err := ac.DB.WithContext(c.Context()).Create(&bl).Error; err != nil {
		if !strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			log.Println("[ERROR] blacklist insert failed:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "logout failed")
		}
	}
	c.ClearCookie("access_token")

	return helper.Success(c, "Logged out", nil)
}

func (ac *AuthController) respondWithTokens(c *fiber.Ctx, u *usermodel.UserModel, code int) error {
	access, err := authsvc.IssueAccessToken(u)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "issue access token failed")
	}
	refresh, exp, err := authsvc.IssueRefreshToken(u)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "issue refresh token failed")
	}

	if err := ac.DB.WithContext(c.Context()).Create(&authmodel.RefreshToken{
		UserID:    u.ID,
		Token:     refresh,
		ExpiredAt: exp,
	}).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "persist refresh token failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    access,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
		Expires:  time.Now().Add(authsvc.AccessTokenTTL),
	})

	resp := authdto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         toUserResponse(u),
	}
	return helper.SuccessWithCode(c, code, "OK", resp)
}

func toUserResponse(u *usermodel.UserModel) authdto.UserResponse {
	r := authdto.UserResponse{
		ID:       u.ID.String(),
		UserName: u.UserName,
		Email:    u.Email,
		Role:     u.Role,
	}
	if u.WaiverSignedAt != nil {
		s := u.WaiverSignedAt.Format(time.RFC3339)
		r.WaiverSignedAt = &s
	}
	return r
}
