package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matthewhartstonge/argon2"

	"resto-pos/config"
	"resto-pos/models"
	"resto-pos/utils"
)

type AuthController struct {
	// staff maps email to argon2-encoded password hash.
	staff map[string]string
}

// NewAuthController builds the staff account set from config. A single
// account is enough for a fixture backend.
func NewAuthController() *AuthController {
	hash, err := hashPassword(config.AppConfig.StaffPassword)
	if err != nil {
		hash = ""
	}
	return &AuthController{
		staff: map[string]string{
			config.AppConfig.StaffEmail: hash,
		},
	}
}

func hashPassword(password string) (string, error) {
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	return string(encoded), err
}

func verifyPassword(hash, password string) bool {
	ok, _ := argon2.VerifyEncoded([]byte(password), []byte(hash))
	return ok
}

func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request"})
		return
	}

	hash, ok := ctrl.staff[req.Email]
	if !ok || hash == "" || !verifyPassword(hash, req.Password) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Invalid email or password"})
		return
	}

	token, err := utils.GenerateToken(req.Email, "staff")
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data: models.LoginData{
			Token: token,
			Email: req.Email,
			Role:  "staff",
		},
	})
}
