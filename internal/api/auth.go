package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const authTokenTTL = 24 * time.Hour

type loginInput struct {
	Passphrase string `json:"passphrase"`
}

type authClaims struct {
	jwt.RegisteredClaims
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Login exchanges the single-user passphrase for a bearer token.
func (handler *Handler) Login(c *fiber.Ctx) error {
	if handler.passphraseHash == "" {
		return jsonError(c, fiber.StatusBadRequest, "authentication is disabled")
	}

	input := loginInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(handler.passphraseHash), []byte(input.Passphrase)); err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "invalid passphrase")
	}

	token, err := handler.buildToken()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "token generation failed")
	}
	return c.JSON(fiber.Map{"token": token})
}

func (handler *Handler) buildToken() (string, error) {
	now := time.Now()
	claims := authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner",
			ExpiresAt: jwt.NewNumericDate(now.Add(authTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

// AuthRequired validates the bearer token. With no passphrase configured
// the API runs open (local single-user mode).
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	if handler.passphraseHash == "" {
		return c.Next()
	}

	header := c.Get(fiber.HeaderAuthorization)
	rawToken, found := strings.CutPrefix(header, "Bearer ")
	if !found || rawToken == "" {
		return jsonError(c, fiber.StatusUnauthorized, "missing bearer token")
	}

	claims := authClaims{}
	parsed, err := jwt.ParseWithClaims(rawToken, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !parsed.Valid {
		return jsonError(c, fiber.StatusUnauthorized, "invalid token")
	}

	return c.Next()
}

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
