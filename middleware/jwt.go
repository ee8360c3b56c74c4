package middleware

import (
	"fmt"
	"strings"

	"github.com/tgaisser/ocb/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// JWTMiddleware validates the RS256 bearer token issued by the identity
// provider and stores the caller's identity claims on the request context.
func JWTMiddleware(c *fiber.Ctx) error {
	// Get the token from the Authorization header
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Missing or invalid Authorization header",
		})
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid Authorization header format",
		})
	}

	// Extract the token part
	tokenString := authHeader[len("Bearer "):]

	// Parse and validate the token against the cached issuer keys
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		key, ok := GetSigningKey(kid)
		if !ok {
			return nil, fmt.Errorf("unknown signing key: %s", kid)
		}
		return key, nil
	})

	// If there's an error parsing the token
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid or expired token",
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["sub"] == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid token payload",
		})
	}

	if issuer := config.AppConfig.AuthIssuer; issuer != "" {
		if !claims.VerifyIssuer(issuer, true) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  false,
				"message": "Invalid token issuer",
			})
		}
	}

	// Set the caller's identity in the request context
	c.Locals("userId", claims["sub"].(string))
	c.Locals("email", stringClaim(claims, "email"))
	c.Locals("givenName", stringClaim(claims, "given_name"))
	c.Locals("familyName", stringClaim(claims, "family_name"))
	c.Locals("username", stringClaim(claims, "cognito:username"))

	// If valid, continue to the next handler
	return c.Next()
}

func stringClaim(claims jwt.MapClaims, name string) string {
	if v, ok := claims[name].(string); ok {
		return v
	}
	return ""
}
