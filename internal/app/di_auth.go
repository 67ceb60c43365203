package app

import (
	"errors"

	authService "github.com/allisson/vouch/internal/auth/service"
)

// IdentityParser returns the bearer token parser shared with the gateway.
func (c *Container) IdentityParser() (authService.IdentityParser, error) {
	var err error
	c.identityParserInit.Do(func() {
		c.identityParser, err = c.initIdentityParser()
		if err != nil {
			c.initErrors["identityParser"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityParser"]; exists {
		return nil, storedErr
	}
	return c.identityParser, nil
}

// initIdentityParser creates the HS256 token parser. An empty secret would accept
// tokens signed with an empty key, so it is a configuration error.
func (c *Container) initIdentityParser() (authService.IdentityParser, error) {
	if c.config.AuthJWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}
	return authService.NewJWTIdentityParser(c.config.AuthJWTSecret, c.config.AuthJWTIssuer), nil
}
