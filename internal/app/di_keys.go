package app

import (
	"fmt"

	keysDomain "github.com/allisson/vouch/internal/keys/domain"
	keysHTTP "github.com/allisson/vouch/internal/keys/http"
	keysRepository "github.com/allisson/vouch/internal/keys/repository"
	keysService "github.com/allisson/vouch/internal/keys/service"
	keysUseCase "github.com/allisson/vouch/internal/keys/usecase"
)

// KeyPairRepository returns the key pair repository based on database driver.
func (c *Container) KeyPairRepository() (keysUseCase.KeyPairRepository, error) {
	var err error
	c.keyPairRepositoryInit.Do(func() {
		c.keyPairRepository, err = c.initKeyPairRepository()
		if err != nil {
			c.initErrors["keyPairRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyPairRepository"]; exists {
		return nil, storedErr
	}
	return c.keyPairRepository, nil
}

// KeyPairUseCase returns the key pair use case.
func (c *Container) KeyPairUseCase() (keysUseCase.KeyPairUseCase, error) {
	var err error
	c.keyPairUseCaseInit.Do(func() {
		c.keyPairUseCase, err = c.initKeyPairUseCase()
		if err != nil {
			c.initErrors["keyPairUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyPairUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyPairUseCase, nil
}

// KeyPairHandler returns the HTTP handler for key pair operations.
func (c *Container) KeyPairHandler() (*keysHTTP.KeyPairHandler, error) {
	var err error
	c.keyPairHandlerInit.Do(func() {
		c.keyPairHandler, err = c.initKeyPairHandler()
		if err != nil {
			c.initErrors["keyPairHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyPairHandler"]; exists {
		return nil, storedErr
	}
	return c.keyPairHandler, nil
}

// initKeyPairRepository creates the key pair repository based on the database driver.
func (c *Container) initKeyPairRepository() (keysUseCase.KeyPairRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key pair repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return keysRepository.NewPostgreSQLKeyPairRepository(db), nil
	case "mysql":
		return keysRepository.NewMySQLKeyPairRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyPairUseCase creates the key pair use case with all its dependencies.
func (c *Container) initKeyPairUseCase() (keysUseCase.KeyPairUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key pair use case: %w", err)
	}

	keyPairRepository, err := c.KeyPairRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key pair repository for key pair use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for key pair use case: %w", err)
	}

	baseUseCase := keysUseCase.NewKeyPairUseCase(
		txManager,
		keyPairRepository,
		keysService.NewRSAKeyGenerator(keysDomain.RSAKeyBits),
		outboxRepo,
		c.AuditRecorder(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key pair use case: %w", err)
		}
		return keysUseCase.NewKeyPairUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initKeyPairHandler creates the key pair HTTP handler.
func (c *Container) initKeyPairHandler() (*keysHTTP.KeyPairHandler, error) {
	keyPairUseCase, err := c.KeyPairUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key pair use case for key pair handler: %w", err)
	}

	return keysHTTP.NewKeyPairHandler(keyPairUseCase, c.Logger()), nil
}
