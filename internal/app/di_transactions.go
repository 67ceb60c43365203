package app

import (
	"fmt"

	"github.com/allisson/vouch/internal/blob"
	"github.com/allisson/vouch/internal/signature"
	transactionsHTTP "github.com/allisson/vouch/internal/transactions/http"
	transactionsRepository "github.com/allisson/vouch/internal/transactions/repository"
	transactionsUseCase "github.com/allisson/vouch/internal/transactions/usecase"
)

// TransactionRepository returns the transaction repository based on database driver.
func (c *Container) TransactionRepository() (transactionsUseCase.TransactionRepository, error) {
	var err error
	c.transactionRepositoryInit.Do(func() {
		c.transactionRepository, err = c.initTransactionRepository()
		if err != nil {
			c.initErrors["transactionRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["transactionRepository"]; exists {
		return nil, storedErr
	}
	return c.transactionRepository, nil
}

// VideoStore returns the blob store holding video statements.
func (c *Container) VideoStore() (*blob.Store, error) {
	var err error
	c.videoStoreInit.Do(func() {
		c.videoStore, err = c.initVideoStore()
		if err != nil {
			c.initErrors["videoStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["videoStore"]; exists {
		return nil, storedErr
	}
	return c.videoStore, nil
}

// TransactionUseCase returns the transaction ledger use case.
func (c *Container) TransactionUseCase() (transactionsUseCase.TransactionUseCase, error) {
	var err error
	c.transactionUseCaseInit.Do(func() {
		c.transactionUseCase, err = c.initTransactionUseCase()
		if err != nil {
			c.initErrors["transactionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["transactionUseCase"]; exists {
		return nil, storedErr
	}
	return c.transactionUseCase, nil
}

// TransactionHandler returns the HTTP handler for transaction operations.
func (c *Container) TransactionHandler() (*transactionsHTTP.TransactionHandler, error) {
	var err error
	c.transactionHandlerInit.Do(func() {
		c.transactionHandler, err = c.initTransactionHandler()
		if err != nil {
			c.initErrors["transactionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["transactionHandler"]; exists {
		return nil, storedErr
	}
	return c.transactionHandler, nil
}

// initTransactionRepository creates the transaction repository based on the database driver.
func (c *Container) initTransactionRepository() (transactionsUseCase.TransactionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for transaction repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return transactionsRepository.NewPostgreSQLTransactionRepository(db), nil
	case "mysql":
		return transactionsRepository.NewMySQLTransactionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initVideoStore opens the configured bucket and optional sealing keeper.
func (c *Container) initVideoStore() (*blob.Store, error) {
	store, err := blob.Open(c.ctx, c.config.BlobBucketURL, c.config.BlobKeeperURL, c.config.MaxVideoSizeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open video store: %w", err)
	}
	return store, nil
}

// initTransactionUseCase creates the transaction use case with all its dependencies.
func (c *Container) initTransactionUseCase() (transactionsUseCase.TransactionUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for transaction use case: %w", err)
	}

	transactionRepository, err := c.TransactionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction repository for transaction use case: %w", err)
	}

	keyPairRepository, err := c.KeyPairRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key pair repository for transaction use case: %w", err)
	}

	videoStore, err := c.VideoStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get video store for transaction use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for transaction use case: %w", err)
	}

	baseUseCase := transactionsUseCase.NewTransactionUseCase(
		txManager,
		transactionRepository,
		keyPairRepository,
		videoStore,
		signature.NewRSAPSSVerifier(),
		outboxRepo,
		c.AuditRecorder(),
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for transaction use case: %w", err)
		}
		return transactionsUseCase.NewTransactionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTransactionHandler creates the transaction HTTP handler.
func (c *Container) initTransactionHandler() (*transactionsHTTP.TransactionHandler, error) {
	transactionUseCase, err := c.TransactionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction use case for transaction handler: %w", err)
	}

	return transactionsHTTP.NewTransactionHandler(transactionUseCase, c.config.MaxVideoSizeBytes, c.Logger()), nil
}
