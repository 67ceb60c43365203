package app

import (
	"fmt"

	auditHTTP "github.com/allisson/vouch/internal/audit/http"
	auditService "github.com/allisson/vouch/internal/audit/service"
	auditUseCase "github.com/allisson/vouch/internal/audit/usecase"
)

// AuditRecorder returns the recorder appending chained lines to the live audit log.
func (c *Container) AuditRecorder() *auditService.Recorder {
	c.auditRecorderInit.Do(func() {
		c.auditWriter = auditService.NewChainWriter(c.config.AuditLogDir, c.config.AuditLogFile)
		c.auditRecorder = auditService.NewRecorder(c.auditWriter, c.Logger())
	})
	return c.auditRecorder
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// AuditLogHandler returns the HTTP handler for audit log operations.
func (c *Container) AuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	var err error
	c.auditLogHandlerInit.Do(func() {
		c.auditLogHandler, err = c.initAuditLogHandler()
		if err != nil {
			c.initErrors["auditLogHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogHandler"]; exists {
		return nil, storedErr
	}
	return c.auditLogHandler, nil
}

// initAuditLogUseCase creates the audit log use case over the audit directory.
func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	baseUseCase := auditUseCase.NewAuditLogUseCase(auditService.NewLogStore(c.config.AuditLogDir), c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
		}
		return auditUseCase.NewAuditLogUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuditLogHandler creates the audit log HTTP handler.
func (c *Container) initAuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
	}

	return auditHTTP.NewAuditLogHandler(auditLogUseCase, c.Logger()), nil
}
