package app

import (
	"encoding/hex"
	"fmt"

	twofactorHTTP "github.com/allisson/stepup/internal/twofactor/http"
	twofactorRepository "github.com/allisson/stepup/internal/twofactor/repository"
	twofactorService "github.com/allisson/stepup/internal/twofactor/service"
	twofactorUseCase "github.com/allisson/stepup/internal/twofactor/usecase"
)

// SessionRegistry returns the per-session verification ledger registry.
func (c *Container) SessionRegistry() *twofactorUseCase.SessionRegistry {
	c.sessionRegistryInit.Do(func() {
		c.sessionRegistry = twofactorUseCase.NewSessionRegistry(c.config.SessionIdleTimeout)
	})
	return c.sessionRegistry
}

// StatusProvider returns the client for the external two-factor status endpoint.
func (c *Container) StatusProvider() twofactorService.StatusProvider {
	c.statusProviderInit.Do(func() {
		c.statusProvider = twofactorService.NewHTTPStatusProvider(
			c.config.TwoFactorAPIBaseURL,
			c.config.TwoFactorAPIKey,
			c.config.TwoFactorAPITimeout,
		)
	})
	return c.statusProvider
}

// EventSigner returns the verification event signer.
func (c *Container) EventSigner() (twofactorService.EventSigner, error) {
	var err error
	c.eventSignerInit.Do(func() {
		c.eventSigner, err = c.initEventSigner()
		if err != nil {
			c.initErrors["eventSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventSigner"]; exists {
		return nil, storedErr
	}
	return c.eventSigner, nil
}

// VerificationEventRepository returns the verification event repository based on database driver.
func (c *Container) VerificationEventRepository() (twofactorUseCase.VerificationEventRepository, error) {
	var err error
	c.verificationEventRepoInit.Do(func() {
		c.verificationEventRepo, err = c.initVerificationEventRepository()
		if err != nil {
			c.initErrors["verificationEventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["verificationEventRepo"]; exists {
		return nil, storedErr
	}
	return c.verificationEventRepo, nil
}

// EnforcementUseCase returns the enforcement use case.
func (c *Container) EnforcementUseCase() (twofactorUseCase.EnforcementUseCase, error) {
	var err error
	c.enforcementUseCaseInit.Do(func() {
		c.enforcementUseCase, err = c.initEnforcementUseCase()
		if err != nil {
			c.initErrors["enforcementUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["enforcementUseCase"]; exists {
		return nil, storedErr
	}
	return c.enforcementUseCase, nil
}

// VerificationEventUseCase returns the verification event use case.
func (c *Container) VerificationEventUseCase() (twofactorUseCase.VerificationEventUseCase, error) {
	var err error
	c.verificationEventUseCaseInit.Do(func() {
		c.verificationEventUseCase, err = c.initVerificationEventUseCase()
		if err != nil {
			c.initErrors["verificationEventUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["verificationEventUseCase"]; exists {
		return nil, storedErr
	}
	return c.verificationEventUseCase, nil
}

// EnforcementHandler returns the HTTP handler for enforcement operations.
func (c *Container) EnforcementHandler() (*twofactorHTTP.EnforcementHandler, error) {
	var err error
	c.enforcementHandlerInit.Do(func() {
		c.enforcementHandler, err = c.initEnforcementHandler()
		if err != nil {
			c.initErrors["enforcementHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["enforcementHandler"]; exists {
		return nil, storedErr
	}
	return c.enforcementHandler, nil
}

// VerificationEventHandler returns the HTTP handler for journal listing.
func (c *Container) VerificationEventHandler() (*twofactorHTTP.VerificationEventHandler, error) {
	var err error
	c.verificationEventHandlerInit.Do(func() {
		c.verificationEventHandler, err = c.initVerificationEventHandler()
		if err != nil {
			c.initErrors["verificationEventHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["verificationEventHandler"]; exists {
		return nil, storedErr
	}
	return c.verificationEventHandler, nil
}

// initEventSigner decodes the configured signing key and creates the signer.
func (c *Container) initEventSigner() (twofactorService.EventSigner, error) {
	if c.config.EventSigningKey == "" {
		return nil, fmt.Errorf("EVENT_SIGNING_KEY is required")
	}

	rootKey, err := hex.DecodeString(c.config.EventSigningKey)
	if err != nil {
		return nil, fmt.Errorf("EVENT_SIGNING_KEY must be hex-encoded: %w", err)
	}

	signer, err := twofactorService.NewEventSigner(rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create event signer: %w", err)
	}

	return signer, nil
}

// initVerificationEventRepository creates the repository based on the database driver.
func (c *Container) initVerificationEventRepository() (twofactorUseCase.VerificationEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for verification event repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return twofactorRepository.NewMySQLVerificationEventRepository(db), nil
	case "postgres":
		return twofactorRepository.NewPostgreSQLVerificationEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEnforcementUseCase creates the enforcement use case with all its dependencies.
func (c *Container) initEnforcementUseCase() (twofactorUseCase.EnforcementUseCase, error) {
	eventRepo, err := c.VerificationEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get verification event repository for enforcement use case: %w", err)
	}

	eventSigner, err := c.EventSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get event signer for enforcement use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for enforcement use case: %w", err)
	}

	useCase := twofactorUseCase.NewEnforcementUseCase(
		c.SessionRegistry(),
		c.StatusProvider(),
		eventRepo,
		eventSigner,
		c.config.GracePeriod,
		c.Logger(),
	)

	return twofactorUseCase.NewEnforcementUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initVerificationEventUseCase creates the verification event use case with all its dependencies.
func (c *Container) initVerificationEventUseCase() (twofactorUseCase.VerificationEventUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for verification event use case: %w", err)
	}

	eventRepo, err := c.VerificationEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get verification event repository for verification event use case: %w", err)
	}

	eventSigner, err := c.EventSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get event signer for verification event use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for verification event use case: %w", err)
	}

	useCase := twofactorUseCase.NewVerificationEventUseCase(txManager, eventRepo, eventSigner)

	return twofactorUseCase.NewVerificationEventUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initEnforcementHandler creates the enforcement HTTP handler.
func (c *Container) initEnforcementHandler() (*twofactorHTTP.EnforcementHandler, error) {
	enforcementUseCase, err := c.EnforcementUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get enforcement use case for enforcement handler: %w", err)
	}

	return twofactorHTTP.NewEnforcementHandler(enforcementUseCase, c.Logger()), nil
}

// initVerificationEventHandler creates the journal listing HTTP handler.
func (c *Container) initVerificationEventHandler() (*twofactorHTTP.VerificationEventHandler, error) {
	verificationEventUseCase, err := c.VerificationEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get verification event use case for verification event handler: %w", err)
	}

	return twofactorHTTP.NewVerificationEventHandler(verificationEventUseCase, c.Logger()), nil
}
