package authcore

import (
	"errors"
	"time"

	"github.com/tendera/authcore/password"
	"github.com/tendera/authcore/permission"
	"github.com/tendera/authcore/token"
)

// Builder assembles an Engine. Construct with New, chain the With*
// methods, then call Build exactly once.
type Builder struct {
	config   Config
	store    UserStore
	notifier Notifier
	logger   Logger
	roles    *permission.RoleManager
	clock    func() time.Time

	built bool
}

// New returns a Builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithTokenSecret sets the session token signing secret.
func (b *Builder) WithTokenSecret(secret []byte) *Builder {
	b.config.Token.Secret = secret
	return b
}

// WithUserStore wires the persistence backend. Required.
func (b *Builder) WithUserStore(s UserStore) *Builder {
	b.store = s
	return b
}

// WithNotifier wires the OTP delivery backend. When absent, every
// OTP-enabled login fails with ErrDeliveryFailed.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithLogger injects the logging dependency. Defaults to NopLogger.
func (b *Builder) WithLogger(l Logger) *Builder {
	b.logger = l
	return b
}

// WithRoles replaces the default role-to-permission mapping.
func (b *Builder) WithRoles(rm *permission.RoleManager) *Builder {
	b.roles = rm
	return b
}

// WithClock overrides the engine's time source. Intended for tests that
// need to cross OTP and reset-token expiries deterministically.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, errors.New("user store is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	hasher, err := password.New(password.Params{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(token.Config{
		Secret:   b.config.Token.Secret,
		TTL:      b.config.Token.TTL,
		Issuer:   b.config.Token.Issuer,
		TimeFunc: b.clock,
	})
	if err != nil {
		return nil, err
	}

	roles := b.roles
	if roles == nil {
		roles = permission.DefaultRoles()
	}
	logger := b.logger
	if logger == nil {
		logger = NopLogger()
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	b.built = true
	return &Engine{
		config:   b.config,
		store:    b.store,
		notifier: b.notifier,
		log:      logger,
		hasher:   hasher,
		tokens:   tokens,
		roles:    roles,
		now:      clock,
	}, nil
}
