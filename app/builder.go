package app

import (
	"fmt"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/database"
	"github.com/campuskit/tokenauth/handlers"
	"github.com/campuskit/tokenauth/server"
	"github.com/campuskit/tokenauth/services/auth"
	"github.com/campuskit/tokenauth/services/blacklist"
	"github.com/campuskit/tokenauth/services/directory"
	"github.com/campuskit/tokenauth/services/logging"
	"github.com/campuskit/tokenauth/services/refreshtoken"
	"github.com/campuskit/tokenauth/services/token"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Builder struct {
	config    *config.Config
	models    []any
	fxOptions []fx.Option
	errors    []error
}

func NewApp() *Builder {
	return &Builder{
		models:    make([]any, 0),
		fxOptions: make([]fx.Option, 0),
		errors:    make([]error, 0),
	}
}

func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *Builder) WithAutoConfig() *Builder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

// WithModels registers additional models for auto-migration on top of
// the refresh-token schema the service always carries.
func (b *Builder) WithModels(models ...any) *Builder {
	b.models = append(b.models, models...)
	return b
}

func (b *Builder) WithFxOptions(opts ...fx.Option) *Builder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *Builder) Build() (*App, error) {
	if b.config == nil {
		b.WithAutoConfig()
	}

	if len(b.errors) > 0 {
		return nil, fmt.Errorf("configuration errors: %v", b.errors)
	}

	app := &App{config: b.config}

	models := append([]any{&refreshtoken.RefreshToken{}}, b.models...)

	options := []fx.Option{
		fx.NopLogger,
		config.NewProvider(b.config),
		fx.Supply(database.WithModels(models...)),
		logging.Module,
		database.Module,
		server.Module,
		directory.Module,
		token.Options,
		refreshtoken.Options,
		blacklist.Module,
		auth.Options,
		handlers.Module,
	}

	options = append(options, b.fxOptions...)

	options = append(options, fx.Invoke(func(srv *server.Server, db *gorm.DB, logger *logging.Service) {
		app.server = srv
		app.db = db
		app.logger = logger
	}))

	app.fx = fx.New(options...)
	return app, nil
}

func (b *Builder) addError(msg string) {
	b.errors = append(b.errors, fmt.Errorf("%s", msg))
}
