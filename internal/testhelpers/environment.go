package testhelpers

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"sync"

	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/recipe-management/backend/config"
	"github.com/pageza/recipe-management/backend/internal/database"
	"github.com/pageza/recipe-management/backend/internal/logger"
)

// terminable is the part of testcontainers.Container that teardown needs.
type terminable interface {
	Terminate(ctx context.Context, opts ...testcontainers.TerminateOption) error
}

// Environment is a disposable database and broker pair owned by one test
// run. It is handed to tests explicitly; nothing about it is global.
type Environment struct {
	Name   config.Environment
	Engine DatabaseEngine

	// DB is connected to the provisioned database with the schema applied.
	DB               *gorm.DB
	ConnectionString string

	// Broker is the zero value when the environment was provisioned
	// without one.
	Broker BrokerInfo

	mu              sync.Mutex
	dbContainer     terminable
	brokerContainer terminable
	log             *zap.Logger
}

type options struct {
	name       config.Environment
	engine     *DatabaseEngine
	withBroker bool
}

// Option customises Provision.
type Option func(*options)

// WithEnvironmentName sets the environment name exported to the service.
func WithEnvironmentName(name config.Environment) Option {
	return func(o *options) { o.name = name }
}

// WithDatabaseEngine overrides the engine SelectDatabaseEngine would pick.
func WithDatabaseEngine(engine DatabaseEngine) Option {
	return func(o *options) { o.engine = &engine }
}

// WithoutBroker provisions only the database.
func WithoutBroker() Option {
	return func(o *options) { o.withBroker = false }
}

// Provision starts the database and the broker concurrently, applies the
// schema migration and returns once both are ready. On failure everything
// that did start is torn down before the error is returned.
func Provision(ctx context.Context, opts ...Option) (*Environment, error) {
	o := options{name: config.IntegrationTesting, withBroker: true}
	for _, opt := range opts {
		opt(&o)
	}

	engine := SelectDatabaseEngine(runtime.GOOS, runtime.GOARCH)
	if o.engine != nil {
		engine = *o.engine
	}

	env := &Environment{
		Name:   o.name,
		Engine: engine,
		log:    logger.WithModule("testenv"),
	}
	env.log.Info("provisioning test environment",
		zap.String("environment", string(env.Name)),
		zap.String("engine", engine.Name),
		zap.Bool("broker", o.withBroker),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return env.startDatabase(gctx) })
	if o.withBroker {
		g.Go(func() error { return env.startBroker(gctx) })
	}

	if err := g.Wait(); err != nil {
		_ = env.Teardown(context.WithoutCancel(ctx))
		return nil, err
	}
	return env, nil
}

func (e *Environment) startDatabase(ctx context.Context) error {
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: e.Engine.request(),
		Started:          true,
	})
	e.setContainer(&e.dbContainer, ctr)
	if err != nil {
		return fmt.Errorf("start %s container: %w", e.Engine.Name, err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		return fmt.Errorf("database host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, dbPort)
	if err != nil {
		return fmt.Errorf("database port: %w", err)
	}
	dsn := e.Engine.DSN(host, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	e.mu.Lock()
	e.DB = db
	e.ConnectionString = dsn
	e.mu.Unlock()

	migrator, err := database.NewMigrator(db)
	if err != nil {
		return err
	}
	if err := migrator.Apply(ctx); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (e *Environment) startBroker(ctx context.Context) error {
	hostPort, err := FreePort()
	if err != nil {
		return err
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: brokerRequest(hostPort),
		Started:          true,
	})
	e.setContainer(&e.brokerContainer, ctr)
	if err != nil {
		return fmt.Errorf("start broker container: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		return fmt.Errorf("broker host: %w", err)
	}
	mgmt, err := ctr.MappedPort(ctx, managementPort)
	if err != nil {
		return fmt.Errorf("broker management port: %w", err)
	}
	managementURL := fmt.Sprintf("http://%s:%s", host, mgmt.Port())

	if err := waitForBroker(ctx, managementURL); err != nil {
		return err
	}

	e.mu.Lock()
	e.Broker = BrokerInfo{
		Host:          "localhost",
		Port:          hostPort,
		VirtualHost:   brokerVirtualHost,
		Username:      brokerUsername,
		Password:      brokerPassword,
		ManagementURL: managementURL,
	}
	e.mu.Unlock()
	return nil
}

func (e *Environment) setContainer(slot *terminable, ctr testcontainers.Container) {
	if isNil(ctr) {
		return
	}
	e.mu.Lock()
	*slot = ctr
	e.mu.Unlock()
}

// HasBroker reports whether a broker was provisioned.
func (e *Environment) HasBroker() bool {
	return e != nil && e.Broker.Port != 0
}

// Settings returns the configuration keys the service reads at startup.
func (e *Environment) Settings() map[string]string {
	settings := map[string]string{
		config.KeyEnvironment:      string(e.Name),
		config.KeyConnectionString: e.ConnectionString,
		"DB_DRIVER":                "postgres",
	}
	if e.HasBroker() {
		settings[config.KeyRabbitHost] = e.Broker.Host
		settings[config.KeyRabbitVirtualHost] = e.Broker.VirtualHost
		settings[config.KeyRabbitUsername] = e.Broker.Username
		settings[config.KeyRabbitPassword] = e.Broker.Password
		settings[config.KeyRabbitPort] = strconv.Itoa(e.Broker.Port)
	}
	return settings
}

// ExportTo writes Settings through setenv. Tests pass t.Setenv so values are
// restored when the test ends.
func (e *Environment) ExportTo(setenv func(key, value string)) {
	for k, v := range e.Settings() {
		setenv(k, v)
	}
}

// Export writes Settings into the process environment.
func (e *Environment) Export() error {
	for k, v := range e.Settings() {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("export %s: %w", k, err)
		}
	}
	return nil
}

// Teardown releases every resource that was started. Failures are logged and
// swallowed so one resource can never keep another alive. It is safe to call
// on a nil or partially provisioned Environment, and more than once.
func (e *Environment) Teardown(ctx context.Context) error {
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.log
	if log == nil {
		log = logger.WithModule("testenv")
	}

	if e.DB != nil {
		if sqlDB, err := e.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("failed to close database connection", zap.Error(err))
			}
		}
		e.DB = nil
	}

	resources := []struct {
		name string
		slot *terminable
	}{
		{name: "broker", slot: &e.brokerContainer},
		{name: "database", slot: &e.dbContainer},
	}
	for _, r := range resources {
		if isNil(*r.slot) {
			continue
		}
		if err := (*r.slot).Terminate(ctx); err != nil {
			log.Warn("failed to terminate container", zap.String("resource", r.name), zap.Error(err))
		}
		*r.slot = nil
	}

	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
