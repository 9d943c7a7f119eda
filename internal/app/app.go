package app

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/AvalonLA/atelier/config"
	"github.com/AvalonLA/atelier/internal/aiservice"
	"github.com/AvalonLA/atelier/internal/cart"
	"github.com/AvalonLA/atelier/internal/catalog"
	"github.com/AvalonLA/atelier/internal/consultation"
	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/events"
	"github.com/AvalonLA/atelier/internal/inventory"
	"github.com/AvalonLA/atelier/internal/order"
	"github.com/AvalonLA/atelier/internal/storage"
	"github.com/AvalonLA/atelier/pkg/mailer"
	"github.com/AvalonLA/atelier/pkg/metrics"
)

const bulkWorkerPoolSize = 8

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	bus       *events.Bus
	settings  *SettingsManager
	carts     *cart.Store
	files     *storage.FileStore
	pool      *ants.Pool
	catalog   *catalog.Provider
	inventory *inventory.Service
	orders    *order.Service
	consults  *consultation.Service
	mailer    *mailer.Mailer
	assistant *aiservice.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider       = (*Application)(nil)
	_ ConfigProvider   = (*Application)(nil)
	_ SettingsProvider = (*Application)(nil)
	_ BusProvider      = (*Application)(nil)
	_ AppContext       = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	if err = metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.bus = events.NewBus()
	a.settings = NewSettingsManager(a.gormDB, a.bus)
	a.mailer = mailer.NewMailer(cfg.Mail)
	a.assistant = aiservice.NewService(cfg.AI, a.settings)
	a.catalog = catalog.NewProvider(a.gormDB, a.settings)

	a.carts, err = cart.OpenStore(cfg.System.Workdir)
	if err != nil {
		zap.S().Panicf("cart store open error: %s", err.Error())
	}

	a.files, err = storage.NewFileStore(
		filepath.Join(cfg.System.Workdir, "uploads"), cfg.Web.BaseURL)
	if err != nil {
		zap.S().Panicf("file store open error: %s", err.Error())
	}

	a.pool, err = ants.NewPool(bulkWorkerPoolSize)
	if err != nil {
		zap.S().Panicf("worker pool error: %s", err.Error())
	}

	a.inventory = inventory.NewService(a.gormDB, a.files, a.bus, a.pool)
	a.orders = order.NewService(a.gormDB, a.bus, a.mailer)
	a.consults = consultation.NewService(a.gormDB, a.bus)

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkSuper()
		if err := a.settings.Load(); err != nil {
			zap.L().Error("failed to load site config", zap.Error(err))
		}
		a.seedCatalog()
	}()

	a.initJob()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Settings returns the site configuration manager
func (a *Application) Settings() *SettingsManager {
	return a.settings
}

// Bus returns the change notification bus
func (a *Application) Bus() *events.Bus {
	return a.bus
}

// Carts returns the cart persistence store
func (a *Application) Carts() *cart.Store {
	return a.carts
}

// Files returns the upload file store
func (a *Application) Files() *storage.FileStore {
	return a.files
}

// Catalog returns the product read provider
func (a *Application) Catalog() *catalog.Provider {
	return a.catalog
}

// Inventory returns the product write service
func (a *Application) Inventory() *inventory.Service {
	return a.inventory
}

// Orders returns the order service
func (a *Application) Orders() *order.Service {
	return a.orders
}

// Consultations returns the consultation service
func (a *Application) Consultations() *consultation.Service {
	return a.consults
}

// Assistant returns the lighting assistant service
func (a *Application) Assistant() *aiservice.Service {
	return a.assistant
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.pool != nil {
		a.pool.Release()
	}
	if a.carts != nil {
		_ = a.carts.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
