package app

import (
	"github.com/moveplan/moveplan/internal/config"
	"github.com/moveplan/moveplan/internal/event_bus"
	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/backup"
	"github.com/moveplan/moveplan/pkg/budget"
	"github.com/moveplan/moveplan/pkg/calendar"
	"github.com/moveplan/moveplan/pkg/gallery"
	"github.com/moveplan/moveplan/pkg/navigation"
	"github.com/moveplan/moveplan/pkg/notes"
	"github.com/moveplan/moveplan/pkg/notification"
	"github.com/moveplan/moveplan/pkg/page"
	"github.com/moveplan/moveplan/pkg/planning"
	"github.com/moveplan/moveplan/pkg/remote"
	"github.com/moveplan/moveplan/pkg/settings"
	"github.com/moveplan/moveplan/pkg/sharing"
	"github.com/moveplan/moveplan/pkg/storage"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Notifier            *notification.Notifier
	NotificationHandler *notification.Handler

	StorageService *storage.ServiceImpl
	StorageHandler *storage.Handler

	SharingService *sharing.ServiceImpl
	SharingHandler *sharing.Handler

	NavigationService *navigation.Service
	NavigationHandler *navigation.Handler

	BudgetService     *budget.ServiceImpl
	CsvReportRenderer *budget.CsvReportRendererImpl
	BudgetHandler     *budget.BudgetHandler

	NotesService *notes.ServiceImpl
	NotesHandler *notes.NotesHandler

	PlanningService *planning.ServiceImpl
	PlanningHandler *planning.PlanningHandler

	CalendarService *calendar.Service
	CalendarHandler *calendar.Handler

	GalleryService *gallery.Service
	GalleryHandler *gallery.Handler

	SettingsService *settings.ServiceImpl
	SettingsHandler *settings.SettingsHandler

	BackupService *backup.Service
	BackupHandler *backup.Handler

	RemoteDatabase *remote.Database
	RemoteHandler  *remote.Handler
}

// BuildDependencies initializes and wires all application services and handlers
// on top of the given key/value repository.
func BuildDependencies(repo storage.Repository, cfg config.Application, clock utils.Clock) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = clock
	deps.EventBus = event_bus.NewEventBus()

	deps.Notifier = notification.NewNotifier(deps.Clock, notification.DefaultTTL)
	deps.Notifier.Subscribe(deps.EventBus)
	deps.NotificationHandler = notification.NewHandler(deps.Notifier)

	deps.StorageService = storage.NewService(repo, deps.EventBus, deps.Clock, storage.Config{
		Prefix:      cfg.Storage.Prefix,
		Retention:   retention(cfg.Storage.RetentionDays),
		DefaultPage: page.OrDefault(cfg.Page.Default),
	})
	deps.StorageHandler = storage.NewHandler(deps.StorageService)

	deps.SharingService = sharing.NewService(deps.StorageService, deps.Notifier)
	deps.SharingHandler = sharing.NewHandler(deps.SharingService)

	deps.NavigationService = navigation.NewService(deps.StorageService, deps.Clock)
	deps.NavigationHandler = navigation.NewHandler(deps.NavigationService)

	deps.BudgetService = budget.NewServiceImpl(deps.StorageService, deps.SharingService, deps.Clock)
	deps.NotesService = notes.NewServiceImpl(deps.StorageService, deps.SharingService, deps.Clock)
	deps.PlanningService = planning.NewServiceImpl(deps.StorageService, deps.SharingService, deps.Notifier, deps.Clock)
	deps.CalendarService = calendar.NewService(deps.StorageService, deps.Clock)
	deps.GalleryService = gallery.NewService(deps.StorageService, deps.Clock)

	deps.SettingsService = settings.NewServiceImpl(deps.StorageService, deps.Notifier,
		deps.BudgetService,
		deps.NotesService,
		deps.PlanningService,
		deps.CalendarService,
		deps.GalleryService,
	)
	deps.SettingsHandler = settings.NewSettingsHandler(deps.SettingsService)

	deps.CsvReportRenderer = budget.NewCsvReportRenderer()
	deps.BudgetHandler = budget.NewBudgetHandler(deps.BudgetService, deps.CsvReportRenderer, deps.SettingsService.Currency)
	deps.NotesHandler = notes.NewNotesHandler(deps.NotesService)
	deps.PlanningHandler = planning.NewPlanningHandler(deps.PlanningService)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)
	deps.GalleryHandler = gallery.NewHandler(deps.GalleryService)

	deps.BackupService = backup.NewService(deps.StorageService, backup.Sources{
		Settings: deps.SettingsService,
		Budget:   deps.BudgetService,
		Notes:    deps.NotesService,
		Planning: deps.PlanningService,
		Events:   deps.CalendarService,
		Photos:   deps.GalleryService,
	}, deps.Notifier, deps.Clock)
	deps.BackupHandler = backup.NewHandler(deps.BackupService)

	if cfg.Remote.Enabled {
		log.Warnf("remote database %q requested but no client is available, documents stay local", cfg.Remote.Project)
	}
	deps.RemoteDatabase = remote.NewDatabase(remote.Unconfigured{}, deps.StorageService, deps.Clock)
	deps.RemoteHandler = remote.NewHandler(deps.RemoteDatabase)

	return deps
}
