package app

import (
	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/pkg/calculator"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Storage
	r.HandleFunc("/api/storage/keys", deps.StorageHandler.ListKeys).Methods("GET")
	r.HandleFunc("/api/storage/cleanup", deps.StorageHandler.Cleanup).Methods("POST")
	r.HandleFunc("/api/storage/{key}", deps.StorageHandler.Get).Methods("GET")
	r.HandleFunc("/api/storage/{key}", deps.StorageHandler.Put).Methods("PUT")
	r.HandleFunc("/api/storage/{key}", deps.StorageHandler.Delete).Methods("DELETE")

	// Notifications
	r.HandleFunc("/api/notifications", deps.NotificationHandler.List).Methods("GET")
	r.HandleFunc("/api/notifications/{id}", deps.NotificationHandler.Dismiss).Methods("DELETE")

	// Sharing
	r.HandleFunc("/api/shared/check", deps.SharingHandler.Check).Methods("GET")
	r.HandleFunc("/api/shared/{key}", deps.SharingHandler.Share).Methods("POST")
	r.HandleFunc("/api/shared/{key}", deps.SharingHandler.Get).Methods("GET")
	r.HandleFunc("/api/shared/{key}", deps.SharingHandler.Clear).Methods("DELETE")

	// Navigation
	r.HandleFunc("/api/navigation", deps.NavigationHandler.Get).Methods("GET")
	r.HandleFunc("/api/navigation", deps.NavigationHandler.Visit).Methods("POST")

	// Budget
	r.HandleFunc("/api/budget/products", deps.BudgetHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/budget/products", deps.BudgetHandler.Register).Methods("POST")
	r.HandleFunc("/api/budget/products/{id}", deps.BudgetHandler.Get).Methods("GET")
	r.HandleFunc("/api/budget/products/{id}", deps.BudgetHandler.Update).Methods("PATCH")
	r.HandleFunc("/api/budget/products/{id}", deps.BudgetHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/budget/summary", deps.BudgetHandler.GetSummary).Methods("GET")
	r.HandleFunc("/api/budget/report.csv", deps.BudgetHandler.GetReport).Methods("GET")
	r.HandleFunc("/api/budget/share", deps.BudgetHandler.ShareForPlanning).Methods("POST")

	// Notes
	r.HandleFunc("/api/notes", deps.NotesHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/notes", deps.NotesHandler.Create).Methods("POST")
	r.HandleFunc("/api/notes/stats", deps.NotesHandler.GetStats).Methods("GET")
	r.HandleFunc("/api/notes/share", deps.NotesHandler.Share).Methods("POST")
	r.HandleFunc("/api/notes/{id}", deps.NotesHandler.Get).Methods("GET")
	r.HandleFunc("/api/notes/{id}", deps.NotesHandler.Update).Methods("PATCH")
	r.HandleFunc("/api/notes/{id}", deps.NotesHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/notes/{id}/html", deps.NotesHandler.GetHTML).Methods("GET")

	// Planning
	r.HandleFunc("/api/planning/items", deps.PlanningHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/planning/items", deps.PlanningHandler.Create).Methods("POST")
	r.HandleFunc("/api/planning/items/{id}", deps.PlanningHandler.Update).Methods("PATCH")
	r.HandleFunc("/api/planning/items/{id}", deps.PlanningHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/planning/items/{id}/toggle", deps.PlanningHandler.Toggle).Methods("POST")
	r.HandleFunc("/api/planning/progress", deps.PlanningHandler.GetProgress).Methods("GET")
	r.HandleFunc("/api/planning/import/{source}", deps.PlanningHandler.Import).Methods("POST")
	r.HandleFunc("/api/planning/rooms/{room}/share", deps.PlanningHandler.ShareRoom).Methods("POST")
	r.HandleFunc("/api/planning/share", deps.PlanningHandler.SharePlanning).Methods("POST")
	r.HandleFunc("/api/planning/details", deps.PlanningHandler.ListDetails).Methods("GET")
	r.HandleFunc("/api/planning/details", deps.PlanningHandler.CreateDetails).Methods("POST")
	r.HandleFunc("/api/planning/details/{id}", deps.PlanningHandler.GetDetails).Methods("GET")
	r.HandleFunc("/api/planning/draft", deps.PlanningHandler.GetDraft).Methods("GET")
	r.HandleFunc("/api/planning/draft", deps.PlanningHandler.SaveDraft).Methods("PUT")
	r.HandleFunc("/api/planning/draft", deps.PlanningHandler.ClearDraft).Methods("DELETE")

	// Calendar
	r.HandleFunc("/api/events", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events/upcoming", deps.CalendarHandler.GetUpcomingEvents).Methods("GET")
	r.HandleFunc("/api/events/{id}", deps.CalendarHandler.UpdateEvent).Methods("PATCH")
	r.HandleFunc("/api/events/{id}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/calendar", deps.CalendarHandler.GetMonth).Methods("GET")

	// Settings
	r.HandleFunc("/api/settings", deps.SettingsHandler.Get).Methods("GET")
	r.HandleFunc("/api/settings", deps.SettingsHandler.Update).Methods("PATCH")
	r.HandleFunc("/api/settings/value", deps.SettingsHandler.GetValue).Queries("path", "{path}").Methods("GET")
	r.HandleFunc("/api/settings/reset", deps.SettingsHandler.Reset).Methods("POST")
	r.HandleFunc("/api/data", deps.SettingsHandler.ClearAllData).Methods("DELETE")

	// Gallery
	r.HandleFunc("/api/photos", deps.GalleryHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/photos", deps.GalleryHandler.Upload).Methods("POST")
	r.HandleFunc("/api/photos/{id}", deps.GalleryHandler.Update).Methods("PATCH")
	r.HandleFunc("/api/photos/{id}", deps.GalleryHandler.Delete).Methods("DELETE")

	// Backup
	r.HandleFunc("/api/backup", deps.BackupHandler.Export).Methods("GET")
	r.HandleFunc("/api/backup", deps.BackupHandler.Import).Methods("POST")

	// Remote database
	r.HandleFunc("/api/remote/{collection}/{id}", deps.RemoteHandler.Save).Methods("PUT")
	r.HandleFunc("/api/remote/{collection}/{id}", deps.RemoteHandler.Get).Methods("GET")

	// Calculator
	r.HandleFunc("/api/calculator", calculator.HandleCalculate).Methods("POST")
}
