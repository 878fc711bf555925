package container

import (
	"context"
	"database/sql"
	"os"

	"sams/internal/assets"
	"sams/internal/integrations/googlesheets"
	"sams/internal/repository"
	"sams/internal/sites"
	"sams/internal/uploads"
	"sams/internal/users"
	"sams/pkg/security"

	"go.uber.org/zap"
)

type Container struct {
	Repository    *repository.Repository
	Logger        *zap.Logger
	LoginHandler  *security.LoginHandler
	AssetHandler  *assets.AssetHandler
	SitesHandler  *sites.SitesHandler
	UserHandler   *users.UsersHandler
	SheetsHandler *googlesheets.GoogleSheetsHandler
}

func NewAppContainer(db *sql.DB, log *zap.Logger) *Container {
	repo := repository.NewRepository(db)

	uploadsDir := os.Getenv("UPLOAD_DIR")
	if uploadsDir == "" {
		uploadsDir = "uploads"
	}
	fileStore := uploads.NewDiskStore(uploadsDir, log)

	assetRepo := assets.NewRepository(repo)
	assetService := assets.NewAssetService(assetRepo, fileStore, repo.Goqu, log)
	assetHandler := assets.NewAssetHandler(assetService, log)

	sitesHandler := sites.NewHandler(sites.NewRepository(repo))
	userHandler := users.NewHandler(users.NewRepository(repo))
	loginHandler := security.NewLoginHandler(repo)

	// The sheets export is optional; without credentials the routes are
	// simply not registered.
	var sheetsHandler *googlesheets.GoogleSheetsHandler
	if sheetsService, err := googlesheets.NewSheetsService(context.Background()); err != nil {
		log.Warn("Google Sheets export disabled", zap.Error(err))
	} else {
		export := googlesheets.NewRegisterExportService(sheetsService, assetRepo)
		sheetsHandler = googlesheets.NewGoogleSheetsHandler(export, log)
	}

	return &Container{
		Repository:    repo,
		Logger:        log,
		LoginHandler:  loginHandler,
		AssetHandler:  assetHandler,
		SitesHandler:  sitesHandler,
		UserHandler:   userHandler,
		SheetsHandler: sheetsHandler,
	}
}
