package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"hiawto/internal/adapter/api"
	"hiawto/internal/adapter/api/handler"
	apimiddleware "hiawto/internal/adapter/api/middleware"
	"hiawto/internal/adapter/api/router"
	"hiawto/internal/adapter/repository"
	"hiawto/internal/infrastructure/firebase"
	"hiawto/internal/infrastructure/functions"
	"hiawto/internal/infrastructure/storage"
	"hiawto/internal/infrastructure/uploader"
	"hiawto/internal/infrastructure/websocket"
	"hiawto/internal/usecase"
	"hiawto/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	serviceAccountPath := ""

	// Service account JSON from the environment wins (production); a file
	// path is the local development fallback.
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(
		ctx,
		cfg.StorageBucket,
		cfg.FirebaseProject,
		serviceAccountPath,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	listingRepo := repository.NewFirestoreListingRepository(firestoreClient)
	threadRepo := repository.NewFirestoreThreadRepository(firestoreClient)
	fraudReviewRepo := repository.NewFirestoreFraudReviewRepository(firestoreClient)
	fileMetadataRepo := repository.NewFirestoreFileMetadataRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)
	assistantClient := functions.NewClient(cfg.FunctionsURL)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient)
	userUseCase := usecase.NewUserUseCase(userRepo, storageClient, firebaseAuthClient)
	listingUseCase := usecase.NewListingUseCase(listingRepo, userRepo, storageClient)
	messagingUseCase := usecase.NewMessagingUseCase(threadRepo, userRepo, listingRepo, assistantClient, wsManager)
	inboxUseCase := usecase.NewInboxUseCase(threadRepo, userRepo, assistantClient)
	uploadUseCase := usecase.NewUploadUseCase(storageClient, listingRepo, fileMetadataRepo, uploader.Options{
		TargetBytes:  cfg.PhotoTargetBytes,
		MaxDimension: cfg.PhotoMaxDimension,
		Folder:       "listings",
	}, cfg.MaxUploadBytes)
	adminUseCase := usecase.NewAdminUseCase(threadRepo, listingRepo, userRepo, fraudReviewRepo)
	fraudReviewUseCase := usecase.NewFraudReviewUseCase(fraudReviewRepo, listingRepo, userRepo)

	handler.Setup(authUseCase, userUseCase, listingUseCase, messagingUseCase, inboxUseCase, uploadUseCase, adminUseCase, fraudReviewUseCase)
	handler.SetupHealthHandler(firebaseAuthClient)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.Metrics)

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	wsHandler := handler.NewWebSocketHandler(wsManager, messagingUseCase, authMiddleware)

	router.Setup(e, authMiddleware, adminMiddleware, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
