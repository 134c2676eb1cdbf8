package handler

import (
	"hiawto/internal/usecase"
)

var (
	authHandler    *AuthHandler
	userHandler    *UserHandler
	listingHandler *ListingHandler
	threadHandler  *ThreadHandler
	inboxHandler   *InboxHandler
	uploadHandler  *UploadHandler
	adminHandler   *AdminHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	listingUseCase *usecase.ListingUseCase,
	messagingUseCase *usecase.MessagingUseCase,
	inboxUseCase *usecase.InboxUseCase,
	uploadUseCase *usecase.UploadUseCase,
	adminUseCase *usecase.AdminUseCase,
	fraudUseCase *usecase.FraudReviewUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	listingHandler = NewListingHandler(listingUseCase)
	threadHandler = NewThreadHandler(messagingUseCase)
	inboxHandler = NewInboxHandler(inboxUseCase)
	uploadHandler = NewUploadHandler(uploadUseCase)
	adminHandler = NewAdminHandler(adminUseCase, fraudUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetThreadHandler() *ThreadHandler {
	return threadHandler
}

func GetInboxHandler() *InboxHandler {
	return inboxHandler
}

func GetUploadHandler() *UploadHandler {
	return uploadHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}
