package usecase

import (
	"context"
	"io"
	"time"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/repository"
	"hiawto/internal/domain/service"
	"hiawto/pkg/errors"
)

type UserUseCase struct {
	userRepo     repository.UserRepository
	fileService  service.FileUploadService
	firebaseAuth FirebaseAuthClient
}

func NewUserUseCase(userRepo repository.UserRepository, fileService service.FileUploadService, firebaseAuth FirebaseAuthClient) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		fileService:  fileService,
		firebaseAuth: firebaseAuth,
	}
}

type UpdateProfileInput struct {
	Username string
	FullName string
	Phone    string
	Bio      string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}

	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Internal("Failed to update user profile", err)
	}

	return user, nil
}

func (uc *UserUseCase) GetUserProfile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	return user, nil
}

// UploadAvatar stores the image publicly and points the profile at it.
func (uc *UserUseCase) UploadAvatar(ctx context.Context, userID string, file io.Reader, size int64, fileType string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	result, err := uc.fileService.UploadFile(ctx, file, size, fileType, "avatars", true, nil)
	if err != nil {
		return nil, errors.Internal("Failed to upload avatar", err)
	}

	user.AvatarURL = result.URL
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Internal("Failed to update user profile", err)
	}

	return user, nil
}

// SetPresence records online state for the inbox presence indicators.
func (uc *UserUseCase) SetPresence(ctx context.Context, userID string, online bool) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.NotFound("User", err)
	}

	if online {
		user.OnlineStatus = "online"
	} else {
		user.OnlineStatus = "offline"
	}
	user.LastSeen = time.Now()
	user.UpdatedAt = time.Now()

	return uc.userRepo.Update(ctx, user)
}

// ListAgents powers the support routing picker.
func (uc *UserUseCase) ListAgents(ctx context.Context) ([]*entity.User, error) {
	return uc.userRepo.ListByRole(ctx, entity.RoleAgent, 50)
}
