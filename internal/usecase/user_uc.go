package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/metrics"
)

// Upload is an in-memory uploaded file handed from the HTTP layer to the
// storage adapter.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UserUsecase implements registration, authentication and profile logic.
type UserUsecase struct {
	users       domain.UserRepository
	campgrounds domain.CampgroundRepository
	storage     domain.Storage
	publisher   domain.EventPublisher
	metrics     *metrics.Manager
	logger      *logger.Logger
}

func NewUserUsecase(
	users domain.UserRepository,
	campgrounds domain.CampgroundRepository,
	storage domain.Storage,
	publisher domain.EventPublisher,
	m *metrics.Manager,
	log *logger.Logger,
) *UserUsecase {
	return &UserUsecase{
		users:       users,
		campgrounds: campgrounds,
		storage:     storage,
		publisher:   publisher,
		metrics:     m,
		logger:      log.Named("UserUsecase"),
	}
}

// Register creates a new account. Field validation runs before any
// uniqueness check; the username check runs before the email check and the
// first violation short-circuits. The password is hashed exactly once, here,
// before anything is persisted.
func (uc *UserUsecase) Register(ctx context.Context, username, email, password string, avatar *Upload) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	uc.logger.Info("Registering user", zap.String("username", username))

	if len(username) < domain.MinUsernameLength {
		return nil, fmt.Errorf("%w: username must be at least %d characters", domain.ErrValidation, domain.MinUsernameLength)
	}
	if len(password) < domain.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, domain.MinPasswordLength)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrValidation)
	}

	taken, err := uc.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		uc.logger.Warn("Registration rejected: duplicate username", zap.String("username", username))
		return nil, domain.ErrDuplicateUsername
	}

	taken, err = uc.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		uc.logger.Warn("Registration rejected: duplicate email", zap.String("username", username))
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), domain.PasswordHashCost)
	if err != nil {
		uc.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if avatar != nil {
		image, err := uc.storage.Upload(ctx, avatar.Filename, avatar.ContentType, avatar.Data)
		if err != nil {
			return nil, err
		}
		user.Avatar = &image
	} else {
		placeholder := domain.PlaceholderAvatarImage
		user.Avatar = &placeholder
	}

	if _, err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.publisher.Publish(ctx, "user.registered", map[string]interface{}{
		"user_id":  user.ID.Hex(),
		"username": user.Username,
	}); err != nil {
		uc.logger.Warn("Failed to publish user.registered event", zap.Error(err))
	}
	if uc.metrics != nil {
		uc.metrics.UsersRegisteredTotal.Inc()
	}

	uc.logger.Info("User registered", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials so the response never
// reveals whether the account exists.
func (uc *UserUsecase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Debug("Login failed: wrong password", zap.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}

	if uc.metrics != nil {
		uc.metrics.LoginsTotal.Inc()
	}
	uc.logger.Info("User authenticated", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

func (uc *UserUsecase) UsernameExists(ctx context.Context, username string) (bool, error) {
	return uc.users.UsernameExists(ctx, username)
}

func (uc *UserUsecase) EmailExists(ctx context.Context, email string) (bool, error) {
	return uc.users.EmailExists(ctx, email)
}

// GetProfile returns the user and the campgrounds they authored.
func (uc *UserUsecase) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, []*domain.Campground, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	campgrounds, err := uc.campgrounds.FindByAuthor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, campgrounds, nil
}

// ChangeAvatar replaces or clears the user's avatar. With a file the
// descriptor is replaced (the previous asset is left in storage, matching
// the replace flow's historical behavior); without one the current asset is
// deleted from storage and the descriptor falls back to the placeholder.
// Clearing an avatar that is already the placeholder is a validation error.
func (uc *UserUsecase) ChangeAvatar(ctx context.Context, actorID, userID primitive.ObjectID, file *Upload) error {
	if actorID != userID {
		uc.logger.Warn("Forbidden avatar change attempt",
			zap.String("actor_id", actorID.Hex()), zap.String("target_id", userID.Hex()))
		return domain.ErrForbidden
	}

	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if file != nil {
		image, err := uc.storage.Upload(ctx, file.Filename, file.ContentType, file.Data)
		if err != nil {
			return err
		}
		return uc.users.UpdateAvatar(ctx, userID, &image)
	}

	if user.Avatar == nil || user.Avatar.IsPlaceholder() {
		return fmt.Errorf("%w: no avatar to remove", domain.ErrValidation)
	}
	if err := uc.storage.Delete(ctx, user.Avatar.Filename); err != nil {
		return err
	}
	placeholder := domain.PlaceholderAvatarImage
	return uc.users.UpdateAvatar(ctx, userID, &placeholder)
}
