package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatar *domain.Image) error {
	args := m.Called(ctx, id, avatar)
	return args.Error(0)
}

type MockCampgroundRepository struct {
	mock.Mock
}

func (m *MockCampgroundRepository) Create(ctx context.Context, campground *domain.Campground) error {
	args := m.Called(ctx, campground)
	return args.Error(0)
}

func (m *MockCampgroundRepository) Update(ctx context.Context, campground *domain.Campground) error {
	args := m.Called(ctx, campground)
	return args.Error(0)
}

func (m *MockCampgroundRepository) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Campground, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campground), args.Error(1)
}

func (m *MockCampgroundRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Campground, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campground), args.Error(1)
}

func (m *MockCampgroundRepository) FindAll(ctx context.Context) ([]*domain.Campground, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Campground), args.Error(1)
}

func (m *MockCampgroundRepository) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]*domain.Campground, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Campground), args.Error(1)
}

func (m *MockCampgroundRepository) AppendImages(ctx context.Context, id primitive.ObjectID, images []domain.Image) error {
	args := m.Called(ctx, id, images)
	return args.Error(0)
}

func (m *MockCampgroundRepository) RemoveImagesByFilename(ctx context.Context, id primitive.ObjectID, filenames []string) error {
	args := m.Called(ctx, id, filenames)
	return args.Error(0)
}

func (m *MockCampgroundRepository) PushReview(ctx context.Context, id, reviewID primitive.ObjectID) error {
	args := m.Called(ctx, id, reviewID)
	return args.Error(0)
}

func (m *MockCampgroundRepository) PullReview(ctx context.Context, id, reviewID primitive.ObjectID) error {
	args := m.Called(ctx, id, reviewID)
	return args.Error(0)
}

func (m *MockCampgroundRepository) AddLiker(ctx context.Context, id, userID primitive.ObjectID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockCampgroundRepository) RemoveLiker(ctx context.Context, id, userID primitive.ObjectID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Review, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, originalFilename, contentType string, data []byte) (domain.Image, error) {
	args := m.Called(ctx, originalFilename, contentType, data)
	return args.Get(0).(domain.Image), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, filename string) error {
	args := m.Called(ctx, filename)
	return args.Error(0)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, location string) (float64, float64, error) {
	args := m.Called(ctx, location)
	return args.Get(0).(float64), args.Get(1).(float64), args.Error(2)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}
