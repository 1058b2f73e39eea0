package services

import (
	"context"
	"testing"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FullName:   "Asha Rao",
		RollNumber: "CS/2022/042",
		Department: "CS",
		Gender:     "female",
		Email:      "Asha.Rao@college.edu",
		Phone:      "9876543210",
		Password:   "correct-horse",
	}
}

func TestRegister_NormalizesAndHashes(t *testing.T) {
	profileRepo := new(mockProfileRepository)
	svc := NewAuthService(profileRepo)

	var created *models.Profile
	profileRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Profile")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Profile)
			created.ID = 1
		}).Return(nil)

	profile, err := svc.Register(context.Background(), validRegisterInput())

	require.NoError(t, err)
	assert.Equal(t, "asha.rao@college.edu", created.Email)
	assert.Equal(t, "CS/2022/042", created.RollNumber)
	assert.Equal(t, models.RoleStudent, created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct-horse")))
	assert.Empty(t, profile.PasswordHash)
}

func TestRegister_ShortPasswordRefused(t *testing.T) {
	svc := NewAuthService(new(mockProfileRepository))

	input := validRegisterInput()
	input.Password = "short"

	_, err := svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegister_InvalidPhoneRefused(t *testing.T) {
	svc := NewAuthService(new(mockProfileRepository))

	input := validRegisterInput()
	input.Phone = "12345"

	_, err := svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestRegister_DuplicateRollNumber(t *testing.T) {
	profileRepo := new(mockProfileRepository)
	svc := NewAuthService(profileRepo)

	profileRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Profile")).
		Return(repositories.ErrProfileRollNumConflict)

	_, err := svc.Register(context.Background(), validRegisterInput())
	assert.ErrorIs(t, err, ErrProfileRollNumConflict)
}

func TestLogin_WrongPassword(t *testing.T) {
	profileRepo := new(mockProfileRepository)
	svc := NewAuthService(profileRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-one"), bcrypt.MinCost)
	require.NoError(t, err)
	profileRepo.On("GetByEmail", mock.Anything, "asha@college.edu").
		Return(&models.Profile{ID: 1, Email: "asha@college.edu", PasswordHash: string(hash)}, nil)

	_, err = svc.Login(context.Background(), LoginInput{Email: "asha@college.edu", Password: "guess"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	profileRepo := new(mockProfileRepository)
	svc := NewAuthService(profileRepo)

	profileRepo.On("GetByEmail", mock.Anything, "ghost@college.edu").
		Return(nil, repositories.ErrProfileNotFound)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@college.edu", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_OfflineProfileCannotLogIn(t *testing.T) {
	profileRepo := new(mockProfileRepository)
	svc := NewAuthService(profileRepo)

	offline := &models.Profile{
		ID:             2,
		Email:          "cs/2022/050@offline.bonhomie.local",
		IsAdminCreated: true,
		PasswordHash:   "",
	}
	profileRepo.On("GetByEmail", mock.Anything, offline.Email).Return(offline, nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: offline.Email, Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Success(t *testing.T) {
	profileRepo := new(mockProfileRepository)
	svc := NewAuthService(profileRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	profileRepo.On("GetByEmail", mock.Anything, "asha@college.edu").
		Return(&models.Profile{ID: 1, Email: "asha@college.edu", PasswordHash: string(hash)}, nil)

	profile, err := svc.Login(context.Background(), LoginInput{Email: "Asha@college.edu ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, 1, profile.ID)
	assert.Empty(t, profile.PasswordHash)
}

func TestUpdatePassword_WrongCurrentRefused(t *testing.T) {
	profileRepo := new(mockProfileRepository)
	svc := NewAuthService(profileRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-one"), bcrypt.MinCost)
	require.NoError(t, err)
	profileRepo.On("GetByID", mock.Anything, 1).
		Return(&models.Profile{ID: 1, PasswordHash: string(hash)}, nil)

	err = svc.UpdatePassword(context.Background(), 1, "wrong", "a-new-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	profileRepo.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
}
