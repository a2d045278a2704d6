package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-ordering-api/mailer"
	"food-ordering-api/media"
	"food-ordering-api/models"
	"food-ordering-api/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type SignupInput struct {
	Fullname string
	Email    string
	Password string
	Contact  string
}

// ProfileUpdate carries only the fields the caller supplied.
type ProfileUpdate struct {
	Fullname *string
	Address  *string
	City     *string
	Country  *string
}

type AuthService struct {
	users       store.Users
	mail        mailer.Mailer
	uploader    media.Uploader
	frontendURL string
	resetTTL    time.Duration
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewAuthService(users store.Users, mail mailer.Mailer, uploader media.Uploader, frontendURL string, resetTTL time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:       users,
		mail:        mail,
		uploader:    uploader,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		resetTTL:    resetTTL,
		log:         log,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user %s: %w", email, ErrAlreadyExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	user := &models.User{
		Fullname:     strings.TrimSpace(in.Fullname),
		Email:        email,
		PasswordHash: string(hash),
		Contact:      in.Contact,
		LastLogin:    &now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("user %s: %w", email, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate, picture *media.File) (*models.User, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Fullname != nil {
		user.Fullname = *in.Fullname
	}
	if in.Address != nil {
		user.Address = *in.Address
	}
	if in.City != nil {
		user.City = *in.City
	}
	if in.Country != nil {
		user.Country = *in.Country
	}
	if picture != nil {
		url, err := s.uploader.Upload(ctx, picture)
		if err != nil {
			return nil, uploadErr(err)
		}
		user.ProfilePicture = url
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return lookupErr(err, "user")
	}

	token, err := resetToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(s.resetTTL)
	user.ResetPasswordToken = token
	user.ResetPasswordTokenExpires = &expires
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mail.SendPasswordReset(ctx, user.Email, s.frontendURL+"/resetpassword/"+token); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if newPassword == "" {
		return fmt.Errorf("new password: %w", ErrMissingField)
	}
	user, err := s.users.UserByResetToken(ctx, token, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("load reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.ResetPasswordToken = ""
	user.ResetPasswordTokenExpires = nil
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.mail.SendResetSuccess(ctx, user.Email); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("reset success email failed")
	}
	return nil
}

func resetToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func uploadErr(err error) error {
	if errors.Is(err, media.ErrUnsupportedImage) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return fmt.Errorf("upload image: %w", err)
}
