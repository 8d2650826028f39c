package service

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"campuscomplaint/internal/backend/repository"
	"campuscomplaint/internal/model"
	pkgerrors "campuscomplaint/pkg/errors"
	"campuscomplaint/pkg/utils/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const defaultOTPTTL = 10 * time.Minute

// OTPSender delivers a password reset code.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogOTPSender writes codes to the log instead of sending mail.
type LogOTPSender struct{}

func (LogOTPSender) SendOTP(ctx context.Context, email, code string) error {
	logger.Info(ctx, "password reset code issued", zap.String("email", email), zap.String("otp", code))
	return nil
}

// AuthService handles signup, login and password flows.
type AuthService struct {
	users  repository.UserRepository
	otps   *repository.OTPRepository
	tokens *TokenIssuer
	sender OTPSender
	otpTTL time.Duration
}

func NewAuthService(users repository.UserRepository, otps *repository.OTPRepository, tokens *TokenIssuer, sender OTPSender) *AuthService {
	if sender == nil {
		sender = LogOTPSender{}
	}
	return &AuthService{users: users, otps: otps, tokens: tokens, sender: sender, otpTTL: defaultOTPTTL}
}

// SignupInput represents input for registration.
type SignupInput struct {
	Name            string
	MobileNumber    string
	Email           string
	Password        string
	ConfirmPassword string
}

// Signup registers a USER account. Tokens are not issued.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) error {
	if err := requireFields(
		field{"name", input.Name},
		field{"mobileNumber", input.MobileNumber},
		field{"email", input.Email},
		field{"password", input.Password},
		field{"confirmPassword", input.ConfirmPassword},
	); err != nil {
		return err
	}
	if input.Password != input.ConfirmPassword {
		return pkgerrors.ValidationError(pkgerrors.PasswordMismatch, "confirmPassword")
	}
	if err := validateMobile(input.MobileNumber); err != nil {
		return err
	}
	_, err := s.createUser(ctx, input.Name, input.MobileNumber, input.Email, input.Password, []string{model.RoleUser})
	return err
}

// EnsureAdmin creates the seed admin account when its mobile number is free.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, mobile, email, password string) error {
	if _, err := s.users.GetByMobile(ctx, mobile); err == nil {
		return nil
	}
	_, err := s.createUser(ctx, name, mobile, email, password, []string{model.RoleUser, model.RoleAdmin})
	return err
}

func (s *AuthService) createUser(ctx context.Context, name, mobile, email, password string, roles []string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, pkgerrors.Wrap(fmt.Errorf("hash password failed: %w", err), pkgerrors.InternalServerError)
	}
	id, err := s.users.Create(ctx, &repository.User{
		Name:         strings.TrimSpace(name),
		MobileNumber: mobile,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		Roles:        roles,
	})
	if err != nil {
		return 0, mapUserError(err)
	}
	logger.Info(ctx, "user registered", zap.Int64("user_id", id))
	return id, nil
}

// Login verifies credentials and issues tokens.
func (s *AuthService) Login(ctx context.Context, mobile, password string) (TokenPair, error) {
	if err := requireFields(field{"mobileNumber", mobile}, field{"password", password}); err != nil {
		return TokenPair{}, err
	}
	user, err := s.users.GetByMobile(ctx, mobile)
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, pkgerrors.New(pkgerrors.InvalidCredentials)
		}
		return TokenPair{}, pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, pkgerrors.New(pkgerrors.InvalidCredentials)
	}
	return s.tokens.Issue(Principal{ID: user.ID, Roles: user.Roles})
}

// Refresh trades a refresh token for a new pair carrying the user's current roles.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	principal, err := s.tokens.Parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.getUser(ctx, principal.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return s.tokens.Issue(Principal{ID: user.ID, Roles: user.Roles})
}

// UpdateRole grants ADMIN (roles USER and ADMIN) or demotes to USER.
func (s *AuthService) UpdateRole(ctx context.Context, userID int64, role string) error {
	role = strings.ToUpper(strings.TrimSpace(role))
	var roles []string
	switch role {
	case model.RoleAdmin:
		roles = []string{model.RoleUser, model.RoleAdmin}
	case model.RoleUser:
		roles = []string{model.RoleUser}
	default:
		return pkgerrors.ValidationError(pkgerrors.InvalidFormat, "role")
	}
	if err := s.users.UpdateRoles(ctx, userID, roles); err != nil {
		return mapUserError(err)
	}
	return nil
}

// RequestPasswordReset issues an OTP for the account registered with email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := requireField(email, "email"); err != nil {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return mapUserError(err)
	}
	code, err := newOTP()
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.InternalServerError)
	}
	if err := s.otps.Save(ctx, email, code, s.otpTTL); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	if err := s.sender.SendOTP(ctx, email, code); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ServiceUnavailable)
	}
	return nil
}

// ResetPassword checks the OTP and stores the new password. The code is single use.
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if err := requireFields(field{"email", email}, field{"otp", otp}, field{"newPassword", newPassword}); err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return mapUserError(err)
	}
	code, err := s.otps.Get(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrOTPNotFound) {
			return pkgerrors.New(pkgerrors.InvalidOTP)
		}
		return pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	if code != strings.TrimSpace(otp) {
		return pkgerrors.New(pkgerrors.InvalidOTP)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return pkgerrors.Wrap(fmt.Errorf("hash password failed: %w", err), pkgerrors.InternalServerError)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return mapUserError(err)
	}
	if err := s.otps.Delete(ctx, email); err != nil {
		logger.Warn(ctx, "delete otp failed", zap.Error(err))
	}
	return nil
}

func (s *AuthService) getUser(ctx context.Context, id int64) (*repository.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserError(err)
	}
	return user, nil
}

func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp failed: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func mapUserError(err error) error {
	switch {
	case stderrors.Is(err, repository.ErrUserNotFound):
		return pkgerrors.New(pkgerrors.UserNotFound)
	case stderrors.Is(err, repository.ErrMobileExists):
		return pkgerrors.New(pkgerrors.MobileAlreadyExists)
	case stderrors.Is(err, repository.ErrEmailExists):
		return pkgerrors.New(pkgerrors.EmailAlreadyExists)
	default:
		return pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
}
