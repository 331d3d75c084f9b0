package service

import (
	"context" // Request-scoped queries
	"errors"  // Error classification
	"strings" // Input normalisation
	"sync"    // Lazy dummy hash
	"time"    // Token lifetime

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Association control

	"social_network/internal/domain" // Models and error classes
	"social_network/internal/utils"  // JWT helpers
)

// RegisterInput is the payload of a sign-up
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,max=72"`
}

// LoginInput is the payload of a sign-in
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by register and login
type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// AuthService registers users, checks credentials and resolves tokens
type AuthService struct {
	db     *gorm.DB
	secret string
	ttl    time.Duration
}

// NewAuthService signs tokens with secret, valid for ttl
func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	return &AuthService{db: db, secret: secret, ttl: ttl}
}

// Register creates a user with role "user" and returns a session for it
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return Session{}, err
	}

	if err := s.checkAccountFree(ctx, in); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}
	user := domain.User{Username: in.Username, Email: in.Email, Password: string(hash), Role: domain.RoleUser}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent sign-up; name the field that now clashes
			if cerr := s.checkAccountFree(ctx, in); cerr != nil {
				return Session{}, cerr
			}
			return Session{}, &domain.ConflictError{Field: "username", Message: "Username or email already in use"}
		}
		return Session{}, err
	}
	return s.session(user)
}

// checkAccountFree reports a ConflictError when the email or username is taken.
// Email is reported first when both clash.
func (s *AuthService) checkAccountFree(ctx context.Context, in RegisterInput) error {
	if err := s.checkUnique(ctx, "email", in.Email, "Email already in use"); err != nil {
		return err
	}
	return s.checkUnique(ctx, "username", in.Username, "Username already taken")
}

func (s *AuthService) checkUnique(ctx context.Context, column, value, msg string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return &domain.ConflictError{Field: column, Message: msg}
	}
	return nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy spends the same bcrypt work as a real check so unknown emails
// cannot be told apart by response time
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return Session{}, err
	}
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		compareDummy(in.Password)
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *AuthService) session(user domain.User) (Session, error) {
	token, err := utils.GenerateJWT(user.ID, s.secret, s.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

// CurrentUser resolves a bearer token to the user it was issued for
func (s *AuthService) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	claims, err := utils.ParseJWT(token, s.secret)
	if err != nil {
		return domain.User{}, errors.Join(domain.ErrUnauthorized, err)
	}
	return findUser(ctx, s.db, claims.UserID)
}
