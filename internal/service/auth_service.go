package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arashmdn/student-portal/internal/audit"
	"github.com/arashmdn/student-portal/internal/domain"
	"github.com/arashmdn/student-portal/internal/platform/auth"
	"github.com/arashmdn/student-portal/internal/repo/postgres"
	"github.com/arashmdn/student-portal/pkg/digits"
	"github.com/arashmdn/student-portal/pkg/logger"
)

const (
	msgAccountInactive = "حساب کاربری غیرفعال شده است"
	msgAlreadyAuthed   = "این کد ملی قبلاً برای احراز هویت استفاده شده است"
)

type AuthService interface {
	// Register creates an Identity with its profile. The login password is
	// the student number itself.
	Register(ctx context.Context, req *domain.RegisterRequest, clientIP string) (*domain.User, error)
	// Login authenticates by national code + student number, enforces the
	// single-use guard and issues a bearer token.
	Login(ctx context.Context, nationalCode, password, clientIP string) (*domain.Token, *domain.User, error)
	// AdminLogin authenticates the candidate password against every
	// admin identity. The lockout guard sits in front of this call, at
	// the handler.
	AdminLogin(ctx context.Context, password, clientIP string) (*domain.Token, *domain.User, error)
	// CurrentUser resolves an authenticated token subject to its user.
	// Token verification happens at the transport layer; this rejects
	// subjects that no longer exist.
	CurrentUser(ctx context.Context, studentNumber string) (*domain.User, error)
	// IsStudentNumberAvailable reports whether no user holds the number.
	IsStudentNumberAvailable(ctx context.Context, studentNumber string) (bool, error)
	// SeedDefaultRoles idempotently creates the built-in roles.
	SeedDefaultRoles(ctx context.Context) error
}

type authService struct {
	users  postgres.UsersRepo
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
	sink   audit.Sink
}

func NewAuthService(
	users postgres.UsersRepo,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	sink audit.Sink,
) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		sink:   sink,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest, clientIP string) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The student number doubles as the password, so the hasher's byte
	// limit bounds it too. A 9-digit number can't exceed it, but the
	// check keeps the policy explicit rather than incidental.
	if len(req.StudentNumber) > auth.MaxPasswordBytes {
		return nil, domain.NewValidationError("student_number", "شماره دانشجویی بیش از حد مجاز طولانی است")
	}

	// Three independent checks so the error names the duplicate field.
	// The unique constraints remain the guarantee; these are the fast
	// path with a friendly message.
	checks := []struct {
		exists func(context.Context, string) (bool, error)
		value  string
		field  string
		msg    string
	}{
		{s.users.ExistsStudentNumber, req.StudentNumber, "student_number", "شماره دانشجویی قبلاً ثبت شده است"},
		{s.users.ExistsNationalCode, req.NationalCode, "national_code", "کد ملی قبلاً ثبت شده است"},
		{s.users.ExistsPhoneNumber, req.PhoneNumber, "phone_number", "شماره تماس قبلاً ثبت شده است"},
	}
	for _, c := range checks {
		exists, err := c.exists(ctx, c.value)
		if err != nil {
			return nil, &domain.StorageError{Err: err}
		}
		if exists {
			return nil, &domain.ConflictError{Field: c.field, Message: c.msg}
		}
	}

	roleID, err := s.users.EnsureRole(ctx, domain.RoleUser, "کاربر عادی")
	if err != nil {
		return nil, &domain.StorageError{Err: err}
	}

	passwordHash, err := s.hasher.Hash(req.StudentNumber)
	if err != nil {
		return nil, err
	}

	profile := &domain.StudentProfile{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		NationalCode:  req.NationalCode,
		StudentNumber: req.StudentNumber,
		PhoneNumber:   req.PhoneNumber,
		Gender:        domain.Gender(req.Gender),
		Address:       req.Address,
	}
	user, err := s.users.CreateWithProfile(ctx, req.StudentNumber, passwordHash, roleID, profile)
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			s.recordAudit(ctx, audit.KindRegister, false, 0, req.StudentNumber, clientIP, "duplicate "+conflict.Field)
			return nil, conflict
		}
		return nil, &domain.StorageError{Err: err}
	}
	user.Role = domain.RoleUser

	s.recordAudit(ctx, audit.KindRegister, true, user.ID, user.StudentNumber, clientIP, "")
	return user, nil
}

func (s *authService) Login(ctx context.Context, nationalCode, password, clientIP string) (*domain.Token, *domain.User, error) {
	nationalCode = digits.Normalize(nationalCode)
	password = digits.Normalize(password)

	// The dual filter (national code AND student-number-as-password)
	// tolerates duplicate national codes in legacy rows: every matching
	// candidate gets a verify attempt instead of only the first row.
	candidates, err := s.users.FindForLogin(ctx, nationalCode, password)
	if err != nil {
		return nil, nil, &domain.StorageError{Err: err}
	}

	var user *domain.User
	for i := range candidates {
		if s.hasher.Verify(password, candidates[i].PasswordHash) {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		s.recordAudit(ctx, audit.KindLogin, false, 0, "", clientIP, "invalid credentials")
		return nil, nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recordAudit(ctx, audit.KindLogin, false, user.ID, user.StudentNumber, clientIP, "inactive account")
		return nil, nil, &domain.ForbiddenError{Message: msgAccountInactive}
	}

	// Single-use guard: the unused→used transition is a storage-level
	// compare-and-set, so concurrent logins with the same national code
	// cannot both pass. Fails closed when already consumed.
	result, err := s.users.ConsumeAuthentication(ctx, user.ID)
	if err != nil {
		return nil, nil, &domain.StorageError{Err: err}
	}
	if result == postgres.AlreadyUsed {
		s.recordAudit(ctx, audit.KindLogin, false, user.ID, user.StudentNumber, clientIP, "single-use credential already consumed")
		return nil, nil, &domain.ForbiddenError{Message: msgAlreadyAuthed}
	}
	if user.Profile != nil {
		user.Profile.HasAuthenticated = true
	}

	token, err := s.tokenForUser(user)
	if err != nil {
		return nil, nil, err
	}
	s.recordAudit(ctx, audit.KindLogin, true, user.ID, user.StudentNumber, clientIP, "")
	return token, user, nil
}

func (s *authService) AdminLogin(ctx context.Context, password, clientIP string) (*domain.Token, *domain.User, error) {
	candidate := strings.TrimSpace(password)

	admins, err := s.users.FindAdmins(ctx)
	if err != nil {
		return nil, nil, &domain.StorageError{Err: err}
	}
	if len(admins) == 0 {
		// internal condition only; the caller still sees a credential
		// failure
		logger.WarnContext(ctx, "admin login attempted but no admin identity exists")
		s.recordAudit(ctx, audit.KindAdminLogin, false, 0, "", clientIP, "no admin identity")
		return nil, nil, domain.ErrInvalidCredentials
	}

	var admin *domain.User
	for i := range admins {
		if s.hasher.Verify(candidate, admins[i].PasswordHash) {
			admin = &admins[i]
			break
		}
	}
	if admin == nil {
		s.recordAudit(ctx, audit.KindAdminLogin, false, 0, "", clientIP, "invalid credentials")
		return nil, nil, domain.ErrInvalidCredentials
	}
	if !admin.IsActive {
		s.recordAudit(ctx, audit.KindAdminLogin, false, admin.ID, admin.StudentNumber, clientIP, "inactive account")
		return nil, nil, &domain.ForbiddenError{Message: msgAccountInactive}
	}

	token, err := s.tokenForUser(admin)
	if err != nil {
		return nil, nil, err
	}
	s.recordAudit(ctx, audit.KindAdminLogin, true, admin.ID, admin.StudentNumber, clientIP, "")
	return token, admin, nil
}

func (s *authService) CurrentUser(ctx context.Context, studentNumber string) (*domain.User, error) {
	user, err := s.users.FindByStudentNumber(ctx, studentNumber)
	if err != nil {
		return nil, &domain.StorageError{Err: err}
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	return user, nil
}

func (s *authService) IsStudentNumberAvailable(ctx context.Context, studentNumber string) (bool, error) {
	exists, err := s.users.ExistsStudentNumber(ctx, digits.Normalize(studentNumber))
	if err != nil {
		return false, &domain.StorageError{Err: err}
	}
	return !exists, nil
}

func (s *authService) SeedDefaultRoles(ctx context.Context) error {
	roles := []struct{ name, description string }{
		{domain.RoleUser, "کاربر عادی"},
		{domain.RoleAdmin, "مدیر سیستم"},
		{domain.RoleModerator, "مدیر میانی"},
	}
	for _, r := range roles {
		if _, err := s.users.EnsureRole(ctx, r.name, r.description); err != nil {
			return &domain.StorageError{Err: err}
		}
	}
	return nil
}

func (s *authService) tokenForUser(user *domain.User) (*domain.Token, error) {
	nationalCode := ""
	if user.Profile != nil {
		nationalCode = user.Profile.NationalCode
	}
	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}
	accessToken, err := s.tokens.Issue(user.StudentNumber, user.ID, nationalCode, role)
	if err != nil {
		return nil, err
	}
	return &domain.Token{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL() / time.Second),
	}, nil
}

func (s *authService) recordAudit(ctx context.Context, kind string, success bool, userID int64, studentNumber, clientIP, detail string) {
	if s.sink == nil {
		return
	}
	s.sink.Record(ctx, audit.Event{
		Kind:          kind,
		Success:       success,
		UserID:        userID,
		StudentNumber: studentNumber,
		ClientIP:      clientIP,
		Detail:        detail,
		At:            time.Now(),
	})
}
