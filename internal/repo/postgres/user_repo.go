package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arashmdn/student-portal/internal/domain"
)

// ConsumeResult is the outcome of a single-use flag consumption attempt.
type ConsumeResult int

const (
	// Consumed: this call performed the unused→used transition.
	Consumed ConsumeResult = iota
	// AlreadyUsed: the flag was flipped by an earlier login.
	AlreadyUsed
	// NoProfile: the user has no profile, the guard does not apply.
	NoProfile
)

type UsersRepo interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByStudentNumber(ctx context.Context, studentNumber string) (*domain.User, error)
	// FindForLogin applies the dual filter: the profile's national code
	// AND its student number (the login password) must both match.
	FindForLogin(ctx context.Context, nationalCode, studentNumber string) ([]domain.User, error)
	FindAdmins(ctx context.Context) ([]domain.User, error)

	ExistsStudentNumber(ctx context.Context, studentNumber string) (bool, error)
	ExistsNationalCode(ctx context.Context, nationalCode string) (bool, error)
	ExistsPhoneNumber(ctx context.Context, phoneNumber string) (bool, error)

	EnsureRole(ctx context.Context, name, description string) (int64, error)
	CreateWithProfile(ctx context.Context, studentNumber, passwordHash string, roleID int64, profile *domain.StudentProfile) (*domain.User, error)
	ConsumeAuthentication(ctx context.Context, userID int64) (ConsumeResult, error)
}

type UsersRepoImpl struct{ pool *pgxpool.Pool }

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepoImpl { return &UsersRepoImpl{pool: pool} }

const userColumns = `u.id, u.student_number, u.password_hash, r.name, u.is_active, u.created_at, u.updated_at`

const profileColumns = `p.id, p.user_id, p.first_name, p.last_name, p.national_code, p.student_number,
p.phone_number, p.gender, COALESCE(p.address, ''), p.has_authenticated, p.created_at, p.updated_at`

func scanUserWithProfile(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var p domain.StudentProfile
	if err := row.Scan(
		&u.ID, &u.StudentNumber, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.NationalCode, &p.StudentNumber,
		&p.PhoneNumber, &p.Gender, &p.Address, &p.HasAuthenticated, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Profile = &p
	return &u, nil
}

// scanUserOptionalProfile handles rows from a LEFT JOIN on
// student_profiles: admin identities are seeded without a profile, and
// they must still resolve. Profile stays nil when the joined columns are
// NULL.
func scanUserOptionalProfile(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var (
		profileID        *int64
		profileUserID    *int64
		firstName        *string
		lastName         *string
		nationalCode     *string
		studentNumber    *string
		phoneNumber      *string
		gender           *string
		address          *string
		hasAuthenticated *bool
		createdAt        *time.Time
		updatedAt        *time.Time
	)
	if err := row.Scan(
		&u.ID, &u.StudentNumber, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&profileID, &profileUserID, &firstName, &lastName, &nationalCode, &studentNumber,
		&phoneNumber, &gender, &address, &hasAuthenticated, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	if profileID != nil {
		p := domain.StudentProfile{
			ID:               *profileID,
			UserID:           *profileUserID,
			FirstName:        *firstName,
			LastName:         *lastName,
			NationalCode:     *nationalCode,
			StudentNumber:    *studentNumber,
			PhoneNumber:      *phoneNumber,
			Gender:           domain.Gender(*gender),
			HasAuthenticated: *hasAuthenticated,
			CreatedAt:        *createdAt,
			UpdatedAt:        *updatedAt,
		}
		if address != nil {
			p.Address = *address
		}
		u.Profile = &p
	}
	return &u, nil
}

func (r *UsersRepoImpl) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	q := `
SELECT ` + userColumns + `, ` + profileColumns + `
FROM users u
JOIN roles r ON r.id = u.role_id
LEFT JOIN student_profiles p ON p.user_id = u.id
WHERE u.id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUserOptionalProfile(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *UsersRepoImpl) FindByStudentNumber(ctx context.Context, studentNumber string) (*domain.User, error) {
	q := `
SELECT ` + userColumns + `, ` + profileColumns + `
FROM users u
JOIN roles r ON r.id = u.role_id
LEFT JOIN student_profiles p ON p.user_id = u.id
WHERE u.student_number = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUserOptionalProfile(r.pool.QueryRow(ctx, q, studentNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *UsersRepoImpl) FindForLogin(ctx context.Context, nationalCode, studentNumber string) ([]domain.User, error) {
	q := `
SELECT ` + userColumns + `, ` + profileColumns + `
FROM users u
JOIN roles r ON r.id = u.role_id
JOIN student_profiles p ON p.user_id = u.id
WHERE p.national_code = $1 AND p.student_number = $2
ORDER BY u.id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, nationalCode, studentNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserWithProfile(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UsersRepoImpl) FindAdmins(ctx context.Context) ([]domain.User, error) {
	const q = `
SELECT u.id, u.student_number, u.password_hash, r.name, u.is_active, u.created_at, u.updated_at
FROM users u
JOIN roles r ON r.id = u.role_id
WHERE r.name = 'admin'
ORDER BY u.id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.StudentNumber, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UsersRepoImpl) exists(ctx context.Context, q, value string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var found bool
	if err := r.pool.QueryRow(ctx, q, value).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (r *UsersRepoImpl) ExistsStudentNumber(ctx context.Context, studentNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE student_number = $1)`, studentNumber)
}

func (r *UsersRepoImpl) ExistsNationalCode(ctx context.Context, nationalCode string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM student_profiles WHERE national_code = $1)`, nationalCode)
}

func (r *UsersRepoImpl) ExistsPhoneNumber(ctx context.Context, phoneNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM student_profiles WHERE phone_number = $1)`, phoneNumber)
}

// EnsureRole creates the role if absent and returns its id. The unique
// constraint on roles.name makes the lazy create race-tolerant.
func (r *UsersRepoImpl) EnsureRole(ctx context.Context, name, description string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	const insert = `INSERT INTO roles (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	if _, err := r.pool.Exec(ctx, insert, name, description); err != nil {
		return 0, err
	}

	var id int64
	if err := r.pool.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateWithProfile inserts the user row and its profile in one
// transaction: both rows commit or neither does. A unique violation at
// commit time maps to the same ConflictError taxonomy as the pre-checks,
// closing the race between check and insert.
func (r *UsersRepoImpl) CreateWithProfile(ctx context.Context, studentNumber, passwordHash string, roleID int64, profile *domain.StudentProfile) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertUser = `
INSERT INTO users (student_number, password_hash, role_id)
VALUES ($1, $2, $3)
RETURNING id, is_active, created_at, updated_at`
	u := domain.User{StudentNumber: studentNumber, PasswordHash: passwordHash}
	if err := tx.QueryRow(ctx, insertUser, studentNumber, passwordHash, roleID).Scan(
		&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, conflictOrRaw(err)
	}

	const insertProfile = `
INSERT INTO student_profiles (user_id, first_name, last_name, national_code, student_number, phone_number, gender, address)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
RETURNING id, has_authenticated, created_at, updated_at`
	p := *profile
	p.UserID = u.ID
	if err := tx.QueryRow(ctx, insertProfile,
		u.ID, p.FirstName, p.LastName, p.NationalCode, p.StudentNumber, p.PhoneNumber, p.Gender, p.Address,
	).Scan(&p.ID, &p.HasAuthenticated, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, conflictOrRaw(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, conflictOrRaw(err)
	}
	u.Profile = &p
	return &u, nil
}

// ConsumeAuthentication performs the one-way unused→used transition as a
// storage-level compare-and-set, so at most one concurrent login observes
// the unused state.
func (r *UsersRepoImpl) ConsumeAuthentication(ctx context.Context, userID int64) (ConsumeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	const update = `
UPDATE student_profiles
SET has_authenticated = TRUE, updated_at = now()
WHERE user_id = $1 AND has_authenticated = FALSE`
	tag, err := r.pool.Exec(ctx, update, userID)
	if err != nil {
		return NoProfile, err
	}
	if tag.RowsAffected() == 1 {
		return Consumed, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM student_profiles WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return NoProfile, err
	}
	if exists {
		return AlreadyUsed, nil
	}
	return NoProfile, nil
}

// Unique constraint names from the schema, mapped to the credential field
// they guard.
var uniqueConstraintFields = map[string]string{
	"users_student_number_key":            "student_number",
	"student_profiles_student_number_key": "student_number",
	"student_profiles_national_code_key":  "national_code",
	"student_profiles_phone_number_key":   "phone_number",
	"student_profiles_user_id_key":        "user_id",
}

var conflictMessages = map[string]string{
	"student_number": "شماره دانشجویی قبلاً ثبت شده است",
	"national_code":  "کد ملی قبلاً ثبت شده است",
	"phone_number":   "شماره تماس قبلاً ثبت شده است",
}

const msgDuplicateGeneric = "اطلاعات وارد شده تکراری یا نامعتبر است"

func conflictOrRaw(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	field := uniqueConstraintFields[pgErr.ConstraintName]
	msg, ok := conflictMessages[field]
	if !ok {
		msg = msgDuplicateGeneric
	}
	return &domain.ConflictError{Field: field, Message: msg}
}
