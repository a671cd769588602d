package repos

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"artyra/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByUsername(username string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`SELECT id,username,password_hash,role FROM users WHERE LOWER(username)=LOWER(?)`), username)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureAdmin creates the admin account, or resets its password to the configured one.
func (r *UserRepo) EnsureAdmin(username, password string) error {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(r.DB.Rebind(`
		INSERT INTO users(id,username,password_hash,role)
		VALUES(?,?,?,?)
		ON CONFLICT(username) DO UPDATE SET password_hash=excluded.password_hash, role=excluded.role
	`), uuid.NewString(), username, string(h), domain.RoleAdmin)
	return err
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(r.DB.Rebind(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,?)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=excluded.last_seen`),
		sid, userID, formatTS(time.Now()))
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`
      SELECT u.id,u.username,u.password_hash,u.role
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`), sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(r.DB.Rebind(`UPDATE sessions SET user_id=NULL,last_seen=? WHERE id=?`), formatTS(time.Now()), sid)
	return err
}
