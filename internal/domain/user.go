package domain

const RoleAdmin = "ADMIN"

type User struct {
	ID       string `db:"id"`
	Username string `db:"username"`
	Hash     string `db:"password_hash"`
	Role     string `db:"role"`
}

func (u User) GetID() string { return u.ID }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
