package domain

// User is the public view of an account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Admin    bool   `json:"admin"`
}

// Account is a user as persisted, including the password hash.
type Account struct {
	User
	PasswordHash string `json:"password_hash"`
}

// Registration is the sign-up form.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	Password string `json:"password" validate:"required,min=4,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

// Credentials is the login form. Login matches either email or username.
type Credentials struct {
	Login    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by a successful login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
