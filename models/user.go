package models

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (u *User) Short() UserShort {
	return UserShort{ID: u.ID, Name: u.Name}
}

type NewUserRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=250"`
	Email string `json:"email" binding:"required,email,min=6,max=254"`
}

// LoginRequest is the admin credential exchanged for a JWT.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
