package domain

import "time"

type User struct {
	Id        UserId    `json:"id"`
	Email     Email     `json:"email"`
	Username  Username  `json:"username"`
	PassHash  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Credentials struct {
	Email    Email
	Password Password
}
