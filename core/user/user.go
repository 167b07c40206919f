package user

import "time"

// Subscription mirrors the payment gateway's order lifecycle for the one
// course the user purchased: "created" once the order is placed, "active"
// once the payment is verified.
type Subscription struct {
	ID       string `json:"id" db:"id"`
	Status   string `json:"status" db:"status"`
	CourseID string `json:"courseId" db:"course_id"`
}

type User struct {
	ID           string       `json:"id" db:"user_id"`
	Name         string       `json:"name" db:"name"`
	Email        string       `json:"email" db:"email"`
	Role         string       `json:"role" db:"role"`
	PasswordHash []byte       `json:"-" db:"password_hash"`
	Subscription Subscription `json:"subscription" db:"sub"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

type UserSignup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,gte=8,lte=64"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
