package model

import (
	"net/mail"
	"unicode/utf8"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 10000
	minPasswordLen    = 8
	maxPasswordLen    = 72
)

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	DueDate       string `json:"due_date"`
	Priority      string `json:"priority"`
	AssigneeEmail string `json:"assignee_email"`
}

// Validate checks the request and returns a ValidationError listing every
// failed field, or nil. No defaults are applied here; an absent priority
// is resolved to medium by the service.
func (r *CreateTaskRequest) Validate() error {
	v := NewValidationError()

	if r.Title == "" {
		v.Add("title", "title is required")
	} else if utf8.RuneCountInString(r.Title) > maxTitleLen {
		v.Add("title", "title must be at most 200 characters")
	}

	if utf8.RuneCountInString(r.Description) > maxDescriptionLen {
		v.Add("description", "description must be at most 10000 characters")
	}

	if r.DueDate == "" {
		v.Add("due_date", "due date is required")
	} else if _, err := ParseDate(r.DueDate); err != nil {
		v.Add("due_date", "invalid date format (use YYYY-MM-DD or RFC 3339)")
	}

	if r.Priority != "" && !ValidPriority(Priority(r.Priority)) {
		v.Add("priority", "priority must be one of low, medium, high")
	}

	if r.AssigneeEmail == "" {
		v.Add("assignee_email", "assignee email is required")
	} else if _, err := mail.ParseAddress(r.AssigneeEmail); err != nil {
		v.Add("assignee_email", "invalid email address")
	}

	return v.Err()
}

// UpdateTaskRequest is the request body for a partial task update.
// Nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
}

// Validate checks only the fields that were provided.
func (r *UpdateTaskRequest) Validate() error {
	v := NewValidationError()

	if r.Title != nil {
		if *r.Title == "" {
			v.Add("title", "title must not be empty")
		} else if utf8.RuneCountInString(*r.Title) > maxTitleLen {
			v.Add("title", "title must be at most 200 characters")
		}
	}

	if r.Description != nil && utf8.RuneCountInString(*r.Description) > maxDescriptionLen {
		v.Add("description", "description must be at most 10000 characters")
	}

	if r.DueDate != nil {
		if _, err := ParseDate(*r.DueDate); err != nil {
			v.Add("due_date", "invalid date format (use YYYY-MM-DD or RFC 3339)")
		}
	}

	if r.Priority != nil && !ValidPriority(Priority(*r.Priority)) {
		v.Add("priority", "priority must be one of low, medium, high")
	}

	return v.Err()
}

// ReassignTaskRequest is the request body for reassigning a task.
type ReassignTaskRequest struct {
	AssigneeEmail string `json:"assignee_email"`
}

// Validate checks the new assignee email.
func (r *ReassignTaskRequest) Validate() error {
	v := NewValidationError()

	if r.AssigneeEmail == "" {
		v.Add("assignee_email", "assignee email is required")
	} else if _, err := mail.ParseAddress(r.AssigneeEmail); err != nil {
		v.Add("assignee_email", "invalid email address")
	}

	return v.Err()
}

// RegisterRequest is the request body for creating a user account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration fields. The password bounds follow
// bcrypt's 72-byte input limit.
func (r *RegisterRequest) Validate() error {
	v := NewValidationError()

	if r.Name == "" {
		v.Add("name", "name is required")
	}

	if r.Email == "" {
		v.Add("email", "email is required")
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		v.Add("email", "invalid email address")
	}

	if len(r.Password) < minPasswordLen {
		v.Add("password", "password must be at least 8 characters")
	} else if len(r.Password) > maxPasswordLen {
		v.Add("password", "password must be at most 72 characters")
	}

	return v.Err()
}

// LoginRequest is the request body for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that credentials were supplied at all.
func (r *LoginRequest) Validate() error {
	v := NewValidationError()

	if r.Email == "" {
		v.Add("email", "email is required")
	}
	if r.Password == "" {
		v.Add("password", "password is required")
	}

	return v.Err()
}
