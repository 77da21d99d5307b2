package users

// CreateRequest carries the new-account form.
type CreateRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role,omitempty"`
}

// UpdateRequest merges editable fields onto an account. The username
// field is deliberately absent: usernames are fixed at creation.
type UpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *Role   `json:"role,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// ListFilter narrows account listings.
type ListFilter struct {
	Search string
	Role   Role
	Status Status
}

// UserView decorates an account with its role's permission labels.
type UserView struct {
	User
	Permissions []string `json:"permissions"`
}

// NewUserView builds the decorated form.
func NewUserView(user User) UserView {
	return UserView{User: user, Permissions: Permissions(user.Role)}
}
