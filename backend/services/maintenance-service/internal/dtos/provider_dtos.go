package dtos

type CreateProviderRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Email       string  `json:"email" validate:"required,email"`
	Specialty   string  `json:"specialty" validate:"required"`
	Phone       *string `json:"phone,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Address     *string `json:"address,omitempty"`
}

type UpdateProviderRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Specialty   *string `json:"specialty,omitempty" validate:"omitempty,min=1"`
	Phone       *string `json:"phone,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Address     *string `json:"address,omitempty"`
}
