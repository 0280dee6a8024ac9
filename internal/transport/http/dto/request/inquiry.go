package request

type InquiryRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Project string `json:"project"`
	Message string `json:"message" validate:"required"`
}
