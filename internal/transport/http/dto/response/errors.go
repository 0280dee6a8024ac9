package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrProjectNotFound = ErrorResponse{
		Status:  "error",
		Error:   "project_not_found",
		Details: "Project not found",
	}

	ErrPreviewNotFound = ErrorResponse{
		Status:  "error",
		Error:   "preview_not_found",
		Details: "Preview not found or already released",
	}
)
