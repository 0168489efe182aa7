package response

type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status   string `json:"status"`
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func MessageResponse(message string) Response {
	return Response{
		Status:  "success",
		Message: message,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Error:   err,
		Details: details,
	}
}

// AlreadyAuthenticated отвечает на страницы входа уже вошедшему пользователю.
func AlreadyAuthenticated(redirect string) ErrorResponse {
	return ErrorResponse{
		Status:   "error",
		Error:    "already_authenticated",
		Details:  "You are already logged in",
		Redirect: redirect,
	}
}
