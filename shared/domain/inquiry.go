package domain

// Inquiry holds sanitized contact form fields.
type Inquiry struct {
	Name     string `validate:"required"`
	Email    Email  `validate:"required,email"`
	Phone    string `validate:"omitempty,phone"`
	Company  string
	Message  string
	FormType FormType
	Division string
	Product  string
}

// RequestMeta describes where an inquiry came from; it ends up in the mail body.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// SubmitResult is returned for every request that ends in a 200.
// Delivered is false when a bot was silently deflected.
type SubmitResult struct {
	Delivered bool
	Message   string
}

// OutgoingMail is a composed plaintext message ready for the transport.
type OutgoingMail struct {
	To             Email
	Subject        string
	Body           string
	ReplyToName    string
	ReplyToAddress Email
}
