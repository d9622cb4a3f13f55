package domain

type (
	Email     = string
	Password  = string
	SessionId = string
	FormType  = string
)
