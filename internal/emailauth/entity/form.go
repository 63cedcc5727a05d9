package entity

// Form field names posted by the code form.
const (
	FormResend    = "resend"
	FormCancel    = "cancel"
	FormEmailCode = "emailCode"
)

// MessageInvalidAccessCode is the message key shown after a wrong code.
const MessageInvalidAccessCode = "invalidAccessCodeMessage"

// FormMessage is a localized message attached to the form. Field is empty
// for form-level errors.
type FormMessage struct {
	Field  string
	Key    string
	Params []string
}

// CodeForm is the view model of the code entry page.
type CodeForm struct {
	Realm       Realm
	Username    string
	ExecutionID string
	ActionURL   string
	Error       *FormMessage
	Locale      string
}

// CodeEmail is what the mail renderer needs to build the code message.
type CodeEmail struct {
	Realm    Realm
	Username string
	To       string
	Code     string
	KeyURL   string
	Locale   string
}
