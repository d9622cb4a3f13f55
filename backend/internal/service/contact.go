package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mahalaxmi-group/site-api/backend/internal/service/utils"
	"github.com/mahalaxmi-group/site-api/shared/api"
	"github.com/mahalaxmi-group/site-api/shared/config"
	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/mahalaxmi-group/site-api/shared/errors"
	"github.com/mahalaxmi-group/site-api/shared/logger"
	sharedutils "github.com/mahalaxmi-group/site-api/shared/utils"
)

// Field caps in runes.
const (
	maxNameLength     = 200
	maxPhoneLength    = 20
	maxCompanyLength  = 200
	maxMessageLength  = 2000
	maxFormTypeLength = 50
	maxDivisionLength = 200
	maxProductLength  = 200
	maxUserAgent      = 150
)

const (
	msgReceived      = "Message received"
	msgSent          = "Your message has been sent successfully. We will respond within 24 hours."
	msgInvalidFormat = "Invalid request format"
	msgMisconfigured = "Server configuration error. Please contact us directly."

	msgNameRequired = "Name is required"
	msgEmailInvalid = "A valid email address is required"
	msgEmailDomain  = "Please provide a valid email address"
	msgPhoneInvalid = "Please enter a valid phone number"
)

var phonePattern = regexp.MustCompile(`^[\d\s\+\-\(\)]{6,20}$`)

type ContactService interface {
	Submit(ctx context.Context, sess *domain.Session, body io.Reader, meta domain.RequestMeta) (*domain.SubmitResult, error)
}

type Mailer interface {
	Send(ctx context.Context, m domain.OutgoingMail) error
}

type DomainChecker interface {
	HasMailDomain(ctx context.Context, domain string) bool
}

type Contact struct {
	mailer     Mailer
	domains    DomainChecker
	recipients *RecipientDirectory
	validate   *validator.Validate
	cfg        *config.Public
	now        func() time.Time
}

func NewContact(mailer Mailer, domains DomainChecker, recipients *RecipientDirectory, cfg *config.Public) *Contact {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &Contact{
		mailer:     mailer,
		domains:    domains,
		recipients: recipients,
		validate:   validate,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Submit runs the intake pipeline for one request. The gates short-circuit in order:
// rate limit, configuration, parsing, honeypot, fill time, validation, delivery.
// Session state only changes when a message was actually handed to the transport.
func (c *Contact) Submit(ctx context.Context, sess *domain.Session, body io.Reader, meta domain.RequestMeta) (*domain.SubmitResult, error) {
	now := c.now()

	if wait, limited := c.retryAfter(sess, now); limited {
		contactSubmissions.WithLabelValues(outcomeRateLimited).Inc()
		return nil, errors.RateLimited(wait)
	}

	if c.recipients.Empty() {
		contactSubmissions.WithLabelValues(outcomeMisconfigured).Inc()
		logger.Log.Error("no recipients configured for contact form")
		return nil, errors.ServerConfig(msgMisconfigured)
	}

	var req api.InquiryRequest
	if err := sharedutils.DecodeObject(io.LimitReader(body, c.cfg.Contact.MaxBodyBytes), &req, msgInvalidFormat); err != nil {
		contactSubmissions.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}

	if req.Website {
		contactSubmissions.WithLabelValues(outcomeHoneypot).Inc()
		logger.Log.Info("honeypot triggered", "ip", meta.IP)
		return &domain.SubmitResult{Message: msgReceived}, nil
	}

	if req.SubmittedAt != nil && c.filledTooFast(int64(*req.SubmittedAt), now) {
		contactSubmissions.WithLabelValues(outcomeTooFast).Inc()
		logger.Log.Info("submission faster than minimum fill time", "ip", meta.IP, "_ts", int64(*req.SubmittedAt))
		return &domain.SubmitResult{Message: msgReceived}, nil
	}

	inquiry := sanitizeInquiry(req)
	if problems := c.validateInquiry(ctx, inquiry); len(problems) > 0 {
		contactSubmissions.WithLabelValues(outcomeInvalid).Inc()
		return nil, errors.Validation(problems)
	}

	recipient := c.recipients.Resolve(inquiry.FormType)
	mail := c.compose(inquiry, recipient, meta, now)

	if err := c.mailer.Send(ctx, mail); err != nil {
		contactSubmissions.WithLabelValues(outcomeFailed).Inc()
		logger.Log.Error("mail send failed",
			"form_type", inquiry.FormType,
			"recipient", recipient,
			"sender", inquiry.Email,
			"error", err,
		)
		return nil, errors.Delivery("Failed to send message. Please contact us directly at " + c.cfg.Mail.FallbackRecipient)
	}

	sess.RecordSubmit(now)
	contactSubmissions.WithLabelValues(outcomeDelivered).Inc()
	logger.Log.Info("inquiry delivered", "form_type", inquiry.FormType, "recipient", recipient)
	return &domain.SubmitResult{Delivered: true, Message: msgSent}, nil
}

// filledTooFast compares whole seconds without subtracting the client value,
// so arbitrarily old or far-future timestamps cannot overflow.
// A negative MinFillTime disables the check.
func (c *Contact) filledTooFast(submittedAt int64, now time.Time) bool {
	minFill := c.cfg.Contact.MinFillTime
	if minFill <= 0 {
		return false
	}
	minSeconds := int64(math.Ceil(minFill.Seconds()))
	return submittedAt > now.Unix()-minSeconds
}

// retryAfter reports the whole seconds left in the window since the last delivered inquiry.
func (c *Contact) retryAfter(sess *domain.Session, now time.Time) (int, bool) {
	if sess.LastSubmitAt.IsZero() {
		return 0, false
	}
	window := c.cfg.Contact.RateLimitWindow
	elapsed := now.Sub(sess.LastSubmitAt)
	if elapsed >= window {
		return 0, false
	}
	remaining := window - elapsed
	if remaining > window {
		remaining = window
	}
	return int(math.Ceil(remaining.Seconds())), true
}

func sanitizeInquiry(req api.InquiryRequest) domain.Inquiry {
	formType := utils.SanitizeText(req.FormType, maxFormTypeLength)
	if formType == "" {
		formType = DefaultFormType
	}
	return domain.Inquiry{
		Name:     utils.SanitizeText(req.Name, maxNameLength),
		Email:    utils.SanitizeEmail(req.Email),
		Phone:    utils.SanitizeText(req.Phone, maxPhoneLength),
		Company:  utils.SanitizeText(req.Company, maxCompanyLength),
		Message:  utils.SanitizeText(req.Message, maxMessageLength),
		FormType: formType,
		Division: utils.SanitizeText(req.Division, maxDivisionLength),
		Product:  utils.SanitizeText(req.Product, maxProductLength),
	}
}

// validateInquiry returns every problem in a fixed order so the combined message is stable.
func (c *Contact) validateInquiry(ctx context.Context, inquiry domain.Inquiry) []string {
	failed := map[string]bool{}
	if err := c.validate.Struct(inquiry); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			logger.Log.Error("inquiry validation failed unexpectedly", "error", err)
			return []string{msgInvalidFormat}
		}
		for _, fe := range verrs {
			failed[fe.StructField()] = true
		}
	}

	var problems []string
	if failed["Name"] {
		problems = append(problems, msgNameRequired)
	}
	if failed["Email"] {
		problems = append(problems, msgEmailInvalid)
	} else if !c.domains.HasMailDomain(ctx, emailDomain(inquiry.Email)) {
		problems = append(problems, msgEmailDomain)
	}
	if failed["Phone"] {
		problems = append(problems, msgPhoneInvalid)
	}
	return problems
}

func emailDomain(email domain.Email) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
const thinRule = "──────────────────────────────────────────"

func (c *Contact) compose(inquiry domain.Inquiry, recipient domain.Email, meta domain.RequestMeta, now time.Time) domain.OutgoingMail {
	label := FormLabel(inquiry.FormType)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n  NEW INQUIRY: %s\n%s\n\n", rule, label, rule)
	fmt.Fprintf(&b, "Name:         %s\n", inquiry.Name)
	fmt.Fprintf(&b, "Email:        %s\n", inquiry.Email)
	fmt.Fprintf(&b, "Phone:        %s\n", orNotProvided(inquiry.Phone))
	fmt.Fprintf(&b, "Company:      %s\n", orNotProvided(inquiry.Company))
	fmt.Fprintf(&b, "Form Type:    %s\n", label)
	if inquiry.Division != "" {
		fmt.Fprintf(&b, "Division:     %s\n", inquiry.Division)
	}
	if inquiry.Product != "" {
		fmt.Fprintf(&b, "Product:      %s\n", inquiry.Product)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n%s\n%s\n\n", thinRule, inquiry.Message, thinRule)
	fmt.Fprintf(&b, "Sent from:    %s Website\n", c.cfg.SiteName)
	fmt.Fprintf(&b, "Date:         %s\n", now.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "IP Address:   %s\n", orUnknown(meta.IP))
	fmt.Fprintf(&b, "User Agent:   %s\n", utils.Truncate(orUnknown(meta.UserAgent), maxUserAgent))

	return domain.OutgoingMail{
		To:             recipient,
		Subject:        fmt.Sprintf("[%s Website] %s from %s", c.cfg.SiteName, label, inquiry.Name),
		Body:           b.String(),
		ReplyToName:    inquiry.Name,
		ReplyToAddress: inquiry.Email,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
