package deposit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"whatsapp-boost/internal/model"
)

var (
	// ErrAmountTooLow is returned when the amount is below the configured floor
	ErrAmountTooLow = errors.New("amount below minimum deposit")
	// ErrInvalidMethod is returned for an unknown mobile-money provider
	ErrInvalidMethod = errors.New("unsupported payment method")
	// ErrInvalidPhone is returned when the phone does not match the provider's format
	ErrInvalidPhone = errors.New("invalid phone number for payment method")
)

// Cameroon numbering plan: 237 followed by a 9-digit mobile number.
var providerPrefixes = map[model.PaymentMethod]*regexp.Regexp{
	model.PaymentMethodMoMo: regexp.MustCompile(`^2376(7\d|5[0-4]|8[0-3])\d{6}$`),
	model.PaymentMethodOM:   regexp.MustCompile(`^2376(9\d|5[5-9]|8[6-9])\d{6}$`),
}

var nonDigits = regexp.MustCompile(`[^\d]`)

// NormalizePhone strips separators and a leading + and adds the 237 prefix
// to bare 9-digit local numbers.
func NormalizePhone(raw string) string {
	phone := nonDigits.ReplaceAllString(raw, "")
	phone = strings.TrimPrefix(phone, "00")
	if len(phone) == 9 && strings.HasPrefix(phone, "6") {
		phone = "237" + phone
	}
	return phone
}

// ParseMethod maps user input to a payment method
func ParseMethod(raw string) (model.PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "momo", "mtn", "mtnmomo":
		return model.PaymentMethodMoMo, nil
	case "om", "orange", "orangemoney":
		return model.PaymentMethodOM, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMethod, raw)
}

// Validator performs client-side pre-validation of deposit requests.
// The backend still enforces its own rules.
type Validator struct {
	minAmount int64
	validate  *validator.Validate
}

// NewValidator creates a validator with the given minimum amount in FCFA
func NewValidator(minAmount int64) *Validator {
	validate := validator.New()
	validate.RegisterStructValidation(validateProviderPhone, model.DepositRequest{})
	return &Validator{minAmount: minAmount, validate: validate}
}

// MinAmount returns the configured minimum deposit
func (v *Validator) MinAmount() int64 {
	return v.minAmount
}

// Validate checks req without any network call. The phone is normalized
// first so separators and a leading + are tolerated.
func (v *Validator) Validate(req model.DepositRequest) error {
	req.PhoneNumber = NormalizePhone(req.PhoneNumber)
	if req.Amount < v.minAmount {
		return fmt.Errorf("%w: minimum is %d FCFA", ErrAmountTooLow, v.minAmount)
	}

	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	switch fieldErrs[0].StructField() {
	case "Amount":
		return fmt.Errorf("%w: minimum is %d FCFA", ErrAmountTooLow, v.minAmount)
	case "PaymentMethod":
		return fmt.Errorf("%w: %q", ErrInvalidMethod, req.PaymentMethod)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidPhone, req.PhoneNumber)
	}
}

// validateProviderPhone checks the phone prefix against the chosen provider
func validateProviderPhone(sl validator.StructLevel) {
	req := sl.Current().Interface().(model.DepositRequest)

	pattern, ok := providerPrefixes[req.PaymentMethod]
	if !ok {
		return
	}
	if !pattern.MatchString(req.PhoneNumber) {
		sl.ReportError(req.PhoneNumber, "phone_number", "PhoneNumber", "provider_prefix", string(req.PaymentMethod))
	}
}
