package security

import (
	"fmt"
	"strings"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// PasswordPolicyConfig carries the externally supplied policy parameters.
type PasswordPolicyConfig struct {
	MinLength        int
	DenyList         []string
	SpecialChars     string
	MinStrengthScore int
}

// NewPolicyValidator builds the registration password validator from the
// supplied configuration: deny list first, then length, then character
// classes, then the optional zxcvbn strength score.
func NewPolicyValidator(cfg PasswordPolicyConfig) *PasswordValidator {
	rules := []PasswordRule{
		DenyListRule(cfg.DenyList),
		MinLengthExclusiveRule(cfg.MinLength),
		RequireAllCharacterClassesRule(cfg.SpecialChars),
	}
	if cfg.MinStrengthScore > 0 {
		rules = append(rules, RequireStrengthScoreRule(cfg.MinStrengthScore))
	}
	return NewPasswordValidator(rules...)
}

// DenyListRule rejects passwords appearing in the deny list, compared
// case-insensitively.
func DenyListRule(denied []string) PasswordRule {
	lowered := make(map[string]struct{}, len(denied))
	for _, entry := range denied {
		lowered[strings.ToLower(entry)] = struct{}{}
	}

	return PasswordRuleFunc(func(password string) error {
		if _, found := lowered[strings.ToLower(password)]; found {
			return &PasswordValidationError{
				Code:    "deny_list",
				Message: "password is too common",
			}
		}
		return nil
	})
}

// MinLengthExclusiveRule rejects passwords of length min or shorter. The
// boundary is deliberately exclusive: a password of exactly min characters
// fails the rule.
func MinLengthExclusiveRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) <= min {
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// RequireAllCharacterClassesRule requires an uppercase letter, a lowercase
// letter, a digit, and one character from the configured special set.
func RequireAllCharacterClassesRule(specials string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		var (
			hasUpper   bool
			hasLower   bool
			hasDigit   bool
			hasSpecial bool
		)

		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			case strings.ContainsRune(specials, r):
				hasSpecial = true
			}
		}

		var missing string
		switch {
		case !hasUpper:
			missing = "an uppercase letter"
		case !hasLower:
			missing = "a lowercase letter"
		case !hasDigit:
			missing = "a digit"
		case !hasSpecial:
			missing = fmt.Sprintf("a special character (%s)", specials)
		default:
			return nil
		}

		return &PasswordValidationError{
			Code:    "character_class",
			Message: fmt.Sprintf("password must contain %s", missing),
		}
	})
}

// RequireStrengthScoreRule enforces a minimum zxcvbn score to reject weak
// passwords. Disabled unless the configured score is positive.
func RequireStrengthScoreRule(minScore int, userInputs ...string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}

		result := zxcvbn.PasswordStrength(password, userInputs)
		if result.Score >= minScore {
			return nil
		}

		return &PasswordValidationError{
			Code:    "weak_password",
			Message: "password is too weak; choose a more complex value",
		}
	})
}
