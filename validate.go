package aior

// SelfValidator is implemented by request types that validate themselves
// after every parameter has been bound.
type SelfValidator interface {
	Validate() error
}

// Validator validates any bound request. It is set router-wide with
// WithValidator and runs after SelfValidator.
type Validator interface {
	Validate(req any) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(req any) error

// Validate calls f.
func (f ValidatorFunc) Validate(req any) error { return f(req) }

func runValidators(req any, v Validator) error {
	if sv, ok := req.(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			return err
		}
	}
	if v != nil {
		return v.Validate(req)
	}
	return nil
}
