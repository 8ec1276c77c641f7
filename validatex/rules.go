package validatex

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationFunc defines a function that validates a value
type ValidationFunc func(value any, param string) bool

var (
	engineOnce sync.Once
	engineInst *validator.Validate
	engineMu   sync.Mutex
)

// phonePattern accepts E.164 numbers with or without the leading plus
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// builtinValidationFuncs are registered on top of the go-playground rule set
var builtinValidationFuncs = map[string]ValidationFunc{
	"wa_phone": validatePhone,
}

func engine() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report json names so errors match the wire format
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		for name, fn := range builtinValidationFuncs {
			_ = v.RegisterValidation(name, adapt(fn))
		}
		engineInst = v
	})
	return engineInst
}

// RegisterValidationFunc registers a custom struct tag rule. Register rules during
// initialization, before validators run concurrently.
func RegisterValidationFunc(name string, fn ValidationFunc) error {
	engineMu.Lock()
	defer engineMu.Unlock()
	return engine().RegisterValidation(name, adapt(fn))
}

// ValidateStruct runs the struct tag rules alone
func ValidateStruct(data any) error {
	return validateStruct(Schema{}, data)
}

func adapt(fn ValidationFunc) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return fn(fl.Field().Interface(), fl.Param())
	}
}

func validatePhone(value any, _ string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	return phonePattern.MatchString(s)
}
