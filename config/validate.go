package config

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce   sync.Once
	structValidator *validator.Validate
)

// structValidatorInstance returns the process-wide validator.Validate,
// built once on first use the way config's own fileCache is.
func structValidatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		structValidator = validator.New()
	})
	return structValidator
}

// ValidateStruct runs struct tag validation (required fields, enums,
// conditional requirements) over a decoded per-handler configuration. Each
// handler's LoadConfig calls this immediately after json.Unmarshal, so a
// malformed configuration document is rejected at factory-construction
// time rather than surfacing as a confusing nil-pointer or empty-string
// failure deep inside a handler's Exec.
func ValidateStruct(cfg any) error {
	if err := structValidatorInstance().Struct(cfg); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
