// Package validation checks option structs before a sequence is built.
//
// It supports struct tag validation (using the validator library) and
// programmatic checks with error collection. Both report an
// INVALID_OPTION AppError whose details list every failing field.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    End   []string `validate:"required,min=1,dive,required"`
//	    Limit int      `validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.NonNegativeDuration("keep_alive", cfg.KeepAlive)
//	err := v.Error()
package validation
