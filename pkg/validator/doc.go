// Package validator provides composable, field-scoped validation rules for
// form-shaped input.
//
// Rules are plain closures evaluated by Apply; failures accumulate into a
// ValidationErrors value that implements error and keeps each message tied
// to the field it belongs to, so callers can render errors next to the
// offending input:
//
//	err := validator.Apply(
//	    validator.RequiredString("name", d.Name),
//	    validator.NonNegativeDecimalString("price", d.Price),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    for _, field := range verrs.Fields() {
//	        // show verrs.Get(field) next to the field
//	    }
//	}
//
// The string-typed numeric rules exist because drafts keep form values as
// entered; parsing happens once, after validation passes.
package validator
