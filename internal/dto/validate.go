package dto

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.SetTagName("binding")
	})
	return validate
}

// Validate checks v against its binding tags.
func Validate(v any) error {
	return validatorInstance().Struct(v)
}

// CheckSnapshot enforces the cross-record rules tags cannot express: unique
// ids, at most one primary key per element, and connections that reference
// elements (and fields) of the same snapshot.
func CheckSnapshot(elements []Element, connections []Connection) error {
	fieldsByElement := make(map[string]map[string]bool, len(elements))
	for _, el := range elements {
		if _, dup := fieldsByElement[el.ID]; dup {
			return fmt.Errorf("duplicate element id %q", el.ID)
		}
		fields := make(map[string]bool, len(el.Fields))
		primaries := 0
		for _, f := range el.Fields {
			if fields[f.ID] {
				return fmt.Errorf("element %q: duplicate field id %q", el.ID, f.ID)
			}
			fields[f.ID] = true
			if f.IsPrimary {
				primaries++
			}
		}
		if primaries > 1 {
			return fmt.Errorf("element %q: more than one primary key", el.ID)
		}
		fieldsByElement[el.ID] = fields
	}

	seen := make(map[string]bool, len(connections))
	for _, c := range connections {
		if seen[c.ID] {
			return fmt.Errorf("duplicate connection id %q", c.ID)
		}
		seen[c.ID] = true

		from, ok := fieldsByElement[c.From]
		if !ok {
			return fmt.Errorf("connection %q: unknown element %q", c.ID, c.From)
		}
		to, ok := fieldsByElement[c.To]
		if !ok {
			return fmt.Errorf("connection %q: unknown element %q", c.ID, c.To)
		}
		if c.FromField != "" && !from[c.FromField] {
			return fmt.Errorf("connection %q: unknown field %q", c.ID, c.FromField)
		}
		if c.ToField != "" && !to[c.ToField] {
			return fmt.Errorf("connection %q: unknown field %q", c.ID, c.ToField)
		}
	}
	return nil
}
