package catalog

// Type is the inferred type of a parameter as persisted in the catalog.
type Type string

const (
	TypeBoolean Type = "boolean"
	TypeInteger Type = "integer"
	TypeNull    Type = "null"
	TypeString  Type = "string"
	// TypeTemplate marks string values that already contain template
	// references and must not be wrapped again.
	TypeTemplate Type = "template"
)

// Coerce maps the type onto the set understood by the remote configuration
// store, which only knows string, integer and boolean.
func (t Type) Coerce() Type {
	switch t {
	case TypeNull, TypeTemplate, "":
		return TypeString
	}
	return t
}

// Quoted reports whether a placeholder of this type stays quoted in
// structurally re-serialized templates.
func (t Type) Quoted() bool {
	return t == TypeString
}
