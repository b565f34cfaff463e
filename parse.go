package adhandler

/*
parse.go converts the raw tagged-sequence form of §3 ("a recursively
defined tagged sequence... tag is a string in {and, or, not, ...}") into
the typed Expr tree filter.go compiles. This is a convenience adapter for
callers (or tests) holding a dynamically-shaped filter literal — e.g. the
exact []any{"equals", "cn", "x"} shapes spec.md §8's scenarios are written
against — rather than the primary construction path (the And/Or/Equals/...
constructors in filter.go are that). Parse enforces the *arity* rule of
§4.1's validation order (rule 2) structurally, since a raw sequence can
carry the wrong number of children in a way Go's static Expr types cannot
(Not always holds exactly one Expr field; And/Or hold a slice whose
length Compile checks). Attribute-shape, value-length and boolean-context
checks (rules 3-6) are left to Compile, which re-validates regardless of
how the Expr tree was built.
*/

// Parse converts a raw tagged-sequence value into an Expr tree.
func Parse(raw any) (Expr, error) {
	seq, ok := raw.([]any)
	if !ok || len(seq) == 0 {
		return nil, &FilterError{Message: "expression must be a nonempty sequence"}
	}
	tag, ok := seq[0].(string)
	if !ok {
		return nil, &FilterError{Message: "expression tag must be a string"}
	}
	args := seq[1:]

	switch tag {
	case "and", "or":
		if len(args) < 1 {
			return nil, &FilterError{Tag: tag, Message: tag + " requires at least one operand"}
		}
		children := make([]Expr, len(args))
		for i, a := range args {
			c, err := Parse(a)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		if tag == "and" {
			return AndExpr{X: children}, nil
		}
		return OrExpr{X: children}, nil

	case "not":
		if len(args) != 1 {
			return nil, &FilterError{Tag: "not", Message: "not requires exactly one operand"}
		}
		c, err := Parse(args[0])
		if err != nil {
			return nil, err
		}
		return NotExpr{X: c}, nil

	case "equals", "beginswith", "endswith", "contains":
		if len(args) != 2 {
			return nil, &FilterError{Tag: tag, Message: tag + " requires exactly (attribute, value)"}
		}
		attr, ok1 := args[0].(string)
		val, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, &FilterError{Tag: tag, Message: tag + " operands must both be strings"}
		}
		switch tag {
		case "equals":
			return EqualsExpr{Attr: attr, Value: val}, nil
		case "beginswith":
			return BeginsWithExpr{Attr: attr, Value: val}, nil
		case "endswith":
			return EndsWithExpr{Attr: attr, Value: val}, nil
		default:
			return ContainsExpr{Attr: attr, Value: val}, nil
		}

	case "has":
		if len(args) != 1 {
			return nil, &FilterError{Tag: "has", Message: "has requires exactly one operand"}
		}
		attr, ok := args[0].(string)
		if !ok {
			return nil, &FilterError{Tag: "has", Message: "has operand must be a string"}
		}
		return HasExpr{Attr: attr}, nil

	case "oneof":
		if len(args) != 2 {
			return nil, &FilterError{Tag: "oneof", Message: "oneof requires exactly (attribute, values)"}
		}
		attr, ok := args[0].(string)
		if !ok {
			return nil, &FilterError{Tag: "oneof", Message: "oneof attribute must be a string"}
		}
		list, ok := args[1].([]any)
		if !ok {
			return nil, &FilterError{Tag: "oneof", Attr: attr, Message: "oneof value operand must be a list"}
		}
		values := make([]string, len(list))
		for i, v := range list {
			s, ok := v.(string)
			if !ok {
				return nil, &FilterError{Tag: "oneof", Attr: attr, Message: "oneof values must be strings"}
			}
			values[i] = s
		}
		return OneOfExpr{Attr: attr, Values: values}, nil

	case "true":
		if len(args) != 0 {
			return nil, &FilterError{Tag: "true", Message: "true takes no operands"}
		}
		return TrueExpr{}, nil

	case "false":
		if len(args) != 0 {
			return nil, &FilterError{Tag: "false", Message: "false takes no operands"}
		}
		return FalseExpr{}, nil

	default:
		return nil, &FilterError{Tag: tag, Message: "unknown filter tag " + tag}
	}
}
