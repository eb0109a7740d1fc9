package eval

import (
	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/parse"
)

func installSpecialForms(e *Evaluator) {
	e.Define("def", NewSpecialForm("def", MustSignature(
		Param("id", form.FlagIdentifier),
		Param("form", form.FlagAny),
	), specialDef))

	e.Define("fn", NewSpecialForm("fn", MustSignature(
		Param("params", form.FlagList),
		RestParam("body", form.FlagAny),
	), specialFn))

	e.Define("macro", NewSpecialForm("macro", MustSignature(
		Param("params", form.FlagList),
		RestParam("body", form.FlagAny),
	), specialMacro))

	e.Define("if", NewSpecialForm("if", MustSignature(
		Param("cond", form.FlagAny),
		Param("then", form.FlagAny),
		OptionalParam("else", form.FlagAny),
	), specialIf))

	e.Define("quote", NewSpecialForm("quote", MustSignature(
		Param("form", form.FlagAny),
	), specialQuote))

	e.Define("and", NewSpecialForm("and", MustSignature(
		RestParam("forms", form.FlagAny),
	), specialAnd))

	e.Define("or", NewSpecialForm("or", MustSignature(
		RestParam("forms", form.FlagAny),
	), specialOr))

	e.Define("do", NewSpecialForm("do", MustSignature(
		RestParam("forms", form.FlagAny),
	), specialDo))

	installPersistence(e)
}

// (def id form) evaluates form and binds it in the innermost frame.
func specialDef(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	id := args[0].Value.(*form.Identifier)
	if scope.Len() == 0 {
		return form.Tagged{}, Failf(pos, "Cannot define %s without a scope.", id.Name)
	}
	v, f := e.Evaluate(scope, args[1])
	if f != nil {
		return form.Tagged{}, f
	}
	v = form.Tag(named(v.Value, id.Name), v.Pos)
	e.log.Debugf("defined %s as %s", id.Name, v)
	return scope.Define(id, v), nil
}

func specialFn(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	sig, f := ParseParameters(args[0])
	if f != nil {
		return form.Tagged{}, f
	}
	return form.Tag(NewProcedure(scope, sig, args[0], args[1:]), pos), nil
}

func specialMacro(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	sig, f := ParseParameters(args[0])
	if f != nil {
		return form.Tagged{}, f
	}
	return form.Tag(NewMacro(scope, sig, args[0], args[1:]), pos), nil
}

func specialIf(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	cond, f := e.Evaluate(scope, args[0])
	if f != nil {
		return form.Tagged{}, f
	}
	if form.Truthy(cond.Value) {
		return e.Evaluate(scope, args[1])
	}
	if len(args) < 3 {
		return form.Tag(form.Nil{}, pos), nil
	}
	return e.Evaluate(scope, args[2])
}

func specialQuote(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	return form.Strip(args[0]), nil
}

// (and ...) returns the first falsy value, or the last value. (and) is true.
func specialAnd(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	result := form.Tag(form.Bool(true), pos)
	for _, arg := range args {
		v, f := e.Evaluate(scope, arg)
		if f != nil {
			return form.Tagged{}, f
		}
		result = v
		if !form.Truthy(v.Value) {
			break
		}
	}
	return result, nil
}

// (or ...) returns the first truthy value, or the last value. (or) is nil.
func specialOr(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	result := form.Tag(form.Nil{}, pos)
	for _, arg := range args {
		v, f := e.Evaluate(scope, arg)
		if f != nil {
			return form.Tagged{}, f
		}
		result = v
		if form.Truthy(v.Value) {
			break
		}
	}
	return result, nil
}

func specialDo(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	return e.evaluateBody(scope, args)
}
